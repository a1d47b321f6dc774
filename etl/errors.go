package etl

import (
	"errors"
)

// Sentinel errors for the failure taxonomy of a merge run.
// Callers distinguish them with errors.Is; every returned error wraps
// exactly one of these together with the offending path or statement.
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrMissingInputFile indicates one of the required input files does not exist.
	ErrMissingInputFile = errors.New("missing input file")

	// ErrParse indicates a delimited or structured text file is malformed.
	ErrParse = errors.New("parse error")

	// ErrScriptExecution indicates a statement of the relational script failed.
	ErrScriptExecution = errors.New("script execution failed")

	// ErrMissingTable indicates the expected table is absent after script execution.
	ErrMissingTable = errors.New("missing table")

	// ErrMissingColumn indicates a loaded table lacks a required key column.
	ErrMissingColumn = errors.New("missing column")

	// ErrDuplicateColumn indicates a join would produce two columns with the same name.
	ErrDuplicateColumn = errors.New("duplicate column")

	// ErrWrite indicates the output file could not be written.
	ErrWrite = errors.New("write failed")

	// ErrStoreUnavailable indicates the ephemeral relational store could not be opened.
	ErrStoreUnavailable = errors.New("relational store unavailable")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrMissingInputFile):
		return ExitMissingInput
	case errors.Is(err, ErrParse):
		return ExitParseError
	case errors.Is(err, ErrScriptExecution):
		return ExitScriptError
	case errors.Is(err, ErrMissingTable):
		return ExitMissingTable
	case errors.Is(err, ErrMissingColumn), errors.Is(err, ErrDuplicateColumn):
		return ExitSchemaError
	case errors.Is(err, ErrWrite):
		return ExitWriteError
	case errors.Is(err, ErrStoreUnavailable):
		return ExitStoreError
	}
	return ExitGeneralError
}

// Package loader turns the three merge inputs into row-oriented tables:
// orders from delimited text, users from a JSON array or newline-delimited
// JSON, and restaurants from a relational script run against an ephemeral
// store. Every loader fails with etl.ErrMissingInputFile before reading when
// its file is absent, and validates the join key columns after loading.
package loader

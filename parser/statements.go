package parser

import (
	"regexp"
	"strings"
)

// Statement is one SQL statement of a script and the line it starts on.
type Statement struct {
	SQL  string
	Line int
}

var reDollarTag = regexp.MustCompile(`^\$(?:[A-Za-z_][A-Za-z0-9_]*)?\$`)

// SplitStatements splits a SQL script on semicolons that terminate statements.
// Semicolons inside quoted strings, identifiers, comments, dollar-quoted bodies
// and CREATE TRIGGER ... BEGIN ... END blocks do not split; inside a trigger
// every CASE and BEGIN must be closed by its END first. Comment-only
// fragments are dropped.
func SplitStatements(script string) []Statement {
	var (
		out       []Statement
		start     int
		line      = 1
		startLine = 1
		hasCode   bool

		// leading keywords of the pending statement, enough to spot CREATE [TEMP] TRIGGER
		lead    []string
		trigger bool
		depth   int
	)

	markCode := func() {
		if !hasCode {
			startLine = line
			hasCode = true
		}
	}
	flush := func(end int) {
		if start < end && hasCode {
			if text := strings.TrimSpace(script[start:end]); text != "" {
				out = append(out, Statement{SQL: text, Line: startLine})
			}
		}
		start = end + 1
		hasCode = false
		lead = lead[:0]
		trigger = false
		depth = 0
	}
	keyword := func(word string) {
		word = strings.ToUpper(word)
		if len(lead) < 3 {
			lead = append(lead, word)
			trigger = trigger || isTriggerLead(lead)
		}
		if !trigger {
			return
		}
		switch word {
		case "BEGIN", "CASE":
			depth++
		case "END":
			if depth > 0 {
				depth--
			}
		}
	}

	n := len(script)
	for i := 0; i < n; i++ {
		c := script[i]
		switch {
		case c == '\n':
			line++

		case c == '-' && i+1 < n && script[i+1] == '-':
			for i+1 < n && script[i+1] != '\n' {
				i++
			}

		case c == '/' && i+1 < n && script[i+1] == '*':
			i++
			for i+1 < n && !(script[i] == '*' && script[i+1] == '/') {
				i++
				if script[i] == '\n' {
					line++
				}
			}
			i++

		case c == '\'' || c == '"' || c == '`':
			markCode()
			for i+1 < n {
				i++
				if script[i] == '\n' {
					line++
				}
				if script[i] == c {
					// doubled quote is an escaped quote
					if i+1 < n && script[i+1] == c {
						i++
						continue
					}
					break
				}
			}

		case c == '$':
			markCode()
			tag := reDollarTag.FindString(script[i:])
			if tag == "" {
				continue
			}
			body := i + len(tag)
			end := strings.Index(script[body:], tag)
			if end < 0 {
				line += strings.Count(script[i:], "\n")
				i = n
				continue
			}
			line += strings.Count(script[i:body+end], "\n")
			i = body + end + len(tag) - 1

		case c == ';':
			if trigger && depth > 0 {
				continue
			}
			flush(i)

		case c == ' ' || c == '\t' || c == '\r':

		case isWordStart(c):
			markCode()
			j := i
			for j+1 < n && isWordByte(script[j+1]) {
				j++
			}
			keyword(script[i : j+1])
			i = j

		default:
			markCode()
		}
	}
	flush(n)
	return out
}

func isTriggerLead(lead []string) bool {
	switch {
	case len(lead) == 2:
		return lead[0] == "CREATE" && lead[1] == "TRIGGER"
	case len(lead) == 3:
		return lead[0] == "CREATE" && (lead[1] == "TEMP" || lead[1] == "TEMPORARY") && lead[2] == "TRIGGER"
	}
	return false
}

func isWordStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordByte(c byte) bool {
	return isWordStart(c) || (c >= '0' && c <= '9')
}

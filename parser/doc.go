// Package parser reads relational script text: it splits a script into
// statements and lists the tables the script declares.
package parser

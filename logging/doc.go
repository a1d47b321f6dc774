// Package logging provides concrete implementations of the etl.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: Writes prefixed messages to stderr or any io.Writer, styled on terminals
//   - NullLogger: Discards all messages (useful for testing)
package logging

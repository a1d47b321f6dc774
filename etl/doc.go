// Package etl holds the contracts shared by every stage of the food delivery
// merge: sentinel errors and their exit codes, the Logger interface, default
// file names and the Report returned by a successful run.
package etl

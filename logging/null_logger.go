package logging

import "food_delivery_merge/etl"

var (
	_ etl.Logger = (*NullLogger)(nil)
	_ etl.Logger = (*ConsoleLogger)(nil)
)

// NullLogger drops everything. Tests hand it to loaders and pipelines
// whose progress lines nobody reads.
type NullLogger struct{}

func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

func (*NullLogger) Verbose(string, ...interface{}) {}

func (*NullLogger) Info(string, ...interface{}) {}

func (*NullLogger) Error(string, ...interface{}) {}

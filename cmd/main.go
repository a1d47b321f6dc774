package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"food_delivery_merge/cli"
	"food_delivery_merge/etl"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(etl.ExitPanic)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}

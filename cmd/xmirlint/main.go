// Package main provides the xmirlint CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/xmirlint/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}

// Package main is the entry point for the testdesk admin CLI.
package main

import (
	"os"

	"github.com/good-yellow-bee/testdesk/cmd/testdeskctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

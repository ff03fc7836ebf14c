// Package main is the entry point for the rwx CLI tool.
package main

import (
	"os"

	"github.com/harvx/rewrite/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

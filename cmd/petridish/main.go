// Package main provides the entry point for the petridish CLI.
package main

import (
	"os"

	"github.com/petridish/petridish/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

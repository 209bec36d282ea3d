// Package main is the entry point for the pardotctl CLI.
package main

import "github.com/pardotkit/pardotctl/internal/cli"

func main() {
	cli.Execute()
}

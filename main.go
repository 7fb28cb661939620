// Package main is the entry point for the pxfbridge CLI.
// It streams external table data between a local database and a PXF service.
package main

import (
	"pxfbridge/cli/cmd"
)

func main() {
	cmd.Execute()
}

// Package main provides the entry point for the gridsync CLI tool.
package main

import (
	"os"

	"github.com/pitwall/gridsync/cmd/gridsync/cmd"
	"github.com/pitwall/gridsync/pkg/logging"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logging.Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

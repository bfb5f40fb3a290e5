// Package main is the entry point for jav-meta.
package main

import (
	"os"

	"github.com/jmylchreest/jav-meta/cmd/javmeta/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

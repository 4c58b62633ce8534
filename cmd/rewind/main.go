// Command rewind drives a snapshot timeline over the sandbox world.
//
// Usage:
//
//	go run ./cmd/rewind <command> [flags]
//
// Commands:
//
//	read         Read a path at a frame, optionally after edits
//	scrub        Sweep a window around a hotspot several times
//	bench        Run the scrub benchmark harness
//	config init  Write a default configuration file
//
// Example:
//
//	# Read the population at frame 500 after pushing the stick at frame 40
//	go run ./cmd/rewind read --frame 500 --path population --write pad.stick_x=1@40
//
//	# Compare scrub costs in CSV form
//	go run ./cmd/rewind bench --csv > scrubs.csv
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

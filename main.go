// Package main provides the entry point for Rewind.
// Rewind keeps a bounded pool of snapshots of a deterministic simulation
// so that any frame can be read back and replayed after edits.
//
// For the full CLI, use: go run ./cmd/rewind
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("Rewind - Snapshot Timeline for Deterministic Replay")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: rewind <command> [flags]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  read         Read a path at a frame, optionally after edits")
	fmt.Println("  scrub        Sweep a window around a hotspot several times")
	fmt.Println("  bench        Run the scrub benchmark harness")
	fmt.Println("  config init  Write a default configuration file")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rewind' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/rewind' instead.")
	}
}

package main

import (
	"os"
)

// main runs the changepoint command tree. Business logic lives in the
// internal service packages; this package only wires them together.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// Command shephard synchronizes many local git working copies from one
// controller, optionally via a side-channel branch that never disturbs
// the primary history.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}

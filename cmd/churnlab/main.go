// Command churnlab generates a synthetic customer dataset, corrupts and cleans
// it, and selects the churn classifier with the best validation precision.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

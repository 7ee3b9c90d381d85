// Command actionctl is a small illustrative CLI over the action registry
// and Executor: list what's registered, run one action, or run a plan file.
// Not part of the library's public contract.
package main

import (
	"fmt"
	"os"
)

func main() {
	app, err := newAppContext()
	if err != nil {
		fmt.Fprintln(os.Stderr, "actionctl:", err)
		os.Exit(1)
	}

	if err := newRootCmd(app).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "actionctl:", err)
		os.Exit(1)
	}
}

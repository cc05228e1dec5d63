// Command constexpr evaluates manifest-described IR at the command line: it
// folds the manifest's entry expression and prints the resulting constant, or
// the rendered failure artifact when evaluation raises.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "constexpr:", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/wikirace/wikirace/internal/wikirace"
)

func main() {
	rootCmd := wikirace.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		// Print error once, then exit
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

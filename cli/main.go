package main

import (
	"fmt"
	"os"

	"github.com/trebuchet-org/anchor/internal/cli"
)

func main() {
	rootCmd := cli.NewRootCmd()
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

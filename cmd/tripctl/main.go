package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/triplog/internal/cli"
)

func main() {
	if err := cli.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "tripctl: %v\n", err)
		os.Exit(1)
	}
}

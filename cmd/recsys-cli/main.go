package main

import (
	"fmt"
	"os"

	"github.com/TechNxt05/Amazon-Recommendation-System/cmd/recsys-cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

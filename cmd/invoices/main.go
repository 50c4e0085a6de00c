package main

import (
	"fmt"
	"os"

	"github.com/joseph-ayodele/invoice-extractor/cmd/invoices/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		if _, perr := fmt.Fprintf(os.Stderr, "error: %v\n", err); perr != nil {
			fmt.Printf("error: %v\n", err)
		}
		os.Exit(1)
	}
}

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"pinkilang/internal/service"
)

// Writes the transaction import template, pre-filled with sample rows, so
// the import endpoint can be exercised by hand.
func main() {
	out := flag.String("out", filepath.Join("testdata", "sample_transactions.xlsx"), "Output path")
	flag.Parse()

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create(*out)
	if err != nil {
		fmt.Printf("Error creating file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := service.NewExcelService().GenerateTransactionTemplate(f); err != nil {
		fmt.Printf("Error writing workbook: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Sample workbook written to %s\n", *out)
}

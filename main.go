// Package main provides the entry point for rv32pipe.
// rv32pipe is a cycle-accurate RV32I pipeline simulator.
//
// For the full CLI, use: go run ./cmd/rv32pipe
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("rv32pipe - RV32I pipeline simulator")
	fmt.Println("")
	fmt.Println("Usage: rv32pipe [options] <program.s>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -pipeline    Enable the 5-stage pipelined model (default true)")
	fmt.Println("  -forward     Enable operand forwarding (default true)")
	fmt.Println("  -v           Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rv32pipe' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/rv32pipe' instead.")
	}
}

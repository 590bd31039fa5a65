// Package main provides the full CLI for rv32pipe.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/rv32pipe/simulator"
)

var (
	pipelined  = flag.Bool("pipeline", true, "Enable the 5-stage pipelined model")
	forwarding = flag.Bool("forward", true, "Enable operand forwarding")
	maxSteps   = flag.Uint64("max-steps", simulator.DefaultMaxSteps, "Safety bound on run()'s step count")
	verbose    = flag.Bool("v", false, "Verbose output")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: rv32pipe [options] <program.s>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programPath := flag.Arg(0)
	source, err := os.ReadFile(programPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading program: %v\n", err)
		os.Exit(1)
	}

	sim := simulator.NewSimulator(simulator.WithMaxSteps(*maxSteps))
	if err := sim.SetEnvironment(*pipelined, *forwarding); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring simulator: %v\n", err)
		os.Exit(1)
	}

	if !sim.LoadProgram(string(source)) {
		for _, l := range sim.Logs() {
			fmt.Fprintf(os.Stderr, "[%d] %s\n", l.Severity, l.Message)
		}
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Loaded: %s\n", programPath)
		fmt.Printf("Pipelined: %v, forwarding: %v\n", *pipelined, *forwarding)
	}

	sim.Run()

	for _, l := range sim.Logs() {
		fmt.Printf("[%d] %s\n", l.Severity, l.Message)
	}

	stats := sim.Stats()
	fmt.Printf("\n")
	fmt.Printf("Total cycles:          %d\n", stats.TotalCycles)
	fmt.Printf("Instructions executed: %d\n", stats.InstructionsExecuted)
	fmt.Printf("CPI:                   %.2f\n", stats.CyclesPerInstruction())
	fmt.Printf("Stall bubbles:         %d\n", stats.StallBubbles)
	fmt.Printf("Pipeline flushes:      %d\n", stats.PipelineFlushes)

	if *verbose {
		regs := sim.Registers()
		fmt.Printf("\nFinal registers:\n")
		for i, v := range regs {
			fmt.Printf("  x%-2d = 0x%08x\n", i, v)
		}
	}
}

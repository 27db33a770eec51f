// Package main - test_runner.go
// Executable to run the scripted colony scenarios.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/redhaven/colony/internal/platform/logger"
	"github.com/redhaven/colony/test"
)

func main() {
	verbose := flag.Bool("v", false, "log engine output")
	flag.Parse()

	fmt.Println("RED HAVEN - SCENARIO SUITE")
	fmt.Println("==========================")

	log := logger.NewDiscardLogger()
	if *verbose {
		log = logger.NewLoggerWithLevel("debug")
	}

	runner := test.NewRunner(log)
	results := runner.RunAll(context.Background(), test.All())

	// Summary
	passed := 0
	failed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("   Passed: %d\n", passed)
	fmt.Printf("   Failed: %d\n", failed)

	if failed > 0 {
		os.Exit(1)
	}
}

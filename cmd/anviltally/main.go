// Package main provides the anviltally command-line tool. It discovers
// Anvil region files under the given paths, tallies the per-block-state
// distribution across every chunk in them, and prints the top rows.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

func main() {
	topN := flag.Int("n", 10, "Number of rows to display")
	var ignoreFlag string
	flag.StringVar(&ignoreFlag, "i", "", "Comma-separated block names to suppress")
	flag.StringVar(&ignoreFlag, "ignore", "", "Comma-separated block names to suppress")
	var sorted bool
	flag.BoolVar(&sorted, "s", false, "Sort output by descending count")
	flag.BoolVar(&sorted, "sorted", false, "Sort output by descending count")
	var verbose bool
	flag.BoolVar(&verbose, "v", false, "Print elapsed time")
	flag.BoolVar(&verbose, "verbose", false, "Print elapsed time")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		paths = []string{"."}
	}

	start := time.Now()

	files, err := discoverRegionFiles(paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "anviltally: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "anviltally: no region files found")
		os.Exit(1)
	}

	totals, err := tallyRegions(files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "anviltally: %v\n", err)
		os.Exit(1)
	}

	applyIgnores(totals, parseIgnoreList(ignoreFlag))
	renderTable(os.Stdout, totals, *topN, sorted)

	if verbose {
		slog.Info("tally complete",
			"regions", len(files),
			"distinct_blocks", len(totals),
			"elapsed", time.Since(start).String())
	}
}

// parseIgnoreList splits a comma-separated ignore flag into trimmed,
// non-empty names.
func parseIgnoreList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/anviltally/anviltally/anvil"
	"github.com/anviltally/anviltally/chunkmodel"
)

// tallyRegions parses every region file and merges the per-chunk block
// distributions into one counter. Regions are processed in parallel, one
// worker per CPU; merging is plain addition per name, so worker completion
// order doesn't affect the result. A failure in any region fails the whole
// run: the remaining regions are still parsed, then the first error is
// returned and no totals.
func tallyRegions(files []string) (map[string]uint64, error) {
	workers := runtime.NumCPU()
	if workers > len(files) {
		workers = len(files)
	}

	jobs := make(chan string)
	var (
		mu       sync.Mutex
		totals   = make(map[string]uint64)
		firstErr error
	)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				dist, err := tallyRegionFile(path)
				mu.Lock()
				if err != nil && firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", path, err)
				}
				mergeCounts(totals, dist)
				mu.Unlock()
			}
		}()
	}

	for _, path := range files {
		jobs <- path
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return totals, nil
}

func tallyRegionFile(path string) (map[string]uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	chunks, err := anvil.Open(f).Chunks()
	if err != nil {
		return nil, err
	}

	totals := make(map[string]uint64)
	for _, chunk := range chunks {
		mergeCounts(totals, chunkmodel.Distribution(chunk))
	}
	return totals, nil
}

func mergeCounts(into, from map[string]uint64) {
	for name, count := range from {
		into[name] += count
	}
}

// applyIgnores removes each named block from totals, matching both the bare
// name and the minecraft:-prefixed form so "stone" suppresses
// "minecraft:stone" and vice versa.
func applyIgnores(totals map[string]uint64, ignores []string) {
	for _, name := range ignores {
		delete(totals, name)
		if strings.HasPrefix(name, "minecraft:") {
			delete(totals, strings.TrimPrefix(name, "minecraft:"))
		} else {
			delete(totals, "minecraft:"+name)
		}
	}
}

type tallyRow struct {
	Name  string
	Count uint64
}

// topRows returns up to n rows. When sorted is false the rows come out in
// name order, which keeps repeated runs over the same world stable.
func topRows(totals map[string]uint64, n int, sorted bool) []tallyRow {
	rows := make([]tallyRow, 0, len(totals))
	for name, count := range totals {
		rows = append(rows, tallyRow{Name: name, Count: count})
	}
	if sorted {
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].Count != rows[j].Count {
				return rows[i].Count > rows[j].Count
			}
			return rows[i].Name < rows[j].Name
		})
	} else {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	}
	if n >= 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

func renderTable(w io.Writer, totals map[string]uint64, n int, sorted bool) {
	rows := topRows(totals, n, sorted)
	nameWidth := len("block")
	for _, row := range rows {
		if len(row.Name) > nameWidth {
			nameWidth = len(row.Name)
		}
	}
	fmt.Fprintf(w, "%-*s  %s\n", nameWidth, "block", "count")
	for _, row := range rows {
		fmt.Fprintf(w, "%-*s  %d\n", nameWidth, row.Name, row.Count)
	}
}

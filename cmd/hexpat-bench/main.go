package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/sansecio/hexpat"
	"github.com/sansecio/hexpat/cmd/internal"
	"github.com/sansecio/hexpat/pattern"
	"github.com/sansecio/hexpat/provider"
)

func main() {
	patternPath := flag.String("pattern", "", "path to pattern file")
	dataPath := flag.String("data", "", "path to data file")
	iterations := flag.Int("n", 10, "number of iterations")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file (evaluation only)")
	flag.Parse()

	if *patternPath == "" || *dataPath == "" {
		fmt.Fprintf(os.Stderr, "usage: hexpat-bench -pattern <file> -data <file> [-n N] [-cpuprofile out]\n")
		os.Exit(1)
	}

	// Load data into memory so reads are not measured
	data, err := os.ReadFile(*dataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read data file: %v\n", err)
		os.Exit(1)
	}
	src, err := os.ReadFile(*patternPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read pattern file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Evaluating %s over %d bytes, %d iterations\n\n", *patternPath, len(data), *iterations)

	r := hexpat.New(hexpat.Options{IncludeLoader: internal.IncludeLoader(".", *patternPath)})
	buf := provider.NewBuffer(data)
	ctx := context.Background()

	// Warm up
	var patterns []pattern.Pattern
	for range 3 {
		if patterns, err = r.ExecuteString(ctx, buf, string(src)); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	start := time.Now()
	for range *iterations {
		if _, err := r.ExecuteString(ctx, buf, string(src)); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
	elapsed := time.Since(start) / time.Duration(*iterations)

	counts := internal.KindCounts(patterns)
	fmt.Printf("time:      %v per run  (%.2f MB/s)\n", elapsed, float64(len(data))/elapsed.Seconds()/1024/1024)
	fmt.Printf("patterns:  %d\n", internal.SumValues(counts))
	for _, kind := range internal.SortByCount(counts) {
		fmt.Printf("  %-10s %d\n", kind, counts[kind])
	}
}

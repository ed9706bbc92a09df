package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/sansecio/hexpat"
	"github.com/sansecio/hexpat/cmd/internal"
	"github.com/sansecio/hexpat/console"
	"github.com/sansecio/hexpat/evaluator"
	"github.com/sansecio/hexpat/internal/logger"
	"github.com/sansecio/hexpat/pattern"
)

func main() {
	endian := flag.String("endian", "little", "default byte order: little, big or native")
	depth := flag.Int("depth", evaluator.DefaultEvalDepth, "maximum type nesting and recursion depth")
	include := flag.String("include", "", "comma separated include directories")
	sortKey := flag.String("sort", "", "sort members by name, offset, size, value, type or color")
	desc := flag.Bool("desc", false, "sort in descending order")
	hidden := flag.Bool("hidden", false, "show hidden patterns")
	maxDepth := flag.Int("max-depth", 0, "limit the printed tree depth (0 for no limit)")
	at := flag.String("at", "", "only print the innermost pattern covering this offset")
	verbose := flag.Bool("v", false, "enable debug logging")
	logFormat := flag.String("log-format", "text", "log format: text or json")
	logFile := flag.String("log-file", "", "write logs to this file instead of stderr")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: hexpat [flags] <pattern.hexpat> <data-file>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}
	patternFile := flag.Arg(0)
	dataFile := flag.Arg(1)

	logCfg := logger.DefaultConfig()
	logCfg.Format = *logFormat
	logCfg.LogFile = *logFile
	if *verbose {
		logCfg.Level = logger.LevelDebug
	}
	if err := logger.Init(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "error configuring logger: %v\n", err)
		os.Exit(1)
	}

	order, err := internal.ParseEndian(*endian)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := hexpat.New(hexpat.Options{
		DefaultEndian: order,
		EvalDepth:     *depth,
		IncludeLoader: internal.IncludeLoader(*include, patternFile),
		Logger:        logger.Logger(),
	})
	patterns, data, err := internal.Execute(ctx, r, patternFile, dataFile)
	printConsole(r.ConsoleLog())
	if err != nil {
		if errors.Is(err, evaluator.ErrInterrupted) {
			fmt.Fprintln(os.Stderr, "interrupted")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer data.Close()

	if *sortKey != "" {
		key, err := internal.ParseSortKey(*sortKey)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		dir := pattern.Ascending
		if *desc {
			dir = pattern.Descending
		}
		if err := pattern.Sort(patterns, key, dir, data); err != nil {
			fmt.Fprintf(os.Stderr, "error sorting patterns: %v\n", err)
			os.Exit(1)
		}
	}

	if *at != "" {
		offset, err := strconv.ParseUint(*at, 0, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid offset %q\n", *at)
			os.Exit(1)
		}
		p, ok := pattern.PatternAt(patterns, offset)
		if !ok {
			fmt.Fprintf(os.Stderr, "no pattern at 0x%X\n", offset)
			os.Exit(1)
		}
		if color, ok := pattern.HighlightAt(patterns, offset); ok {
			fmt.Fprintf(os.Stderr, "highlight at 0x%X: %08X\n", offset, color)
		}
		patterns = []pattern.Pattern{p}
	}

	opts := internal.TreeOptions{ShowHidden: *hidden, MaxDepth: *maxDepth}
	if err := internal.PrintTree(os.Stdout, patterns, opts); err != nil {
		fmt.Fprintf(os.Stderr, "error writing output: %v\n", err)
		os.Exit(1)
	}
}

func printConsole(entries []console.Entry) {
	for _, e := range entries {
		fmt.Fprintln(os.Stderr, e)
	}
}

package internal

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sansecio/hexpat/pattern"
)

// TreeOptions controls PrintTree.
type TreeOptions struct {
	ShowHidden bool
	MaxDepth   int // 0 prints every level
}

// PrintTree writes one line per pattern with its range, name, type and
// value. Members are indented below their parent. Shared pointer targets
// are printed once.
func PrintTree(w io.Writer, roots []pattern.Pattern, opts TreeOptions) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANGE\tNAME\tTYPE\tVALUE")
	for _, root := range roots {
		printPattern(tw, root, 0, opts)
	}
	return tw.Flush()
}

func printPattern(w io.Writer, p pattern.Pattern, depth int, opts TreeOptions) {
	b := p.Common()
	if b.Hidden && !opts.ShowHidden {
		return
	}
	end := b.End()
	if end > b.Offset {
		end--
	}
	fmt.Fprintf(w, "%08X-%08X\t%s%s\t%s\t%s\n",
		b.Offset, end, strings.Repeat("  ", depth), b.Label(), pattern.TypeDisplay(p), pattern.Format(p))

	if opts.MaxDepth > 0 && depth+1 >= opts.MaxDepth {
		return
	}
	if ptr, ok := p.(*pattern.Pointer); ok && ptr.Target != nil && !ptr.Shared {
		printPattern(w, ptr.Target, depth+1, opts)
	}
	for _, m := range pattern.Members(p) {
		printPattern(w, m, depth+1, opts)
	}
}

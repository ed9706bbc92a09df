package scanner

import (
	"context"
	"fmt"

	regexp "github.com/wasilibs/go-re2"
	"github.com/wasilibs/go-re2/experimental"

	"github.com/sansecio/hexpat/provider"
)

// Regex is a compiled regular expression matched against raw bytes. The
// expression is compiled in Latin-1 mode so every byte is one character.
type Regex struct {
	re *regexp.Regexp
}

// CompileRegex compiles expr.
func CompileRegex(expr string) (*Regex, error) {
	re, err := experimental.CompileLatin1(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid regex: %w", err)
	}
	return &Regex{re: re}, nil
}

func (r *Regex) String() string { return r.re.String() }

// Scan calls fn for every non-overlapping match of r in p, in offset order.
// The whole provider is loaded into memory since matches may span any
// number of chunks.
func (r *Regex) Scan(ctx context.Context, p provider.Provider, fn func(Match) bool) error {
	data, err := readAll(ctx, p)
	if err != nil {
		return err
	}
	for _, loc := range r.re.FindAllIndex(data, -1) {
		if !fn(Match{Offset: uint64(loc[0]), Length: loc[1] - loc[0]}) {
			return nil
		}
	}
	return nil
}

// FindRegex returns the offset of the occurrence-th (0-based) match of expr
// in p.
func FindRegex(ctx context.Context, p provider.Provider, expr string, occurrence int) (uint64, bool, error) {
	r, err := CompileRegex(expr)
	if err != nil {
		return 0, false, err
	}
	return nth(occurrence, func(fn func(Match) bool) error {
		return r.Scan(ctx, p, fn)
	})
}

func readAll(ctx context.Context, p provider.Provider) ([]byte, error) {
	data := make([]byte, p.Size())
	for base := uint64(0); base < uint64(len(data)); base += chunkSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(base+chunkSize, uint64(len(data)))
		if err := p.Read(base, data[base:end]); err != nil {
			return nil, fmt.Errorf("reading 0x%X: %w", base, err)
		}
	}
	return data, nil
}

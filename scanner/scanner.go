// Package scanner searches provider contents for byte sequences using
// Aho-Corasick and for regular expressions using RE2.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sort"

	ahocorasick "github.com/pgavlin/aho-corasick"

	"github.com/sansecio/hexpat/provider"
)

// chunkSize is the number of bytes read from a provider per step.
const chunkSize = 1 << 20

// ErrEmptyPattern is returned when compiling an empty sequence.
var ErrEmptyPattern = errors.New("empty search pattern")

// Match is one occurrence of a pattern in a provider.
type Match struct {
	Pattern int
	Offset  uint64
	Length  int
}

// Sequences is a compiled set of byte sequences searched in a single pass.
type Sequences struct {
	matcher  ahocorasick.AhoCorasick
	patterns [][]byte
	maxLen   int
}

// CompileSequences builds a matcher for patterns.
func CompileSequences(patterns [][]byte) (*Sequences, error) {
	if len(patterns) == 0 {
		return nil, ErrEmptyPattern
	}
	s := &Sequences{patterns: patterns}
	for i, p := range patterns {
		if len(p) == 0 {
			return nil, fmt.Errorf("pattern %d: %w", i, ErrEmptyPattern)
		}
		s.maxLen = max(s.maxLen, len(p))
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{MatchKind: ahocorasick.StandardMatch})
	s.matcher = builder.BuildByte(patterns)
	return s, nil
}

// Scan calls fn for every occurrence of every pattern in p, ordered by
// offset and then by pattern index. Overlapping occurrences are all
// reported. Scanning stops when fn returns false.
func (s *Sequences) Scan(ctx context.Context, p provider.Provider, fn func(Match) bool) error {
	size := p.Size()
	overlap := uint64(s.maxLen - 1)
	buf := make([]byte, 0, chunkSize+overlap)

	for base := uint64(0); base < size; base += chunkSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		n := min(chunkSize+overlap, size-base)
		buf = buf[:n]
		if err := p.Read(base, buf); err != nil {
			return fmt.Errorf("reading 0x%X: %w", base, err)
		}

		// Matches starting in the overlap belong to the next chunk.
		var matches []Match
		iter := s.matcher.IterOverlappingByte(buf)
		for m := iter.Next(); m != nil; m = iter.Next() {
			if uint64(m.Start()) >= chunkSize {
				continue
			}
			matches = append(matches, Match{
				Pattern: m.Pattern(),
				Offset:  base + uint64(m.Start()),
				Length:  m.End() - m.Start(),
			})
		}
		sort.Slice(matches, func(i, j int) bool {
			if matches[i].Offset != matches[j].Offset {
				return matches[i].Offset < matches[j].Offset
			}
			return matches[i].Pattern < matches[j].Pattern
		})

		for _, m := range matches {
			if !fn(m) {
				return nil
			}
		}
	}
	return nil
}

// FindSequence returns the offset of the occurrence-th (0-based) occurrence
// of seq in p.
func FindSequence(ctx context.Context, p provider.Provider, seq []byte, occurrence int) (uint64, bool, error) {
	s, err := CompileSequences([][]byte{seq})
	if err != nil {
		return 0, false, err
	}
	return nth(occurrence, func(fn func(Match) bool) error {
		return s.Scan(ctx, p, fn)
	})
}

// nth runs scan and returns the offset of the occurrence-th match.
func nth(occurrence int, scan func(func(Match) bool) error) (uint64, bool, error) {
	if occurrence < 0 {
		return 0, false, nil
	}
	var (
		offset uint64
		found  bool
		seen   int
	)
	err := scan(func(m Match) bool {
		if seen == occurrence {
			offset, found = m.Offset, true
			return false
		}
		seen++
		return true
	})
	if err != nil {
		return 0, false, err
	}
	return offset, found, nil
}

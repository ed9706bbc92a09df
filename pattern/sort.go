package pattern

import (
	"cmp"
	"fmt"
	"math"
	"math/big"
	"slices"
	"strings"

	"github.com/sansecio/hexpat/provider"
	"github.com/sansecio/hexpat/token"
)

// SortKey selects the attribute patterns are ordered by.
type SortKey uint8

const (
	ByName SortKey = iota
	ByOffset
	BySize
	ByValue
	ByTypeName
	ByColor
)

// Direction is the sort order.
type Direction uint8

const (
	Ascending Direction = iota
	Descending
)

// Sort reorders patterns and, recursively, the members of structs, unions
// and arrays. Sorting by value re-reads scalar values from p so the order
// reflects the current data.
func Sort(patterns []Pattern, key SortKey, dir Direction, p provider.Provider) error {
	var values map[Pattern]sortValue
	if key == ByValue {
		values = make(map[Pattern]sortValue)
		for _, pat := range patterns {
			v, err := readSortValue(pat, p)
			if err != nil {
				return err
			}
			values[pat] = v
		}
	}

	slices.SortStableFunc(patterns, func(a, b Pattern) int {
		c := compare(a, b, key, values)
		if dir == Descending {
			return -c
		}
		return c
	})

	for _, pat := range patterns {
		switch pat := pat.(type) {
		case *Struct:
			if err := Sort(pat.Members, key, dir, p); err != nil {
				return err
			}
		case *Union:
			if err := Sort(pat.Members, key, dir, p); err != nil {
				return err
			}
		case *Array:
			if err := Sort(pat.Entries, key, dir, p); err != nil {
				return err
			}
		}
	}
	return nil
}

func compare(a, b Pattern, key SortKey, values map[Pattern]sortValue) int {
	x, y := a.Common(), b.Common()
	switch key {
	case ByName:
		return strings.Compare(x.Label(), y.Label())
	case ByOffset:
		return cmp.Compare(x.Offset, y.Offset)
	case BySize:
		return cmp.Compare(x.Size, y.Size)
	case ByTypeName:
		return strings.Compare(TypeDisplay(a), TypeDisplay(b))
	case ByColor:
		return cmp.Compare(x.Color, y.Color)
	case ByValue:
		return values[a].compare(values[b])
	}
	return 0
}

// sortValue orders numbers before text. NaN sorts before every other
// number.
type sortValue struct {
	num  *big.Float
	nan  bool
	text string
}

func (v sortValue) numeric() bool { return v.num != nil || v.nan }

func (v sortValue) compare(w sortValue) int {
	switch {
	case v.nan || w.nan:
		if v.numeric() && w.numeric() {
			return -cmp.Compare(boolRank(v.nan), boolRank(w.nan))
		}
	case v.num != nil && w.num != nil:
		return v.num.Cmp(w.num)
	}
	switch {
	case v.numeric() && !w.numeric():
		return -1
	case !v.numeric() && w.numeric():
		return 1
	}
	return strings.Compare(v.text, w.text)
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func readSortValue(pat Pattern, p provider.Provider) (sortValue, error) {
	v, ok, err := Reread(pat, p)
	if err != nil {
		return sortValue{}, err
	}
	if !ok {
		return sortValue{text: Format(pat)}, nil
	}
	if v.Type.IsFloat() {
		f := v.Float64()
		if math.IsNaN(f) {
			return sortValue{nan: true}, nil
		}
		return sortValue{num: big.NewFloat(f)}, nil
	}
	return sortValue{num: new(big.Float).SetInt(v.Big())}, nil
}

// Reread decodes the current value of a scalar pattern from p. ok is false
// for patterns without a scalar value.
func Reread(pat Pattern, p provider.Provider) (v token.Literal, ok bool, err error) {
	var t token.ValueType
	switch pat := pat.(type) {
	case *Unsigned:
		t = pat.Value.Type
	case *Signed:
		t = pat.Value.Type
	case *Float:
		t = pat.Value.Type
	case *Character:
		t = pat.Value.Type
	case *Boolean:
		t = token.Boolean
	case *Enum:
		t = pat.Value.Type
	default:
		v, ok = Value(pat)
		return v, ok, nil
	}

	b := pat.Common()
	buf := make([]byte, b.Size)
	if err := p.Read(b.Offset, buf); err != nil {
		return token.Literal{}, false, fmt.Errorf("reading %s: %w", b.Name, err)
	}
	if uint64(t.Size()) != b.Size {
		return token.FromInt128(t, token.DecodeBits(buf, b.Endian)), true, nil
	}
	return token.Decode(t, buf, b.Endian), true, nil
}

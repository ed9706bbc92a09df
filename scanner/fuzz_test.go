package scanner

import (
	"bytes"
	"context"
	"testing"

	"github.com/sansecio/hexpat/provider"
)

func FuzzFindSequence(f *testing.F) {
	f.Add([]byte("hello world"), []byte("o"))
	f.Add([]byte{0, 0, 0, 0}, []byte{0, 0})
	f.Add([]byte("PKPKPK"), []byte("PKP"))

	f.Fuzz(func(t *testing.T, data, seq []byte) {
		if len(seq) == 0 {
			return
		}
		offset, found, err := FindSequence(context.Background(), provider.NewBuffer(data), seq, 0)
		if err != nil {
			t.Fatal(err)
		}
		want := bytes.Index(data, seq)
		if found != (want >= 0) || (found && offset != uint64(want)) {
			t.Errorf("FindSequence() = (%d, %v), bytes.Index = %d", offset, found, want)
		}
	})
}

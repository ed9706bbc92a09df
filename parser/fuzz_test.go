package parser

import (
	"testing"

	"github.com/sansecio/hexpat/lexer"
)

func FuzzParse(f *testing.F) {
	seeds := []string{
		`u32 placementVar @ 0x00;`,
		`struct TestStruct { s32 variable; padding[20]; u8 array[0x10]; }; TestStruct testStruct @ 0x100;`,
		`union TestUnion { s32 array[2]; u128 variable; }; TestUnion testUnion @ 0x200;`,
		`bitfield TestBitfield { a : 4; b : 4; c : 4; d : 4; }; be TestBitfield testBitfield @ 0x12;`,
		`enum TestEnum : u32 { A, B = 0x1234, C, D }; TestEnum testEnum @ 0x120;`,
		`std::assert((10 == 20) ? 30 : 40 == 40, "");`,
		`fn f(a) { if (a) return 1; else return 0; }`,
		`struct S { u8 n; u8 d[while(std::mem::read_unsigned($, 1) != 0)]; S *next : u32 [[hidden]]; };`,
		`char name[] @ 0;`,
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		toks, err := lexer.Lex(input)
		if err != nil {
			return
		}
		New().Parse(toks) //nolint:errcheck
	})
}

package preprocessor

import (
	"errors"
	"strings"
	"testing"
)

func mustPreprocess(t *testing.T, p *Preprocessor, src string) *Result {
	t.Helper()
	res, err := p.Preprocess("", src)
	if err != nil {
		t.Fatalf("failed to preprocess: %v", err)
	}
	return res
}

func TestDefineSubstitution(t *testing.T) {
	p := New(nil)
	res := mustPreprocess(t, p, "#define OFFSET 0x10\n#define OFFSET_2 0x20\nu8 a @ OFFSET;\nu8 b @ OFFSET_2; // OFFSET\nstr \"OFFSET\";")
	lines := strings.Split(res.Source, "\n")
	if len(lines) != 5 {
		t.Fatalf("expected line count to be preserved, got %d lines", len(lines))
	}
	if lines[0] != "" || lines[1] != "" {
		t.Errorf("directive lines should be blank, got %q %q", lines[0], lines[1])
	}
	if lines[2] != "u8 a @ 0x10;" {
		t.Errorf("line 3 = %q", lines[2])
	}
	if strings.TrimSpace(lines[3]) != "u8 b @ 0x20;" {
		t.Errorf("line 4 = %q", lines[3])
	}
	if lines[4] != `str "OFFSET";` {
		t.Errorf("string literal must not be substituted, got %q", lines[4])
	}
}

func TestDefineRedefinition(t *testing.T) {
	p := New(nil)
	_, err := p.Preprocess("", "#define A 1\n#define A 2\n")
	var ppErr *Error
	if !errors.As(err, &ppErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if ppErr.Line != 2 || !strings.Contains(ppErr.Message, "redefinition") {
		t.Errorf("unexpected error %v", ppErr)
	}
}

func TestInclude(t *testing.T) {
	loader := MapLoader{
		"types.hexpat": "struct Header {\n  u32 magic;\n};",
	}
	p := New(loader)
	res := mustPreprocess(t, p, "#include \"types.hexpat\"\nHeader h @ 0;")
	if !strings.Contains(res.Source, "u32 magic;") {
		t.Fatalf("include not expanded: %q", res.Source)
	}
	if got := res.Lines.Origin(2); got.File != "types.hexpat" || got.Line != 2 {
		t.Errorf("origin of line 2 = %+v", got)
	}
	if got := res.Lines.Origin(4); got.File != "" || got.Line != 2 {
		t.Errorf("origin of line 4 = %+v", got)
	}
}

func TestIncludeAngleBrackets(t *testing.T) {
	p := New(MapLoader{"std/io.pat": "u8 x;"})
	res := mustPreprocess(t, p, "#include <std/io.pat>")
	if res.Source != "u8 x;" {
		t.Errorf("got %q", res.Source)
	}
}

func TestIncludeCycle(t *testing.T) {
	p := New(MapLoader{"a": "#include \"b\"", "b": "#include \"a\""})
	_, err := p.Preprocess("", "#include \"a\"")
	if err == nil || !strings.Contains(err.Error(), "depth exceeds") {
		t.Fatalf("expected include depth error, got %v", err)
	}
}

func TestPragmas(t *testing.T) {
	var endian string
	p := New(nil)
	p.AddDefaultPragmaHandlers()
	p.AddPragmaHandler("endian", func(v string) bool {
		endian = v
		return v == "big" || v == "little"
	})

	mustPreprocess(t, p, "#pragma endian big\n#pragma MIME application/x-test")
	if endian != "big" {
		t.Errorf("endian handler saw %q", endian)
	}

	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"unknown_type", "#pragma nope 1", "no #pragma handler registered for type nope"},
		{"invalid_value", "#pragma endian middle", "invalid value provided to 'endian' #pragma directive"},
		{"empty_mime", "#pragma MIME", "invalid value provided to 'MIME' #pragma directive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Preprocess("", tt.src)
			if err == nil || !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("expected %q, got %v", tt.msg, err)
			}
		})
	}
}

func TestInvalidDirectives(t *testing.T) {
	tests := []struct {
		src string
		msg string
	}{
		{"#foo bar", "unknown preprocessor directive '#foo'"},
		{"#include missing_quotes", "malformed #include directive"},
		{"#define", "malformed #define directive"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := New(nil).Preprocess("", tt.src)
			if err == nil || !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("expected %q, got %v", tt.msg, err)
			}
		})
	}
}

func TestCommentsPreserveLines(t *testing.T) {
	res := mustPreprocess(t, New(nil), "/* a\nb\n#define X 1 */\nu8 c; // #pragma x")
	lines := strings.Split(res.Source, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), res.Source)
	}
	if strings.TrimSpace(lines[3]) != "u8 c;" {
		t.Errorf("line 4 = %q", lines[3])
	}
}

func TestIncludeWithoutLoader(t *testing.T) {
	_, err := New(nil).Preprocess("main", "#include \"x\"")
	var ppErr *Error
	if !errors.As(err, &ppErr) || ppErr.File != "main" {
		t.Fatalf("expected error in main, got %v", err)
	}
}

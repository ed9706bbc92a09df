package hexpat

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sansecio/hexpat/console"
	"github.com/sansecio/hexpat/evaluator"
	"github.com/sansecio/hexpat/internal/logger"
	"github.com/sansecio/hexpat/pattern"
	"github.com/sansecio/hexpat/preprocessor"
	"github.com/sansecio/hexpat/provider"
)

var sample = []byte{0x12, 0x34, 0x56, 0x78, 'a', 'b', 'c', 0}

func mustExecute(t *testing.T, r *Runtime, src string) []pattern.Pattern {
	t.Helper()
	patterns, err := r.ExecuteString(context.Background(), provider.NewBuffer(sample), src)
	if err != nil {
		t.Fatalf("ExecuteString() error = %v", err)
	}
	return patterns
}

func wantKind(t *testing.T, err error, kind ErrorKind) *Error {
	t.Helper()
	var hexErr *Error
	if !errors.As(err, &hexErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if hexErr.Kind != kind {
		t.Fatalf("Kind = %s, want %s (%v)", hexErr.Kind, kind, err)
	}
	return hexErr
}

func TestExecuteString(t *testing.T) {
	r := New(Options{})
	patterns := mustExecute(t, r, `
		u16 first @ 0x00;
		be u16 second @ 0x02;
		char text[] @ 0x04;
	`)
	if len(patterns) != 3 {
		t.Fatalf("expected 3 patterns, got %d", len(patterns))
	}
	values := []uint64{0x3412, 0x5678}
	for i, want := range values {
		v, ok := pattern.Value(patterns[i])
		if !ok || v.Uint64() != want {
			t.Errorf("pattern %d = %v, want %#x", i, v, want)
		}
	}
	if got := pattern.Format(patterns[2]); got != `"abc"` {
		t.Errorf("text = %s", got)
	}
}

func TestPragmas(t *testing.T) {
	t.Run("endian", func(t *testing.T) {
		patterns := mustExecute(t, New(Options{}), "#pragma endian big\nu16 x @ 0;")
		if v, _ := pattern.Value(patterns[0]); v.Uint64() != 0x1234 {
			t.Errorf("x = %#x, want 0x1234", v.Uint64())
		}
	})

	t.Run("endian_resets_between_runs", func(t *testing.T) {
		r := New(Options{})
		mustExecute(t, r, "#pragma endian big\nu16 x @ 0;")
		patterns := mustExecute(t, r, "u16 x @ 0;")
		if v, _ := pattern.Value(patterns[0]); v.Uint64() != 0x3412 {
			t.Errorf("x = %#x, want 0x3412", v.Uint64())
		}
	})

	t.Run("eval_depth", func(t *testing.T) {
		_, err := New(Options{}).ExecuteString(context.Background(), provider.NewBuffer(sample), `#pragma eval_depth 2
			struct A { u8 x; };
			struct B { A a; };
			struct C { B b; };
			C c @ 0;
		`)
		e := wantKind(t, err, EvaluateError)
		if !strings.HasPrefix(e.Message, "evaluation depth exceeds maximum of 2") {
			t.Errorf("Message = %q", e.Message)
		}
	})

	t.Run("base_address", func(t *testing.T) {
		buf := provider.NewBuffer(sample)
		_, err := New(Options{}).ExecuteString(context.Background(), buf, `#pragma base_address 0x1000
			std::assert(std::mem::base_address() == 0x1000, "rebased");
		`)
		if err != nil {
			t.Fatal(err)
		}
		if buf.BaseAddress() != 0x1000 {
			t.Errorf("BaseAddress() = %#x", buf.BaseAddress())
		}
	})

	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"unknown", "#pragma unknown 1", "no #pragma handler registered for type unknown"},
		{"bad_depth", "#pragma eval_depth 0", "invalid value provided to 'eval_depth' #pragma directive"},
		{"bad_endian", "#pragma endian middle", "invalid value provided to 'endian' #pragma directive"},
		{"bad_base", "#pragma base_address nowhere", "invalid value provided to 'base_address' #pragma directive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Options{}).ExecuteString(context.Background(), provider.NewBuffer(sample), tt.src+"\nu8 x @ 0;")
			e := wantKind(t, err, PreprocessorError)
			if e.Message != tt.msg || e.Line != 1 {
				t.Errorf("got line %d %q, want line 1 %q", e.Line, e.Message, tt.msg)
			}
		})
	}
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind ErrorKind
		line int
	}{
		{"preprocessor", `#include "missing.hexpat"`, PreprocessorError, 1},
		{"lexer", "u8 x @ 0;\nu8 y @ \"open;", LexerError, 2},
		{"parser", "u8 x @ 0;\n\nu8 y @ ;", ParseError, 3},
		{"validator", "struct A { A a; };\nA a @ 0;", ValidatorError, 1},
		{"evaluator", "u8 x @ 0;\nu32 y @ 0x06;", EvaluateError, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(Options{IncludeLoader: preprocessor.MapLoader{}})
			_, err := r.ExecuteString(context.Background(), provider.NewBuffer(sample), tt.src)
			e := wantKind(t, err, tt.kind)
			if e.Line != tt.line {
				t.Errorf("Line = %d, want %d (%v)", e.Line, tt.line, err)
			}
		})
	}
}

func TestIncludeLineMapping(t *testing.T) {
	loader := preprocessor.MapLoader{
		"defs.hexpat": "struct S {\n\tu8 a;\n\tu8 b[missing];\n};",
	}
	r := New(Options{IncludeLoader: loader})
	_, err := r.ExecuteString(context.Background(), provider.NewBuffer(sample), "#include \"defs.hexpat\"\nS s @ 0;")
	e := wantKind(t, err, EvaluateError)
	if e.File != "defs.hexpat" || e.Line != 3 {
		t.Errorf("error at %s:%d, want defs.hexpat:3", e.File, e.Line)
	}
	if e.Error() != "defs.hexpat:3: no identifier with name 'missing' was found" {
		t.Errorf("Error() = %q", e.Error())
	}
}

func TestExecuteFile(t *testing.T) {
	dir := t.TempDir()
	mustWrite := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}
	mustWrite("types.hexpat", "struct Pair { u8 a; u8 b; };\n")
	main := mustWrite("main.hexpat", "#include <types.hexpat>\nPair pairs[2] @ 0;\n")

	patterns, err := New(Options{}).ExecuteFile(context.Background(), provider.NewBuffer(sample), main)
	if err != nil {
		t.Fatalf("ExecuteFile() error = %v", err)
	}
	if got := pattern.TypeDisplay(patterns[0]); got != "Pair[2]" {
		t.Errorf("TypeDisplay() = %q", got)
	}

	if _, err := New(Options{}).ExecuteFile(context.Background(), provider.NewBuffer(sample), filepath.Join(dir, "absent.hexpat")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestConsoleLog(t *testing.T) {
	r := New(Options{})
	mustExecute(t, r, `
		u8 x @ 0;
		std::print("x = {}", x);
		std::assert_warn(x == 0, "x is not zero");
	`)
	log := r.ConsoleLog()
	if len(log) != 2 {
		t.Fatalf("expected 2 console entries, got %v", log)
	}
	if log[0].Level != console.Info || log[0].Message != "x = 18" {
		t.Errorf("entry 0 = %v", log[0])
	}
	if log[1].Level != console.Warning {
		t.Errorf("entry 1 = %v", log[1])
	}

	// A new run starts with an empty console.
	mustExecute(t, r, "u8 x @ 0;")
	if n := len(r.ConsoleLog()); n != 0 {
		t.Errorf("console not cleared, %d entries", n)
	}
}

func TestInterrupt(t *testing.T) {
	r := New(Options{})
	r.Interrupt()
	_, err := r.ExecuteString(context.Background(), provider.NewBuffer(sample), "u8 x @ 0;")
	wantKind(t, err, EvaluateError)
	if !errors.Is(err, evaluator.ErrInterrupted) {
		t.Errorf("expected ErrInterrupted, got %v", err)
	}
}

func TestFailureLogging(t *testing.T) {
	var global bytes.Buffer
	if err := logger.Init(logger.Config{Level: logger.LevelWarn, Output: &global}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = logger.Init(logger.DefaultConfig()) })

	const src = "u8 x @ 0x1000;"
	data := provider.NewBuffer(sample)

	if _, err := New(Options{}).ExecuteString(context.Background(), data, src); err == nil {
		t.Fatal("expected an error")
	}
	if global.Len() != 0 {
		t.Errorf("default logger received output: %s", global.String())
	}

	var own bytes.Buffer
	r := New(Options{Logger: slog.New(slog.NewTextHandler(&own, nil))})
	if _, err := r.ExecuteString(context.Background(), data, src); err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(own.String(), "variable placed out of range") {
		t.Errorf("supplied logger missed the failure: %s", own.String())
	}
}

func TestErrorKindString(t *testing.T) {
	if PreprocessorError.String() != "preprocessor" || EvaluateError.String() != "evaluator" {
		t.Error("unexpected kind names")
	}
	if ErrorKind(42).String() != "ErrorKind(42)" {
		t.Error("unexpected fallback name")
	}
}

// Package hexpat runs pattern language programs against binary data.
//
// A program is preprocessed, lexed, parsed, validated and evaluated in
// turn. The result is the list of top-level patterns laid out over the
// data, or an *Error naming the stage and source position that failed.
package hexpat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sansecio/hexpat/builtin"
	"github.com/sansecio/hexpat/console"
	"github.com/sansecio/hexpat/evaluator"
	"github.com/sansecio/hexpat/internal/logger"
	"github.com/sansecio/hexpat/lexer"
	"github.com/sansecio/hexpat/parser"
	"github.com/sansecio/hexpat/pattern"
	"github.com/sansecio/hexpat/preprocessor"
	"github.com/sansecio/hexpat/provider"
	"github.com/sansecio/hexpat/token"
	"github.com/sansecio/hexpat/validator"
)

// ErrorKind is the pipeline stage an error came from.
type ErrorKind uint8

const (
	PreprocessorError ErrorKind = iota
	LexerError
	ParseError
	ValidatorError
	EvaluateError
)

func (k ErrorKind) String() string {
	switch k {
	case PreprocessorError:
		return "preprocessor"
	case LexerError:
		return "lexer"
	case ParseError:
		return "parser"
	case ValidatorError:
		return "validator"
	case EvaluateError:
		return "evaluator"
	}
	return fmt.Sprintf("ErrorKind(%d)", uint8(k))
}

// Error is a failed run. File and Line locate the physical source line;
// File is empty for the top-level source of ExecuteString.
type Error struct {
	Kind    ErrorKind
	File    string
	Line    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Options configures a Runtime.
type Options struct {
	// DefaultEndian applies until a #pragma endian or an le/be prefix
	// overrides it.
	DefaultEndian token.Endian

	// EvalDepth limits type nesting and function recursion. 0 means
	// evaluator.DefaultEvalDepth.
	EvalDepth int

	// IncludeLoader resolves #include directives. When nil, ExecuteFile
	// looks next to the pattern file and ExecuteString rejects includes.
	IncludeLoader preprocessor.Loader

	// Builtins defaults to builtin.Std().
	Builtins *builtin.Registry

	// Logger receives phase timings. Failed runs are logged only when a
	// logger is supplied; the returned *Error carries the same details.
	Logger *slog.Logger
}

// Runtime executes programs. Execute calls must not overlap; Interrupt may
// be called from any goroutine.
type Runtime struct {
	opts      Options
	logger    *slog.Logger
	logErrors bool
	eval      *evaluator.Evaluator

	// Set by pragmas during the current run.
	endian token.Endian
	depth  int
	base   *uint64
}

// New returns a runtime configured by opts.
func New(opts Options) *Runtime {
	logErrors := opts.Logger != nil
	if opts.Builtins == nil {
		opts.Builtins = builtin.Std()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Logger()
	}
	return &Runtime{
		opts:      opts,
		logger:    opts.Logger,
		logErrors: logErrors,
		eval: evaluator.New(evaluator.Options{
			DefaultEndian: opts.DefaultEndian,
			EvalDepth:     opts.EvalDepth,
			Builtins:      opts.Builtins,
			Logger:        opts.Logger,
		}),
	}
}

// ExecuteString runs the program src against p.
func (r *Runtime) ExecuteString(ctx context.Context, p provider.Provider, src string) ([]pattern.Pattern, error) {
	return r.execute(ctx, p, "", src, r.opts.IncludeLoader)
}

// ExecuteFile runs the program stored at path against p.
func (r *Runtime) ExecuteFile(ctx context.Context, p provider.Provider, path string) ([]pattern.Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pattern file: %w", err)
	}
	loader := r.opts.IncludeLoader
	if loader == nil {
		loader = preprocessor.DirLoader{Dirs: []string{filepath.Dir(path)}}
	}
	return r.execute(ctx, p, path, string(data), loader)
}

// ConsoleLog returns the console entries of the last run.
func (r *Runtime) ConsoleLog() []console.Entry {
	return r.eval.Console().Entries()
}

// Interrupt stops the running evaluation, or the next one.
func (r *Runtime) Interrupt() {
	r.eval.Interrupt()
}

func (r *Runtime) execute(ctx context.Context, p provider.Provider, name, src string, loader preprocessor.Loader) ([]pattern.Pattern, error) {
	r.endian, r.depth, r.base = r.opts.DefaultEndian, r.opts.EvalDepth, nil

	start := logger.LogPhase(r.logger, "preprocess")
	res, err := r.preprocessor(loader).Preprocess(name, src)
	if err != nil {
		var pe *preprocessor.Error
		if errors.As(err, &pe) {
			return nil, r.fail(&Error{Kind: PreprocessorError, File: pe.File, Line: pe.Line, Message: pe.Message, Err: err})
		}
		return nil, r.fail(&Error{Kind: PreprocessorError, File: name, Message: err.Error(), Err: err})
	}
	logger.LogPhaseComplete(r.logger, "preprocess", start, "lines", len(res.Lines))

	start = logger.LogPhase(r.logger, "lex")
	tokens, err := lexer.Lex(res.Source)
	if err != nil {
		return nil, r.fail(stageError(LexerError, res.Lines, err))
	}
	logger.LogPhaseComplete(r.logger, "lex", start, "tokens", len(tokens))

	start = logger.LogPhase(r.logger, "parse")
	nodes, err := parser.New().Parse(tokens)
	if err != nil {
		return nil, r.fail(stageError(ParseError, res.Lines, err))
	}
	logger.LogPhaseComplete(r.logger, "parse", start, "nodes", len(nodes))

	start = logger.LogPhase(r.logger, "validate")
	if err := validator.Validate(nodes); err != nil {
		return nil, r.fail(stageError(ValidatorError, res.Lines, err))
	}
	logger.LogPhaseComplete(r.logger, "validate", start)

	if r.base != nil {
		if rb, ok := p.(provider.Rebaser); ok {
			rb.SetBaseAddress(*r.base)
		} else {
			r.logger.Warn("provider does not support #pragma base_address", "address", *r.base)
		}
	}

	start = logger.LogPhase(r.logger, "evaluate")
	r.eval.SetDefaultEndian(r.endian)
	r.eval.SetEvalDepth(r.depth)
	patterns, err := r.eval.Evaluate(ctx, nodes, p)
	if err != nil {
		return nil, r.fail(stageError(EvaluateError, res.Lines, err))
	}
	logger.LogPhaseComplete(r.logger, "evaluate", start, "patterns", len(patterns))
	return patterns, nil
}

// preprocessor returns a preprocessor whose pragma handlers configure the
// current run.
func (r *Runtime) preprocessor(loader preprocessor.Loader) *preprocessor.Preprocessor {
	pre := preprocessor.New(loader)
	pre.AddDefaultPragmaHandlers()
	pre.AddPragmaHandler("endian", func(value string) bool {
		switch value {
		case "big":
			r.endian = token.Big
		case "little":
			r.endian = token.Little
		case "native":
			r.endian = token.Native()
		default:
			return false
		}
		return true
	})
	pre.AddPragmaHandler("eval_depth", func(value string) bool {
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return false
		}
		r.depth = n
		return true
	})
	pre.AddPragmaHandler("base_address", func(value string) bool {
		n, err := strconv.ParseUint(value, 0, 64)
		if err != nil {
			return false
		}
		r.base = &n
		return true
	})
	return pre
}

func (r *Runtime) fail(err *Error) *Error {
	if r.logErrors {
		logger.LogError(r.logger, err.Kind.String(), err.File, err.Line, err.Message)
	}
	return err
}

// stageError translates the line of a lexer, parser, validator or
// evaluator error into its physical source position.
func stageError(kind ErrorKind, lines preprocessor.LineMap, err error) *Error {
	line, msg := 0, err.Error()
	var (
		le *lexer.Error
		pe *parser.Error
		ve *validator.Error
		ee *evaluator.Error
	)
	switch {
	case errors.As(err, &le):
		line, msg = le.Line, le.Message
	case errors.As(err, &pe):
		line, msg = pe.Line, pe.Message
	case errors.As(err, &ve):
		line, msg = ve.Line, ve.Message
	case errors.As(err, &ee):
		line, msg = ee.Line, ee.Message
	}
	origin := lines.Origin(line)
	return &Error{Kind: kind, File: origin.File, Line: origin.Line, Message: msg, Err: err}
}

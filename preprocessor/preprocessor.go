// Package preprocessor expands #include, #define and #pragma directives in
// pattern source while keeping track of where every output line came from.
package preprocessor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxIncludeDepth bounds nested #include directives, which also stops
// include cycles.
const MaxIncludeDepth = 32

// Error is a preprocessing failure at a line of a physical file. File is
// empty for the top-level source.
type Error struct {
	File    string
	Line    int
	Message string
}

func (e *Error) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Loader resolves the path of an #include directive to source text.
type Loader interface {
	ResolveInclude(path string) (string, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(path string) (string, error)

func (f LoaderFunc) ResolveInclude(path string) (string, error) { return f(path) }

// MapLoader serves includes from memory.
type MapLoader map[string]string

func (m MapLoader) ResolveInclude(path string) (string, error) {
	src, ok := m[path]
	if !ok {
		return "", fmt.Errorf("file not found")
	}
	return src, nil
}

// DirLoader reads includes from disk, trying each directory in order.
// Absolute paths are read directly.
type DirLoader struct {
	Dirs []string
}

func (l DirLoader) ResolveInclude(path string) (string, error) {
	if filepath.IsAbs(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	for _, dir := range l.Dirs {
		data, err := os.ReadFile(filepath.Join(dir, path))
		if err == nil {
			return string(data), nil
		}
	}
	return "", fmt.Errorf("not found in %s", strings.Join(l.Dirs, ", "))
}

// PragmaHandler validates and applies the value of a #pragma. It returns
// false when the value is not acceptable.
type PragmaHandler func(value string) bool

// Origin is the physical location of an output line.
type Origin struct {
	File string
	Line int
}

// LineMap maps output line numbers (1-based) to their origin.
type LineMap []Origin

// Origin returns where output line n came from. Lines outside the map are
// returned unchanged.
func (m LineMap) Origin(n int) Origin {
	if n < 1 || n > len(m) {
		return Origin{Line: n}
	}
	return m[n-1]
}

// Result is the expanded source and its line map.
type Result struct {
	Source string
	Lines  LineMap
}

// Preprocessor expands directives. Handlers persist across runs; defines
// are reset by every call to Preprocess.
type Preprocessor struct {
	loader   Loader
	handlers map[string]PragmaHandler
	defines  map[string]string
	out      []string
	lines    LineMap
}

// New creates a preprocessor. A nil loader rejects every #include.
func New(loader Loader) *Preprocessor {
	return &Preprocessor{
		loader:   loader,
		handlers: make(map[string]PragmaHandler),
	}
}

// AddPragmaHandler registers h for #pragma name, replacing any previous one.
func (p *Preprocessor) AddPragmaHandler(name string, h PragmaHandler) {
	p.handlers[name] = h
}

// RemovePragmaHandler unregisters the handler for name.
func (p *Preprocessor) RemovePragmaHandler(name string) {
	delete(p.handlers, name)
}

// AddDefaultPragmaHandlers registers validating handlers for the MIME and
// endian pragmas.
func (p *Preprocessor) AddDefaultPragmaHandlers() {
	p.AddPragmaHandler("MIME", func(value string) bool {
		return value != ""
	})
	p.AddPragmaHandler("endian", func(value string) bool {
		switch value {
		case "big", "little", "native":
			return true
		}
		return false
	})
}

// Preprocess expands src. name identifies the top-level source in the line
// map and may be empty.
func (p *Preprocessor) Preprocess(name, src string) (*Result, error) {
	p.defines = make(map[string]string)
	p.out = p.out[:0]
	p.lines = nil

	if err := p.process(name, src, 0); err != nil {
		return nil, err
	}
	return &Result{Source: strings.Join(p.out, "\n"), Lines: p.lines}, nil
}

func (p *Preprocessor) process(file, src string, depth int) error {
	for i, line := range strings.Split(stripComments(src), "\n") {
		lineNo := i + 1
		trimmed := strings.TrimLeft(line, " \t")
		if !strings.HasPrefix(trimmed, "#") {
			p.emit(file, lineNo, p.substitute(line))
			continue
		}

		d, err := directiveParser.ParseString(file, trimmed)
		if err != nil {
			return &Error{File: file, Line: lineNo, Message: describeInvalid(trimmed)}
		}

		switch {
		case d.Include != nil:
			if err := p.include(file, lineNo, d.Include.Path, depth); err != nil {
				return err
			}
			continue
		case d.Define != nil:
			if _, exists := p.defines[d.Define.Name]; exists {
				return &Error{File: file, Line: lineNo, Message: fmt.Sprintf("redefinition of '%s'", d.Define.Name)}
			}
			p.defines[d.Define.Name] = strings.TrimSpace(d.Define.Body)
		case d.Pragma != nil:
			if err := p.pragma(d.Pragma.Key, strings.TrimSpace(d.Pragma.Value)); err != nil {
				return &Error{File: file, Line: lineNo, Message: err.Error()}
			}
		}
		p.emit(file, lineNo, "")
	}
	return nil
}

func (p *Preprocessor) include(file string, line int, quoted string, depth int) error {
	path := quoted[1 : len(quoted)-1]
	if depth+1 >= MaxIncludeDepth {
		return &Error{File: file, Line: line, Message: fmt.Sprintf("#include depth exceeds maximum of %d", MaxIncludeDepth)}
	}
	if p.loader == nil {
		return &Error{File: file, Line: line, Message: fmt.Sprintf("cannot include '%s': no include loader configured", path)}
	}
	src, err := p.loader.ResolveInclude(path)
	if err != nil {
		return &Error{File: file, Line: line, Message: fmt.Sprintf("cannot include '%s': %v", path, err)}
	}
	return p.process(path, src, depth+1)
}

func (p *Preprocessor) pragma(key, value string) error {
	h, ok := p.handlers[key]
	if !ok {
		return fmt.Errorf("no #pragma handler registered for type %s", key)
	}
	if !h(value) {
		return fmt.Errorf("invalid value provided to '%s' #pragma directive", key)
	}
	return nil
}

func (p *Preprocessor) emit(file string, line int, text string) {
	p.out = append(p.out, text)
	p.lines = append(p.lines, Origin{File: file, Line: line})
}

func describeInvalid(line string) string {
	word := strings.TrimLeft(line[1:], " \t")
	if i := strings.IndexAny(word, " \t"); i >= 0 {
		word = word[:i]
	}
	switch word {
	case "include", "define", "pragma":
		return fmt.Sprintf("malformed #%s directive", word)
	}
	return fmt.Sprintf("unknown preprocessor directive '#%s'", word)
}

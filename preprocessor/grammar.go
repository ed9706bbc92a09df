package preprocessor

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Grammar structs for a single directive line. The lexer switches state
// after the directive keyword so that a #define body or #pragma value is
// captured verbatim up to the end of the line.

type directive struct {
	Include *includeDirective `parser:"Hash ( @@"`
	Define  *defineDirective  `parser:"| @@"`
	Pragma  *pragmaDirective  `parser:"| @@ )"`
}

type includeDirective struct {
	Path string `parser:"Include @Path"`
}

type defineDirective struct {
	Name string `parser:"Define @Name"`
	Body string `parser:"@Body?"`
}

type pragmaDirective struct {
	Key   string `parser:"Pragma @Key"`
	Value string `parser:"@Body?"`
}

var directiveLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Whitespace", Pattern: `[ \t]+`},
		{Name: "Hash", Pattern: `#`},
		{Name: "Include", Pattern: `include\b`, Action: lexer.Push("Include")},
		{Name: "Define", Pattern: `define\b`, Action: lexer.Push("Define")},
		{Name: "Pragma", Pattern: `pragma\b`, Action: lexer.Push("Pragma")},
	},
	"Include": {
		{Name: "Whitespace", Pattern: `[ \t]+`},
		{Name: "Path", Pattern: `"[^"\n]*"|<[^>\n]*>`},
	},
	"Define": {
		{Name: "Whitespace", Pattern: `[ \t]+`},
		{Name: "Name", Pattern: `[A-Za-z_][A-Za-z0-9_]*`, Action: lexer.Push("Rest")},
	},
	"Pragma": {
		{Name: "Whitespace", Pattern: `[ \t]+`},
		{Name: "Key", Pattern: `[A-Za-z_][A-Za-z0-9_]*`, Action: lexer.Push("Rest")},
	},
	"Rest": {
		{Name: "Whitespace", Pattern: `[ \t]+`},
		{Name: "Body", Pattern: `[^\n]+`},
	},
})

var directiveParser = participle.MustBuild[directive](
	participle.Lexer(directiveLexer),
	participle.Elide("Whitespace"),
)

package preprocessor

import "strings"

// stripComments blanks out // and /* */ comments while keeping every
// newline, so line numbers stay stable. An unterminated block comment is
// left in place for the lexer to report.
func stripComments(src string) string {
	if !strings.Contains(src, "/") {
		return src
	}
	var b strings.Builder
	b.Grow(len(src))
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '"' || c == '\'':
			end := skipQuoted(src, i)
			b.WriteString(src[i:end])
			i = end - 1
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i < len(src) {
				b.WriteByte('\n')
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				b.WriteString(src[i:])
				return b.String()
			}
			comment := src[i : i+2+end+2]
			b.WriteString(strings.Repeat("\n", strings.Count(comment, "\n")))
			b.WriteByte(' ')
			i += len(comment) - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// skipQuoted returns the index just past the quoted literal starting at i,
// stopping at the end of the line if it is unterminated.
func skipQuoted(s string, i int) int {
	quote := s[i]
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		case '\n':
			return j
		}
	}
	return len(s)
}

// substitute replaces every identifier that names a #define with its body.
// String and character literals are left untouched and bodies are not
// rescanned.
func (p *Preprocessor) substitute(line string) string {
	if len(p.defines) == 0 {
		return line
	}
	var b strings.Builder
	for i := 0; i < len(line); {
		c := line[i]
		switch {
		case c == '"' || c == '\'':
			end := skipQuoted(line, i)
			b.WriteString(line[i:end])
			i = end
		case isIdentStart(c):
			j := i + 1
			for j < len(line) && isIdentPart(line[j]) {
				j++
			}
			word := line[i:j]
			if body, ok := p.defines[word]; ok {
				b.WriteString(body)
			} else {
				b.WriteString(word)
			}
			i = j
		case c >= '0' && c <= '9':
			j := i + 1
			for j < len(line) && isIdentPart(line[j]) {
				j++
			}
			b.WriteString(line[i:j])
			i = j
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

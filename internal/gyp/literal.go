package gyp

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// normalizeLiterals rewrites the Python string literals of a description
// into YAML double-quoted scalars so yaml.v3 can read the rest of the
// Python literal syntax as flow YAML. Adjacent literals are joined the way
// Python joins them, escapes are decoded, and comments are dropped. Line
// breaks consumed inside a literal run are re-emitted, so YAML error
// positions still match the source.
func normalizeLiterals(src []byte) ([]byte, error) {
	var out bytes.Buffer
	out.Grow(len(src))

	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case literalStart(src, i):
			start := i
			var value strings.Builder
			for {
				end, err := readLiteral(src, i, &value)
				if err != nil {
					return nil, err
				}
				i = end
				next := skipBlank(src, i)
				if next >= len(src) || !literalStart(src, next) {
					break
				}
				i = next
			}
			// A joined key must stay on one line for YAML, so the line
			// breaks go in front of the scalar.
			out.WriteString(strings.Repeat("\n", bytes.Count(src[start:i], []byte("\n"))))
			writeScalar(&out, value.String())
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.Bytes(), nil
}

// skipBlank returns the index of the first byte at or after i that is not
// whitespace or part of a comment.
func skipBlank(src []byte, i int) int {
	for i < len(src) {
		switch src[i] {
		case ' ', '\t', '\r', '\n':
			i++
		case '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		default:
			return i
		}
	}
	return i
}

func isQuote(c byte) bool { return c == '\'' || c == '"' }

func isIdent(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// prefixLen returns the length of a string prefix such as r, u, b, ur or
// rb starting at i, or 0.
func prefixLen(src []byte, i int) int {
	n := 0
	for n < 2 && i+n < len(src) && strings.IndexByte("rRuUbB", src[i+n]) >= 0 {
		n++
	}
	if n == 0 || i+n >= len(src) || !isQuote(src[i+n]) {
		return 0
	}
	if i > 0 && isIdent(src[i-1]) {
		return 0
	}
	return n
}

func literalStart(src []byte, i int) bool {
	return isQuote(src[i]) || prefixLen(src, i) > 0
}

// readLiteral decodes the literal starting at i into value and returns the
// index just past it.
func readLiteral(src []byte, i int, value *strings.Builder) (int, error) {
	raw := false
	for _, p := range src[i : i+prefixLen(src, i)] {
		if p == 'r' || p == 'R' {
			raw = true
		}
	}
	i += prefixLen(src, i)
	start := i

	q := src[i]
	triple := i+2 < len(src) && src[i+1] == q && src[i+2] == q
	if triple {
		i += 3
	} else {
		i++
	}

	for i < len(src) {
		c := src[i]
		switch {
		case c == '\\':
			if i+1 >= len(src) {
				return 0, unterminated(src, start)
			}
			if raw {
				value.WriteByte(c)
				value.WriteByte(src[i+1])
				i += 2
				continue
			}
			n, err := decodeEscape(src, i, value)
			if err != nil {
				return 0, err
			}
			i += n
		case triple && c == q && i+2 < len(src) && src[i+1] == q && src[i+2] == q:
			return i + 3, nil
		case !triple && c == q:
			return i + 1, nil
		case !triple && c == '\n':
			return 0, unterminated(src, start)
		default:
			value.WriteByte(c)
			i++
		}
	}
	return 0, unterminated(src, start)
}

func unterminated(src []byte, start int) error {
	return fmt.Errorf("line %d: unterminated string literal", bytes.Count(src[:start], []byte("\n"))+1)
}

var simpleEscapes = map[byte]string{
	'\\': `\`, '\'': `'`, '"': `"`, '\n': "",
	'n': "\n", 't': "\t", 'r': "\r", 'a': "\a", 'b': "\b", 'f': "\f", 'v': "\v",
}

// decodeEscape decodes the backslash escape at i and returns its length.
// Unknown escapes are kept verbatim, as Python keeps them.
func decodeEscape(src []byte, i int, value *strings.Builder) (int, error) {
	c := src[i+1]
	if s, ok := simpleEscapes[c]; ok {
		value.WriteString(s)
		return 2, nil
	}
	switch {
	case c == 'x':
		if i+4 > len(src) {
			return 0, fmt.Errorf("truncated \\x escape")
		}
		v, err := strconv.ParseUint(string(src[i+2:i+4]), 16, 8)
		if err != nil {
			return 0, fmt.Errorf("invalid \\x escape %q", src[i:i+4])
		}
		value.WriteRune(rune(v))
		return 4, nil
	case '0' <= c && c <= '7':
		n := 1
		for n < 3 && i+1+n < len(src) && '0' <= src[i+1+n] && src[i+1+n] <= '7' {
			n++
		}
		v, _ := strconv.ParseUint(string(src[i+1:i+1+n]), 8, 16)
		value.WriteRune(rune(v))
		return 1 + n, nil
	default:
		value.WriteByte('\\')
		value.WriteByte(c)
		return 2, nil
	}
}

// writeScalar writes s as a YAML double-quoted scalar.
func writeScalar(out *bytes.Buffer, s string) {
	out.WriteByte('"')
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		switch {
		case r == '\\':
			out.WriteString(`\\`)
		case r == '"':
			out.WriteString(`\"`)
		case r == '\n':
			out.WriteString(`\n`)
		case r == '\t':
			out.WriteString(`\t`)
		case r == '\r':
			out.WriteString(`\r`)
		case r == utf8.RuneError && size == 1:
			fmt.Fprintf(out, `\x%02x`, s[0])
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(out, `\x%02x`, r)
		default:
			out.WriteString(s[:size])
		}
		s = s[size:]
	}
	out.WriteByte('"')
}

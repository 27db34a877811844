package manifest

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ParseError reports a malformed manifest literal
type ParseError struct {
	Path   string
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("offset %d: %s", e.Offset, e.Msg)
	}
	return fmt.Sprintf("%s: offset %d: %s", e.Path, e.Offset, e.Msg)
}

// parser reads the subset of Python literal syntax that manifests use:
// dicts, lists, tuples, strings, numbers, True, False and None.
type parser struct {
	src  string
	pos  int
	path string
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Path: p.path, Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

// skipSpace skips whitespace, comments and backslash line continuations
func (p *parser) skipSpace() {
	for !p.eof() {
		switch c := p.src[p.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			p.pos++
		case c == '#':
			for !p.eof() && p.src[p.pos] != '\n' {
				p.pos++
			}
		case c == '\\' && p.pos+1 < len(p.src) && (p.src[p.pos+1] == '\n' || p.src[p.pos+1] == '\r'):
			p.pos += 2
		default:
			return
		}
	}
}

// parseDocument parses an optional docstring followed by a single dict
func (p *parser) parseDocument() (map[string]any, error) {
	p.skipSpace()
	for p.stringStart() {
		if _, err := p.parseString(); err != nil {
			return nil, err
		}
		p.skipSpace()
	}

	if p.peek() != '{' {
		return nil, p.errorf("expected manifest dict")
	}
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if !p.eof() {
		return nil, p.errorf("unexpected %q after manifest dict", p.peek())
	}
	return v.(map[string]any), nil
}

func (p *parser) parseValue() (any, error) {
	p.skipSpace()
	if p.eof() {
		return nil, p.errorf("unexpected end of input")
	}

	c := p.peek()
	switch {
	case c == '{':
		return p.parseDict()
	case c == '[':
		return p.parseSequence('[', ']')
	case c == '(':
		return p.parseParen()
	case p.stringStart():
		return p.parseStrings()
	case c == '-' || c == '+' || c == '.' || isDigit(c):
		return p.parseNumber()
	case isIdentStart(c):
		return p.parseIdent()
	}
	return nil, p.errorf("unexpected %q", c)
}

func (p *parser) parseDict() (any, error) {
	p.pos++ // {
	out := make(map[string]any)
	for {
		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			return out, nil
		}

		key, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ':' {
			return nil, p.errorf("expected ':' after dict key")
		}
		p.pos++

		val, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if s, ok := key.(string); ok {
			out[s] = val
		} else {
			out[fmt.Sprint(key)] = val
		}

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
		default:
			return nil, p.errorf("expected ',' or '}' in dict")
		}
	}
}

func (p *parser) parseSequence(open, close byte) ([]any, error) {
	p.pos++ // open
	out := []any{}
	for {
		p.skipSpace()
		if p.peek() == close {
			p.pos++
			return out, nil
		}

		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		out = append(out, v)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case close:
		default:
			return nil, p.errorf("expected ',' or %q", close)
		}
	}
}

// parseParen handles both tuples and parenthesized expressions such as
// a multi-line string concatenation.
func (p *parser) parseParen() (any, error) {
	start := p.pos
	p.pos++ // (
	p.skipSpace()
	if p.peek() == ')' {
		p.pos++
		return []any{}, nil
	}

	first, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() == ')' {
		p.pos++
		return first, nil
	}

	p.pos = start
	return p.parseSequence('(', ')')
}

func (p *parser) parseIdent() (any, error) {
	start := p.pos
	for !p.eof() && isIdentPart(p.peek()) {
		p.pos++
	}
	switch word := p.src[start:p.pos]; word {
	case "True":
		return true, nil
	case "False":
		return false, nil
	case "None":
		return nil, nil
	default:
		p.pos = start
		return nil, p.errorf("unsupported identifier %q", word)
	}
}

func (p *parser) parseNumber() (any, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}
	isFloat := false
scan:
	for !p.eof() {
		c := p.peek()
		switch {
		case isDigit(c) || c == '_':
		case c == '.':
			isFloat = true
		case c == 'e' || c == 'E':
			isFloat = true
			if p.pos+1 < len(p.src) && (p.src[p.pos+1] == '-' || p.src[p.pos+1] == '+') {
				p.pos++
			}
		default:
			break scan
		}
		p.pos++
	}

	text := strings.ReplaceAll(p.src[start:p.pos], "_", "")
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			p.pos = start
			return nil, p.errorf("invalid number %q", text)
		}
		return f, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		p.pos = start
		return nil, p.errorf("invalid number %q", text)
	}
	return n, nil
}

// stringStart reports whether a string literal, with an optional prefix, begins at pos
func (p *parser) stringStart() bool {
	i := p.pos
	for n := 0; n < 2 && i < len(p.src) && strings.IndexByte("rRuUbBfF", p.src[i]) >= 0; n++ {
		i++
	}
	return i < len(p.src) && (p.src[i] == '\'' || p.src[i] == '"')
}

// parseStrings parses one string literal plus any adjacent literals
func (p *parser) parseStrings() (string, error) {
	var b strings.Builder
	for {
		s, err := p.parseString()
		if err != nil {
			return "", err
		}
		b.WriteString(s)

		save := p.pos
		p.skipSpace()
		if !p.stringStart() {
			p.pos = save
			return b.String(), nil
		}
	}
}

func (p *parser) parseString() (string, error) {
	raw := false
	for !p.eof() && p.peek() != '\'' && p.peek() != '"' {
		if c := p.peek(); c == 'r' || c == 'R' {
			raw = true
		}
		p.pos++
	}

	start := p.pos
	quote := p.peek()
	triple := strings.HasPrefix(p.src[p.pos:], strings.Repeat(string(quote), 3))
	if triple {
		p.pos += 3
	} else {
		p.pos++
	}

	var b strings.Builder
	for {
		if p.eof() {
			p.pos = start
			return "", p.errorf("unterminated string")
		}
		c := p.peek()

		if triple {
			if strings.HasPrefix(p.src[p.pos:], strings.Repeat(string(quote), 3)) {
				p.pos += 3
				return b.String(), nil
			}
		} else if c == quote {
			p.pos++
			return b.String(), nil
		} else if c == '\n' {
			p.pos = start
			return "", p.errorf("newline in string")
		}

		if c == '\\' && p.pos+1 < len(p.src) {
			if raw {
				b.WriteString(p.src[p.pos : p.pos+2])
				p.pos += 2
				continue
			}
			if err := p.unescape(&b); err != nil {
				return "", err
			}
			continue
		}

		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		b.WriteRune(r)
		p.pos += size
	}
}

func (p *parser) unescape(b *strings.Builder) error {
	esc := p.src[p.pos+1]
	p.pos += 2
	switch esc {
	case '\n':
	case '\r':
		if p.pos < len(p.src) && p.src[p.pos] == '\n' {
			p.pos++
		}
	case '\\', '\'', '"':
		b.WriteByte(esc)
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case '0':
		b.WriteByte(0)
	case 'x', 'u', 'U':
		width := map[byte]int{'x': 2, 'u': 4, 'U': 8}[esc]
		if p.pos+width > len(p.src) {
			return p.errorf("truncated \\%c escape", esc)
		}
		code, err := strconv.ParseUint(p.src[p.pos:p.pos+width], 16, 32)
		if err != nil {
			return p.errorf("invalid \\%c escape", esc)
		}
		b.WriteRune(rune(code))
		p.pos += width
	default:
		b.WriteByte('\\')
		b.WriteByte(esc)
	}
	return nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

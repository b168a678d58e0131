package parser

import (
	"strconv"
	"strings"
)

// Low-level scanning: byte-oriented with line/col tracking. The grammar is
// ASCII-only except inside string literals.

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) next() byte {
	c := p.src[p.pos]
	p.pos++
	if c == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
	return c
}

// skipSpace consumes whitespace and // line comments.
func (p *parser) skipSpace() {
	for !p.eof() {
		switch c := p.peek(); {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			p.next()
		case c == '/' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '/':
			for !p.eof() && p.peek() != '\n' {
				p.next()
			}
		default:
			return
		}
	}
}

func (p *parser) expectRune(want byte) error {
	p.skipSpace()
	if p.eof() || p.peek() != want {
		return p.errf(p.loc(), "expected %q", string(want))
	}
	p.next()
	return nil
}

func (p *parser) peekWord(w string) bool {
	p.skipSpace()
	return strings.HasPrefix(p.src[p.pos:], w)
}

func (p *parser) skipWord(w string) {
	for range w {
		p.next()
	}
}

func (p *parser) expectWord(w string) error {
	p.skipSpace()
	if !strings.HasPrefix(p.src[p.pos:], w) {
		return p.errf(p.loc(), "expected %q", w)
	}
	p.skipWord(w)
	return nil
}

func isIdentByte(c byte, first bool) bool {
	if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' {
		return true
	}
	if first {
		return false
	}
	return c >= '0' && c <= '9' || c == '.'
}

// expectIdent reads a bare identifier, allowing dots for dialect-qualified
// targets ("arr.constant").
func (p *parser) expectIdent() (string, error) {
	p.skipSpace()
	start := p.pos
	if p.eof() || !isIdentByte(p.peek(), true) {
		return "", p.errf(p.loc(), "expected identifier")
	}
	for !p.eof() && isIdentByte(p.peek(), false) {
		p.next()
	}
	return p.src[start:p.pos], nil
}

// expectSymbol reads a sigil-prefixed name: @func or %value. The name part
// additionally allows leading digits ("%0").
func (p *parser) expectSymbol(sigil byte) (string, error) {
	p.skipSpace()
	if p.eof() || p.peek() != sigil {
		return "", p.errf(p.loc(), "expected %q-prefixed name", string(sigil))
	}
	p.next()
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if isIdentByte(c, false) {
			p.next()
			continue
		}
		break
	}
	if p.pos == start {
		return "", p.errf(p.loc(), "empty %q name", string(sigil))
	}
	return p.src[start:p.pos], nil
}

// parseString reads a double-quoted literal with Go escape syntax.
func (p *parser) parseString() (string, error) {
	loc := p.loc()
	if p.peek() != '"' {
		return "", p.errf(loc, "expected string literal")
	}
	start := p.pos
	p.next()
	for !p.eof() {
		c := p.next()
		if c == '\\' && !p.eof() {
			p.next()
			continue
		}
		if c == '"' {
			s, err := strconv.Unquote(p.src[start:p.pos])
			if err != nil {
				return "", p.errf(loc, "invalid string literal: %v", err)
			}
			return s, nil
		}
	}
	return "", p.errf(loc, "unterminated string literal")
}

func (p *parser) parseInt() (int64, error) {
	loc := p.loc()
	start := p.pos
	if p.peek() == '-' {
		p.next()
	}
	for !p.eof() && p.peek() >= '0' && p.peek() <= '9' {
		p.next()
	}
	n, err := strconv.ParseInt(p.src[start:p.pos], 10, 64)
	if err != nil {
		return 0, p.errf(loc, "invalid integer literal %q", p.src[start:p.pos])
	}
	return n, nil
}

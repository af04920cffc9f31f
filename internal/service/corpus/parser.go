package corpus

import (
	"fmt"
	"strconv"
	"strings"

	"codecomp-go/internal/model"
	"codecomp-go/internal/model/token"
)

// Parse reads one corpus line of the form
//
//	[ID_S, "getUserName", "(", ID_LIT_STR, ")"]
//
// Bare names must be sentinels known to set. Strings may use double or single
// quotes with Go or Python escapes. A trailing comma before ']' is accepted.
func Parse(line string, set *token.Set) (token.Context, error) {
	p := lineParser{src: line, set: set}
	return p.parse()
}

type lineParser struct {
	src string
	pos int
	set *token.Set
}

func (p *lineParser) parse() (token.Context, error) {
	p.skipSpace()
	if !p.consume('[') {
		return nil, p.fail("expected '['")
	}

	ctx := token.Context{}
	for {
		p.skipSpace()
		if p.consume(']') {
			break
		}
		e, err := p.element()
		if err != nil {
			return nil, err
		}
		ctx = append(ctx, e)

		p.skipSpace()
		if p.consume(',') {
			continue
		}
		if p.consume(']') {
			break
		}
		return nil, p.fail("expected ',' or ']'")
	}

	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.fail("unexpected trailing characters")
	}
	return ctx, nil
}

func (p *lineParser) element() (token.Element, error) {
	if p.pos >= len(p.src) {
		return token.Element{}, p.fail("unexpected end of line")
	}

	c := p.src[p.pos]
	switch {
	case c == '"' || c == '\'':
		s, err := p.quoted(c)
		if err != nil {
			return token.Element{}, err
		}
		return token.Literal(s), nil
	case isNameStart(c):
		start := p.pos
		for p.pos < len(p.src) && isNamePart(p.src[p.pos]) {
			p.pos++
		}
		name := p.src[start:p.pos]
		if !p.set.IsSentinel(name) {
			p.pos = start
			return token.Element{}, p.fail(fmt.Sprintf("unknown name %q", name))
		}
		return token.Sentinel(name), nil
	default:
		return token.Element{}, p.fail(fmt.Sprintf("unexpected character %q", c))
	}
}

func (p *lineParser) quoted(q byte) (string, error) {
	start := p.pos
	p.pos++
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '\\':
			p.pos += 2
			continue
		case q:
			p.pos++
			s, err := unquote(p.src[start+1 : p.pos-1])
			if err != nil {
				p.pos = start
				return "", p.fail("invalid string literal: " + err.Error())
			}
			return s, nil
		}
		p.pos++
	}
	p.pos = start
	return "", p.fail("unterminated string")
}

// unquote decodes the body of a quoted string. \' and bare double quotes are
// normalized first so that strconv can decode the Go-compatible remainder.
func unquote(body string) (string, error) {
	if !strings.ContainsAny(body, `\"`) {
		return body, nil
	}

	var b strings.Builder
	b.Grow(len(body) + 2)
	b.WriteByte('"')
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body) && body[i+1] == '\'':
			b.WriteByte('\'')
			i++
		case c == '\\' && i+1 < len(body):
			b.WriteByte(c)
			b.WriteByte(body[i+1])
			i++
		case c == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return strconv.Unquote(b.String())
}

func (p *lineParser) consume(c byte) bool {
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *lineParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

func (p *lineParser) fail(reason string) error {
	return &model.ParseError{Line: -1, Offset: p.pos, Reason: reason}
}

func isNameStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isNamePart(c byte) bool {
	return isNameStart(c) || ('0' <= c && c <= '9')
}

package token

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind distinguishes the two shapes an element of a corpus line can take
type Kind uint8

const (
	// KindLiteral is a quoted string: structural token text or a raw identifier name
	KindLiteral Kind = iota
	// KindSentinel is a bare name such as ID_S or ID_LIT_INT
	KindSentinel
)

// Sentinel names as they appear unquoted in corpus lines
const (
	LitBool  = "ID_LIT_BOOL"
	LitChar  = "ID_LIT_CHAR"
	LitFloat = "ID_LIT_FLOAT"
	LitImag  = "ID_LIT_IMAG"
	LitInt   = "ID_LIT_INT"
	LitStr   = "ID_LIT_STR"
	Ident    = "ID_S"
)

// Element is a single entry of a corpus line
type Element struct {
	Kind  Kind
	Value string
}

// Literal returns a quoted-string element
func Literal(value string) Element {
	return Element{Kind: KindLiteral, Value: value}
}

// Sentinel returns a bare-name element
func Sentinel(name string) Element {
	return Element{Kind: KindSentinel, Value: name}
}

// IsBoundary reports whether the element is the identifier-boundary sentinel,
// i.e. the next element is a raw identifier name
func (e Element) IsBoundary() bool {
	return e.Kind == KindSentinel && e.Value == Ident
}

// String renders the element the way it appears in a corpus line
func (e Element) String() string {
	if e.Kind == KindSentinel {
		return e.Value
	}
	return strconv.Quote(e.Value)
}

// Context is the ordered token sequence read from one corpus line
type Context []Element

// String renders the context in corpus line syntax
func (c Context) String() string {
	parts := make([]string, len(c))
	for i, e := range c {
		parts[i] = e.String()
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
}

// Identifiers returns the raw names that follow a boundary sentinel, in order
func (c Context) Identifiers() []string {
	var names []string
	word := false
	for _, e := range c {
		switch {
		case e.IsBoundary():
			word = true
		case word:
			word = false
			if e.Kind == KindLiteral {
				names = append(names, e.Value)
			}
		}
	}
	return names
}

// WithoutNames returns a copy of the context with every element that directly
// follows a boundary sentinel removed. The sentinels themselves are kept.
func (c Context) WithoutNames() Context {
	out := make(Context, 0, len(c))
	for i, e := range c {
		if i > 0 && c[i-1].IsBoundary() {
			continue
		}
		out = append(out, e)
	}
	return out
}

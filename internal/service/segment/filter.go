package segment

import (
	"unicode"
	"unicode/utf8"
)

// Filter decides whether an identifier occurrence takes part in the vocabulary
type Filter interface {
	Keep(name string) bool
}

// KeepAll accepts every identifier
type KeepAll struct{}

func (KeepAll) Keep(string) bool { return true }

// predeclared lists the Go predeclared identifiers kept by PublicOnly even
// though they start with a lower-case letter
var predeclared = []string{
	"any", "append", "bool", "byte", "cap", "clear", "close", "comparable",
	"complex", "complex64", "complex128", "copy", "delete", "error",
	"float32", "float64", "imag", "int", "int8", "int16", "int32", "int64",
	"iota", "len", "make", "max", "min", "new", "panic", "print", "println",
	"real", "recover", "rune", "string", "uint", "uint8", "uint16", "uint32",
	"uint64", "uintptr",
}

// PublicOnly drops identifiers starting with a lower-case letter unless they
// are in the predeclared allow-list
type PublicOnly struct {
	allow map[string]struct{}
}

// NewPublicOnly creates the public identifier filter
func NewPublicOnly() *PublicOnly {
	allow := make(map[string]struct{}, len(predeclared))
	for _, name := range predeclared {
		allow[name] = struct{}{}
	}
	return &PublicOnly{allow: allow}
}

func (f *PublicOnly) Keep(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	if !unicode.IsLower(r) {
		return true
	}
	_, ok := f.allow[name]
	return ok
}

package token

// goLiterals is the closed set of structural tokens emitted by the Go scanner
// front end, in index order. err and nil are kept as literals because the
// front end never turns them into identifiers.
var goLiterals = [...]string{
	"!", "!=", "%", "&", "&&", "&=", "&^", "&^=", "(", ")", "*", "*=", "+",
	"++", "+=", ",", "-", "--", "-=", ".", "...", "/", "/=", ":", ":=", ";",
	"<", "<-", "<<", "<<=", "<=", "=", "==", ">", ">=", ">>", ">>=", "[", "]",
	"^", "^=", "break", "case", "chan", "const", "continue", "default",
	"defer", "else", "err", "fallthrough", "for", "func", "go", "goto", "if",
	"import", "interface", "map", "nil", "package", "range", "return",
	"select", "struct", "switch", "type", "var", "{", "|", "|=", "||", "}",
}

// sentinels follow the literals in index order
var sentinels = [...]string{LitBool, LitChar, LitFloat, LitImag, LitInt, LitStr, Ident}

// Set is an immutable, totally ordered token set. The position of a token is
// its one-hot column.
type Set struct {
	elements  []Element
	literals  map[string]int
	sentinels map[string]int
}

// NewGoSet builds the token set used by the Go tokenizer front end
func NewGoSet() *Set {
	s := &Set{
		elements:  make([]Element, 0, len(goLiterals)+len(sentinels)),
		literals:  make(map[string]int, len(goLiterals)),
		sentinels: make(map[string]int, len(sentinels)),
	}
	for _, lit := range goLiterals {
		s.literals[lit] = len(s.elements)
		s.elements = append(s.elements, Literal(lit))
	}
	for _, name := range sentinels {
		s.sentinels[name] = len(s.elements)
		s.elements = append(s.elements, Sentinel(name))
	}
	return s
}

// Index returns the one-hot column of e
func (s *Set) Index(e Element) (int, bool) {
	var (
		i  int
		ok bool
	)
	if e.Kind == KindSentinel {
		i, ok = s.sentinels[e.Value]
	} else {
		i, ok = s.literals[e.Value]
	}
	return i, ok
}

// IsSentinel reports whether name is a known bare sentinel name
func (s *Set) IsSentinel(name string) bool {
	_, ok := s.sentinels[name]
	return ok
}

// Len returns the number of tokens in the set
func (s *Set) Len() int {
	return len(s.elements)
}

// At returns the token at index i
func (s *Set) At(i int) Element {
	return s.elements[i]
}

// Label returns the display form of the token at index i
func (s *Set) Label(i int) string {
	return s.elements[i].String()
}

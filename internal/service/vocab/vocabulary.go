// Package vocab builds and persists the fragment vocabulary of a corpus.
package vocab

// Vocabulary maps fragments to column indices in first-occurrence order.
// It is immutable once built.
type Vocabulary struct {
	index  map[string]int
	labels []string
}

// FromLabels creates a vocabulary whose i-th entry is labels[i]. Duplicate
// labels keep their first index.
func FromLabels(labels []string) *Vocabulary {
	b := NewBuilder()
	for _, l := range labels {
		b.Add(l)
	}
	return b.Vocabulary()
}

// Index returns the column of fragment
func (v *Vocabulary) Index(fragment string) (int, bool) {
	i, ok := v.index[fragment]
	return i, ok
}

// Label returns the fragment at column i
func (v *Vocabulary) Label(i int) string {
	return v.labels[i]
}

// Len returns the number of distinct fragments
func (v *Vocabulary) Len() int {
	return len(v.labels)
}

// Labels returns a copy of the inverse view: index → fragment
func (v *Vocabulary) Labels() []string {
	out := make([]string, len(v.labels))
	copy(out, v.labels)
	return out
}

// Builder owns a growing vocabulary and its next-index counter
type Builder struct {
	index  map[string]int
	labels []string
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{index: make(map[string]int)}
}

// Add returns the index of fragment, assigning the next one if it is new
func (b *Builder) Add(fragment string) int {
	if i, ok := b.index[fragment]; ok {
		return i
	}
	i := len(b.labels)
	b.index[fragment] = i
	b.labels = append(b.labels, fragment)
	return i
}

// Len returns the number of fragments added so far
func (b *Builder) Len() int {
	return len(b.labels)
}

// Vocabulary freezes the builder. The builder must not be used afterwards.
func (b *Builder) Vocabulary() *Vocabulary {
	v := &Vocabulary{index: b.index, labels: b.labels}
	b.index = nil
	b.labels = nil
	return v
}

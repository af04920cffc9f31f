// Package segment splits identifier names into lowercase sub-word fragments.
package segment

import (
	"strings"
)

// MinFragmentLen is the shortest fragment emitted on its own. Shorter
// candidates are held and prefixed to the next emitted fragment.
const MinFragmentLen = 3

// Segment splits name into fragments using its casing transitions.
//
// The name is cut on every run of non-ASCII-letter characters. Inside a
// letter run a fragment boundary is placed at each lower→upper transition and
// around each upper→lower transition: an upper-case run of at most three
// letters before the transition is cut off as an acronym ("XMLParser" →
// "xml", "parser"), a longer run is kept together with the first lower-case
// letter ("HTTPServer" → "https", "erver").
//
// Candidates shorter than MinFragmentLen are not returned. The last such
// candidate is held and, when a long enough candidate follows within the same
// name, returned once more concatenated with it ("myVar" → "var", "myvar").
func Segment(name string) []string {
	s := scanner{}
	name = strings.TrimSpace(name)

	for len(name) > 0 {
		start := indexLetter(name)
		if start < 0 {
			break
		}
		name = name[start:]
		end := indexNonLetter(name)
		if end < 0 {
			end = len(name)
		}
		s.part(name[:end])
		name = name[end:]
	}

	return s.out
}

type scanner struct {
	out  []string
	held string
}

func (s *scanner) part(part string) {
	pos := 0
	prev := part[0]
	for i := 1; i < len(part); i++ {
		this := part[i]
		switch {
		case isLower(prev) && isUpper(this):
			s.emit(part[pos:i])
			pos = i
		case isUpper(prev) && isLower(this):
			if run := i - 1 - pos; run > 0 && run <= 3 {
				s.emit(part[pos : i-1])
				pos = i - 1
			} else if i-1 > pos {
				s.emit(part[pos:i])
				pos = i
			}
		}
		prev = this
	}
	if last := part[pos:]; last != "" {
		s.emit(last)
	}
}

func (s *scanner) emit(candidate string) {
	lower := strings.ToLower(candidate)
	if len(candidate) < MinFragmentLen {
		s.held = lower
		return
	}
	s.out = append(s.out, lower)
	if s.held != "" {
		s.out = append(s.out, s.held+lower)
		s.held = ""
	}
}

func isLower(c byte) bool { return 'a' <= c && c <= 'z' }

func isUpper(c byte) bool { return 'A' <= c && c <= 'Z' }

func isLetter(c byte) bool { return isLower(c) || isUpper(c) }

func indexLetter(s string) int {
	for i := 0; i < len(s); i++ {
		if isLetter(s[i]) {
			return i
		}
	}
	return -1
}

func indexNonLetter(s string) int {
	for i := 0; i < len(s); i++ {
		if !isLetter(s[i]) {
			return i
		}
	}
	return -1
}

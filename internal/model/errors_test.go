package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicyFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Policy
	}{
		{"nil", nil, PolicyContinue},
		{"parse", &ParseError{Line: 3, Reason: "bad"}, PolicySkipLine},
		{"wrapped parse", fmt.Errorf("reading: %w", &ParseError{Line: 3}), PolicySkipLine},
		{"unknown entry", &UnknownEntryError{Entry: "foo"}, PolicyDrop},
		{"degenerate", &DegenerateTargetError{Line: 1, Position: 2}, PolicyFatal},
		{"consistency", &ConsistencyError{Expected: 1, Actual: 2}, PolicyFatal},
		{"cache", &CacheIOError{Path: "x", Op: "write", Err: errors.New("disk full")}, PolicyContinue},
		{"config", &ConfigError{Field: "window_size", Reason: "must be positive"}, PolicyFatal},
		{"other", errors.New("boom"), PolicyFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PolicyFor(tt.err))
		})
	}
}

func TestDegenerateTargetIsInternal(t *testing.T) {
	err := fmt.Errorf("encoding: %w", &DegenerateTargetError{Line: 4, Position: 7})
	assert.ErrorIs(t, err, ErrInternal)
	assert.Contains(t, err.Error(), "line 4: unit 7 has no indices")
}

func TestCacheIOErrorUnwraps(t *testing.T) {
	inner := errors.New("no space left on device")
	err := &CacheIOError{Path: "/tmp/c", Op: "write", Err: inner}
	assert.ErrorIs(t, err, inner)
}

func TestParseErrorMessage(t *testing.T) {
	assert.Equal(t, "parse error at byte 3: unexpected ','", (&ParseError{Line: -1, Offset: 3, Reason: "unexpected ','"}).Error())
	assert.Equal(t, "line 2: parse error at byte 0: expected '['", (&ParseError{Line: 2, Reason: "expected '['"}).Error())
	assert.Equal(t, "line 5: parse error: element 1 \"foo\" is not in the token set",
		(&ParseError{Line: 5, Offset: -1, Reason: "element 1 \"foo\" is not in the token set"}).Error())
}

// Package model holds the failure taxonomy shared by every stage of the
// feature extraction pipeline.
package model

import (
	"errors"
	"fmt"
)

// Policy says what a pipeline stage does when it meets an error
type Policy int

const (
	// PolicyFatal aborts the current pass
	PolicyFatal Policy = iota
	// PolicySkipLine logs the error and drops the line's contribution
	PolicySkipLine
	// PolicyDrop silently drops the offending occurrence
	PolicyDrop
	// PolicyContinue logs the error and carries on with the computed result
	PolicyContinue
)

func (p Policy) String() string {
	switch p {
	case PolicySkipLine:
		return "skip_line"
	case PolicyDrop:
		return "drop"
	case PolicyContinue:
		return "continue"
	default:
		return "fatal"
	}
}

// ErrInternal marks invariant violations inside the pipeline
var ErrInternal = errors.New("internal consistency error")

// ParseError reports a corpus line that cannot be read as a context
type ParseError struct {
	Line   int    // zero-based line number, -1 when unknown
	Offset int    // byte offset inside the line, -1 when the line parsed but did not encode
	Reason string
}

func (e *ParseError) Error() string {
	msg := "parse error"
	if e.Offset >= 0 {
		msg = fmt.Sprintf("parse error at byte %d", e.Offset)
	}
	if e.Line >= 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg + ": " + e.Reason
}

// UnknownEntryError reports a fragment or token that the lexicon has never seen
type UnknownEntryError struct {
	Entry string
}

func (e *UnknownEntryError) Error() string {
	return fmt.Sprintf("unknown vocabulary entry %q", e.Entry)
}

// DegenerateTargetError reports a prediction unit without any lexicon index
type DegenerateTargetError struct {
	Line     int
	Position int
}

func (e *DegenerateTargetError) Error() string {
	return fmt.Sprintf("line %d: unit %d has no indices", e.Line, e.Position)
}

func (e *DegenerateTargetError) Unwrap() error { return ErrInternal }

// ConsistencyError reports a mismatch between the counting and encoding passes
type ConsistencyError struct {
	Expected int
	Actual   int
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("sample count mismatch: counted %d, encoded %d", e.Expected, e.Actual)
}

func (e *ConsistencyError) Unwrap() error { return ErrInternal }

// CacheIOError wraps a failure to read or write the dataset cache
type CacheIOError struct {
	Path string
	Op   string
	Err  error
}

func (e *CacheIOError) Error() string {
	return fmt.Sprintf("cache %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *CacheIOError) Unwrap() error { return e.Err }

// ConfigError reports an invalid configuration value
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

// PolicyFor maps an error onto the handling policy of its failure site.
// Errors outside the taxonomy are fatal.
func PolicyFor(err error) Policy {
	var (
		parseErr   *ParseError
		unknownErr *UnknownEntryError
		cacheErr   *CacheIOError
	)
	switch {
	case err == nil:
		return PolicyContinue
	case errors.Is(err, ErrInternal):
		return PolicyFatal
	case errors.As(err, &parseErr):
		return PolicySkipLine
	case errors.As(err, &unknownErr):
		return PolicyDrop
	case errors.As(err, &cacheErr):
		return PolicyContinue
	default:
		return PolicyFatal
	}
}

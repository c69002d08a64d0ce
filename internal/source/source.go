// Package source streams opaque items into a sketch from text files, SQLite
// columns or memory.
package source

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidIdentifier is returned when a table or column name is not a
// plain SQL identifier.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// Source yields items one at a time. Each stops at the first error returned
// by fn or when ctx is done. Items handed to fn are never reused by the
// source, so fn may retain them.
type Source interface {
	Each(ctx context.Context, fn func(item []byte) error) error
	Name() string
}

var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Tokenize lower-cases text and calls fn for every word in it.
func Tokenize(text string, fn func(word string) error) error {
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if err := fn(w); err != nil {
			return err
		}
	}
	return nil
}

// Lines is an in-memory source that yields each element verbatim.
type Lines []string

// Each implements Source.
func (l Lines) Each(ctx context.Context, fn func([]byte) error) error {
	for _, s := range l {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn([]byte(s)); err != nil {
			return err
		}
	}
	return nil
}

// Name implements Source.
func (l Lines) Name() string { return "memory" }

// Func adapts a generator to a Source.
type Func struct {
	Label string
	Gen   func(ctx context.Context, fn func([]byte) error) error
}

// Each implements Source.
func (f Func) Each(ctx context.Context, fn func([]byte) error) error {
	return f.Gen(ctx, fn)
}

// Name implements Source.
func (f Func) Name() string { return f.Label }

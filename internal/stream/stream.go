// Package stream defines the feature at a time reader and writer contracts
// shared by every document encoding.
package stream

import (
	"errors"
	"io"
	"strings"

	"github.com/woozymasta/geoconv/internal/geo"
)

// Reader yields features lazily, one per call, in document order.
// A Reader is not safe for concurrent use.
type Reader interface {
	// HasNext reports whether Next will return a feature or a decode error.
	HasNext() bool
	// Next returns the next feature. After exhaustion it fails with
	// geo.ErrNoMoreElements.
	Next() (*geo.Feature, error)
	// Close releases the underlying resource. It is safe to call twice.
	Close() error
}

// Writer serializes features incrementally. Close writes the closing
// document framing and releases the underlying resource.
type Writer interface {
	Write(f *geo.Feature) error
	Close() error
}

// Layout controls pretty printing of a written document.
type Layout struct {
	Compact bool
	Indent  int
}

// DefaultIndent is used when pretty printing without an explicit width.
const DefaultIndent = 2

// IndentString returns one indentation level, empty when compact.
func (l Layout) IndentString() string {
	if l.Compact {
		return ""
	}
	if l.Indent <= 0 {
		return strings.Repeat(" ", DefaultIndent)
	}
	return strings.Repeat(" ", l.Indent)
}

// Newline returns the line separator, empty when compact.
func (l Layout) Newline() string {
	if l.Compact {
		return ""
	}
	return "\n"
}

// PullFunc decodes the next feature. It returns io.EOF when the document ends.
type PullFunc func() (*geo.Feature, error)

// Cursor turns a PullFunc into the HasNext/Next protocol by prefetching one
// feature ahead.
type Cursor struct {
	pull    PullFunc
	closer  io.Closer
	next    *geo.Feature
	err     error
	fetched bool
	done    bool
	closed  bool
}

// NewCursor wraps pull. closer may be nil.
func NewCursor(pull PullFunc, closer io.Closer) *Cursor {
	return &Cursor{pull: pull, closer: closer}
}

func (c *Cursor) forward() {
	if c.fetched || c.done {
		return
	}
	c.fetched = true
	f, err := c.pull()
	switch {
	case errors.Is(err, io.EOF):
		c.done = true
	case err != nil:
		c.err = err
	default:
		c.next = f
	}
}

// HasNext implements Reader.
func (c *Cursor) HasNext() bool {
	c.forward()
	return c.next != nil || c.err != nil
}

// Next implements Reader.
func (c *Cursor) Next() (*geo.Feature, error) {
	c.forward()
	if c.err != nil {
		err := c.err
		c.err = nil
		c.done = true
		return nil, err
	}
	if c.next == nil {
		return nil, geo.Wrap(geo.ErrNoMoreElements, "next", nil)
	}
	f := c.next
	c.next = nil
	c.fetched = false
	return f, nil
}

// Close implements Reader.
func (c *Cursor) Close() error {
	c.done = true
	c.next = nil
	if c.closed || c.closer == nil {
		return nil
	}
	c.closed = true
	if err := c.closer.Close(); err != nil {
		return geo.Wrap(geo.ErrResourceIO, "close reader", err)
	}
	return nil
}

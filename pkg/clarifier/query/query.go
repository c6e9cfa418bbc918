// Package query holds the immutable query/items context of one ranking run.
package query

import (
	"fmt"
	"strings"

	"github.com/cognicore/clarifier/pkg/clarifier/internalerr"
)

// Context is the query and its items for one ranking run. The raw query
// may carry a disambiguation suffix after '_' ("apple_1"); Bare drops it.
type Context struct {
	raw   string
	bare  string
	items []string

	tokens     map[string]struct{}
	itemsJoint string
}

// NewContext validates and builds a Context. Items are trimmed; empty
// items are dropped.
func NewContext(raw string, items []string) (*Context, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty query", internalerr.ErrInvalidInput)
	}

	bare := raw
	if i := strings.Index(raw, "_"); i >= 0 {
		bare = raw[:i]
	}
	if bare == "" {
		return nil, fmt.Errorf("%w: query %q has no text before '_'", internalerr.ErrInvalidInput, raw)
	}

	cleaned := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it != "" {
			cleaned = append(cleaned, it)
		}
	}

	c := &Context{
		raw:        raw,
		bare:       bare,
		items:      cleaned,
		tokens:     make(map[string]struct{}),
		itemsJoint: strings.Join(cleaned, " "),
	}
	for _, tok := range strings.Split(bare, " ") {
		c.tokens[tok] = struct{}{}
	}
	for _, it := range cleaned {
		for _, tok := range strings.Split(it, " ") {
			c.tokens[tok] = struct{}{}
		}
	}
	return c, nil
}

// Raw returns the query as given, suffix included. Output files are
// named after it.
func (c *Context) Raw() string { return c.raw }

// Bare returns the query with everything from the first '_' removed.
func (c *Context) Bare() string { return c.bare }

// Items returns a copy of the item list.
func (c *Context) Items() []string {
	out := make([]string, len(c.items))
	copy(out, c.items)
	return out
}

// NumItems returns the number of items.
func (c *Context) NumItems() int { return len(c.items) }

// ItemsJoined returns the items joined with single spaces.
func (c *Context) ItemsJoined() string { return c.itemsJoint }

// IsKnownToken reports whether tok is a token of the bare query or of
// any item.
func (c *Context) IsKnownToken(tok string) bool {
	_, ok := c.tokens[tok]
	return ok
}

// ContainsAnyItem reports whether s contains at least one item.
func (c *Context) ContainsAnyItem(s string) bool {
	for _, it := range c.items {
		if strings.Contains(s, it) {
			return true
		}
	}
	return false
}

// IsItem reports whether s equals one of the items.
func (c *Context) IsItem(s string) bool {
	for _, it := range c.items {
		if s == it {
			return true
		}
	}
	return false
}

// CountItemsIn returns how many items occur in s.
func (c *Context) CountItemsIn(s string) int {
	n := 0
	for _, it := range c.items {
		if strings.Contains(s, it) {
			n++
		}
	}
	return n
}

func (c *Context) String() string {
	return fmt.Sprintf("%s %q", c.raw, c.items)
}

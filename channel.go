package ggmix

import (
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// Channel is a named output region. A unit bound to a channel has its pixels
// clipped to the channel's shape.
//
// Channels are created by a ChannelRegistry. All methods are safe for
// concurrent use.
type Channel struct {
	mu        sync.RWMutex
	name      string
	shape     Shape
	group     bool
	enabled   bool
	blackFill bool
	removed   bool
}

// Name returns the channel's name.
func (c *Channel) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// Shape returns the channel's geometry, or nil if it has none.
func (c *Channel) Shape() Shape {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.shape
}

// Enabled reports whether units bound to c are visible.
func (c *Channel) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// BlackFillRequested reports whether a one-shot black fill is pending.
func (c *Channel) BlackFillRequested() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blackFill
}

// IsGroup reports whether c was created as the union of other channels.
func (c *Channel) IsGroup() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.group
}

// Removed reports whether c has been removed from its registry.
func (c *Channel) Removed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.removed
}

func (c *Channel) String() string {
	return "channel " + c.Name()
}

// clip returns the region a bound unit may paint: the shape when the channel
// is live, enabled and shaped, otherwise EmptyShape.
func (c *Channel) clip() Shape {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.removed || !c.enabled || c.shape == nil {
		return EmptyShape
	}
	return c.shape
}

// takeBlackFill consumes the black-fill request.
func (c *Channel) takeBlackFill() (Shape, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.blackFill {
		return nil, false
	}
	c.blackFill = false
	return c.shape, c.shape != nil
}

// normalizeName trims and NFC-normalizes a channel or unit name so that
// visually identical names compare equal.
func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

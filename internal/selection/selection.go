// Package selection tracks the current item of a page and keeps it in view.
package selection

import "github.com/gravitrone/darknet/cli/internal/registry"

// Dispatcher receives the target of an activated item.
type Dispatcher interface {
	Dispatch(target string)
}

// Controller owns the selection index over one page's items. Exactly one
// item is marked current while the sequence is non-empty.
type Controller struct {
	items  []registry.Item
	index  int
	marked []bool

	offset int
	height int
}

// New creates a controller over items with the first item current.
func New(items []registry.Item) *Controller {
	c := &Controller{}
	c.Reset(items)
	return c
}

// Reset replaces the item sequence and moves the selection back to the top.
func (c *Controller) Reset(items []registry.Item) {
	c.items = items
	c.index = 0
	c.offset = 0
	c.marked = make([]bool, len(items))
	c.Render()
}

// SetViewport sets how many items fit on screen. Zero shows everything.
func (c *Controller) SetViewport(height int) {
	if height < 0 {
		height = 0
	}
	c.height = height
	c.scrollIntoView()
}

// MoveUp selects the previous item, wrapping from the first to the last.
func (c *Controller) MoveUp() {
	if len(c.items) == 0 {
		return
	}
	if c.index > 0 {
		c.index--
	} else {
		c.index = len(c.items) - 1
	}
	c.Render()
}

// MoveDown selects the next item, wrapping from the last to the first.
func (c *Controller) MoveDown() {
	if len(c.items) == 0 {
		return
	}
	if c.index < len(c.items)-1 {
		c.index++
	} else {
		c.index = 0
	}
	c.Render()
}

// Select makes item i current. Out-of-range indexes are ignored.
func (c *Controller) Select(i int) bool {
	if i < 0 || i >= len(c.items) {
		return false
	}
	c.index = i
	c.Render()
	return true
}

// Render clears every current marker, marks the item at the index and
// scrolls it into view.
func (c *Controller) Render() {
	for i := range c.marked {
		c.marked[i] = false
	}
	if c.index < len(c.marked) {
		c.marked[c.index] = true
	}
	c.scrollIntoView()
}

// Activate hands the current item's target to d. Items without a target are
// ignored.
func (c *Controller) Activate(d Dispatcher) bool {
	item, ok := c.Current()
	if !ok || item.Target == "" || d == nil {
		return false
	}
	d.Dispatch(item.Target)
	return true
}

// scrollIntoView moves the window the minimum distance that shows the
// current item.
func (c *Controller) scrollIntoView() {
	if c.height <= 0 || len(c.items) == 0 {
		c.offset = 0
		return
	}
	if c.index < c.offset {
		c.offset = c.index
	}
	if c.index >= c.offset+c.height {
		c.offset = c.index - c.height + 1
	}
	if maxOffset := len(c.items) - c.height; maxOffset >= 0 && c.offset > maxOffset {
		c.offset = maxOffset
	}
	if c.offset < 0 {
		c.offset = 0
	}
}

// --- Accessors ---

// Index returns the current index.
func (c *Controller) Index() int { return c.index }

// Len returns the number of items.
func (c *Controller) Len() int { return len(c.items) }

// Items returns the item sequence.
func (c *Controller) Items() []registry.Item { return c.items }

// Current returns the current item, if any.
func (c *Controller) Current() (registry.Item, bool) {
	if c.index < 0 || c.index >= len(c.items) {
		return registry.Item{}, false
	}
	return c.items[c.index], true
}

// IsCurrent reports whether item i carries the current marker.
func (c *Controller) IsCurrent(i int) bool {
	return i >= 0 && i < len(c.marked) && c.marked[i]
}

// MarkedCount returns how many items carry the current marker.
func (c *Controller) MarkedCount() int {
	n := 0
	for _, m := range c.marked {
		if m {
			n++
		}
	}
	return n
}

// Window returns the [start, end) range of items in view.
func (c *Controller) Window() (int, int) {
	if c.height <= 0 {
		return 0, len(c.items)
	}
	end := c.offset + c.height
	if end > len(c.items) {
		end = len(c.items)
	}
	return c.offset, end
}

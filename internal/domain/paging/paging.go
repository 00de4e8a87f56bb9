// Package paging reveals a filtered list one page at a time.
package paging

// PageSize is the number of entries revealed per step.
const PageSize = 10

// Window returns the first visible items of list.
func Window[T any](list []T, visible int) []T {
	if visible < 0 {
		visible = 0
	}
	if visible > len(list) {
		visible = len(list)
	}
	return list[:visible]
}

// HasMore reports whether list holds items beyond the window.
func HasMore[T any](list []T, visible int) bool {
	if visible < 0 {
		visible = 0
	}
	return visible < len(list)
}

// Advance returns the visible count after one more page.
func Advance(visible int) int { return AdvanceBy(visible, PageSize) }

// AdvanceBy returns the visible count after one more page of size entries.
// A non-positive size falls back to PageSize.
func AdvanceBy(visible, size int) int {
	if visible < 0 {
		visible = 0
	}
	if size <= 0 {
		size = PageSize
	}
	return visible + size
}

// Cursor tracks the visible count for the active filter.
// The zero value is not ready; use NewCursor.
type Cursor struct {
	filter  string
	visible int
	size    int
}

// NewCursor starts at the first page of filter. A non-positive size falls
// back to PageSize.
func NewCursor(filter string, size int) *Cursor {
	if size <= 0 {
		size = PageSize
	}
	return &Cursor{filter: filter, visible: size, size: size}
}

// SetFilter switches the active filter and reports whether it changed.
// A change resets to the first page.
func (c *Cursor) SetFilter(filter string) bool {
	if filter == c.filter {
		return false
	}
	c.filter = filter
	c.visible = c.size
	return true
}

// Seek moves the window to visible entries. Values below one page are
// raised to the first page.
func (c *Cursor) Seek(visible int) {
	if visible < c.size {
		visible = c.size
	}
	c.visible = visible
}

// LoadMore reveals the next page.
func (c *Cursor) LoadMore() { c.visible = AdvanceBy(c.visible, c.size) }

// Filter returns the active filter.
func (c *Cursor) Filter() string { return c.filter }

// Visible returns the current visible count.
func (c *Cursor) Visible() int { return c.visible }

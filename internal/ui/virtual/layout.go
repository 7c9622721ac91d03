// Package virtual computes the visible row window for a long,
// variable-height list. Rows start with estimated heights and are
// upgraded to measured heights after rendering; the layout keeps the
// scroll position stable while estimates are replaced and rows expand
// or collapse.
package virtual

// Default layout parameters in terminal lines.
const (
	DefaultCollapsedHeight  = 1
	DefaultExpandedEstimate = 12
	DefaultOverscan         = 3
)

// Window is the contiguous index range the caller should render,
// including overscan rows beyond the viewport edges. End is exclusive.
// An empty sequence yields the zero Window.
type Window struct {
	Start int
	End   int
	// TopOffset is the line offset of row Start from the list top,
	// used to position the rendered slab against the scroll offset.
	TopOffset int
}

// Len returns the number of rows in the window.
func (w Window) Len() int {
	return w.End - w.Start
}

// Layout tracks row heights and the scroll offset for one filtered
// sequence. Row indices are positions in that sequence; whenever the
// sequence itself changes the caller must invalidate, because index
// meaning changes with it.
type Layout struct {
	collapsedHeight  int
	expandedEstimate int
	overscan         int

	rowCount       int
	viewportHeight int
	scrollOffset   int

	expanded map[int]bool
	measured map[int]int
}

// NewLayout creates a layout with the default height model.
func NewLayout() *Layout {
	return &Layout{
		collapsedHeight:  DefaultCollapsedHeight,
		expandedEstimate: DefaultExpandedEstimate,
		overscan:         DefaultOverscan,
		expanded:         make(map[int]bool),
		measured:         make(map[int]int),
	}
}

// SetHeightModel overrides the estimate parameters. Zero or negative
// values keep the current ones.
func (l *Layout) SetHeightModel(collapsed, expandedEstimate, overscan int) {
	if collapsed > 0 {
		l.collapsedHeight = collapsed
	}
	if expandedEstimate > 0 {
		l.expandedEstimate = expandedEstimate
	}
	if overscan > 0 {
		l.overscan = overscan
	}
}

// Reset installs a new sequence length, drops every measurement and
// expansion mark, and moves the scroll to the top. Called when the
// filtered ordering changes.
func (l *Layout) Reset(rowCount int) {
	l.rowCount = rowCount
	l.expanded = make(map[int]bool)
	l.measured = make(map[int]int)
	l.scrollOffset = 0
}

// SetViewport updates the viewport height. Measurements and expansion
// marks were taken against the old geometry, so both are dropped; the
// scroll offset is kept. Called on terminal resize.
func (l *Layout) SetViewport(height int) {
	if height < 0 {
		height = 0
	}
	l.viewportHeight = height
	l.measured = make(map[int]int)
	l.expanded = make(map[int]bool)
	l.clampScroll()
}

// RowCount returns the current sequence length.
func (l *Layout) RowCount() int {
	return l.rowCount
}

// ScrollOffset returns the current scroll offset in lines.
func (l *Layout) ScrollOffset() int {
	return l.scrollOffset
}

// Expanded reports whether the row at index is expanded.
func (l *Layout) Expanded(index int) bool {
	return l.expanded[index]
}

// SetExpanded toggles a row between the collapsed and expanded state.
// The row's stale measurement is dropped and, when the row sits above
// the viewport, the scroll offset shifts by the height delta so the
// visible content does not move.
func (l *Layout) SetExpanded(index int, expanded bool) {
	if index < 0 || index >= l.rowCount || l.expanded[index] == expanded {
		return
	}
	old := l.heightOf(index)
	delete(l.measured, index)
	if expanded {
		l.expanded[index] = true
	} else {
		delete(l.expanded, index)
	}
	l.applyHeightChange(index, old, l.heightOf(index))
}

// Measure records the observed rendered height for a row. A changed
// height above the viewport shifts the scroll offset by the delta,
// preserving what the user currently sees.
func (l *Layout) Measure(index, height int) {
	if index < 0 || index >= l.rowCount || height <= 0 {
		return
	}
	old := l.heightOf(index)
	l.measured[index] = height
	l.applyHeightChange(index, old, height)
}

// ScrollBy moves the scroll offset by delta lines, clamped to the
// valid range.
func (l *Layout) ScrollBy(delta int) {
	l.scrollOffset += delta
	l.clampScroll()
}

// ScrollTo moves the scroll offset to an absolute line, clamped.
func (l *Layout) ScrollTo(offset int) {
	l.scrollOffset = offset
	l.clampScroll()
}

// ScrollToTop and ScrollToBottom jump to the sequence edges.
func (l *Layout) ScrollToTop()    { l.scrollOffset = 0 }
func (l *Layout) ScrollToBottom() { l.scrollOffset = l.maxScroll() }

// PageSize returns the viewport height, the unit for page scrolling.
func (l *Layout) PageSize() int {
	return l.viewportHeight
}

// EnsureVisible scrolls the minimum distance needed to bring the row
// at index fully into the viewport.
func (l *Layout) EnsureVisible(index int) {
	if index < 0 || index >= l.rowCount {
		return
	}
	top := l.offsetOf(index)
	bottom := top + l.heightOf(index)
	switch {
	case top < l.scrollOffset:
		l.scrollOffset = top
	case bottom > l.scrollOffset+l.viewportHeight:
		l.scrollOffset = bottom - l.viewportHeight
	}
	l.clampScroll()
}

// Window computes the index range whose cumulative offsets intersect
// the viewport, widened by the overscan margin on each side.
func (l *Layout) Window() Window {
	if l.rowCount == 0 || l.viewportHeight <= 0 {
		return Window{}
	}

	viewTop := l.scrollOffset
	viewBottom := l.scrollOffset + l.viewportHeight

	start := 0
	offset := 0
	for start < l.rowCount && offset+l.heightOf(start) <= viewTop {
		offset += l.heightOf(start)
		start++
	}

	end := start
	bottom := offset
	for end < l.rowCount && bottom < viewBottom {
		bottom += l.heightOf(end)
		end++
	}

	start -= l.overscan
	end += l.overscan
	if start < 0 {
		start = 0
	}
	if end > l.rowCount {
		end = l.rowCount
	}

	return Window{Start: start, End: end, TopOffset: l.offsetOf(start)}
}

// TotalHeight returns the estimated height of the whole sequence.
func (l *Layout) TotalHeight() int {
	total := 0
	for i := 0; i < l.rowCount; i++ {
		total += l.heightOf(i)
	}
	return total
}

// heightOf returns the measured height when known, otherwise the
// estimate matching the row's expansion state.
func (l *Layout) heightOf(index int) int {
	if h, ok := l.measured[index]; ok {
		return h
	}
	if l.expanded[index] {
		return l.expandedEstimate
	}
	return l.collapsedHeight
}

// offsetOf returns the line offset of a row's top edge.
func (l *Layout) offsetOf(index int) int {
	offset := 0
	for i := 0; i < index && i < l.rowCount; i++ {
		offset += l.heightOf(i)
	}
	return offset
}

// applyHeightChange keeps the scroll stable when a row above the
// viewport changes height.
func (l *Layout) applyHeightChange(index, oldHeight, newHeight int) {
	if oldHeight == newHeight {
		return
	}
	if l.offsetOf(index)+oldHeight <= l.scrollOffset {
		l.scrollOffset += newHeight - oldHeight
	}
	l.clampScroll()
}

func (l *Layout) maxScroll() int {
	max := l.TotalHeight() - l.viewportHeight
	if max < 0 {
		return 0
	}
	return max
}

func (l *Layout) clampScroll() {
	if l.scrollOffset > l.maxScroll() {
		l.scrollOffset = l.maxScroll()
	}
	if l.scrollOffset < 0 {
		l.scrollOffset = 0
	}
}

package virtual

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLayout(rows, viewport int) *Layout {
	l := NewLayout()
	l.Reset(rows)
	l.SetViewport(viewport)
	return l
}

func TestEmptySequenceEmptyWindow(t *testing.T) {
	l := newTestLayout(0, 20)
	win := l.Window()
	assert.Equal(t, 0, win.Len())
	assert.Equal(t, 0, l.TotalHeight())

	// Scrolling an empty layout is harmless.
	l.ScrollBy(10)
	assert.Equal(t, 0, l.ScrollOffset())
}

func TestWindowCoversViewportWithOverscan(t *testing.T) {
	l := newTestLayout(100, 10)

	win := l.Window()
	assert.Equal(t, 0, win.Start)
	// 10 visible collapsed rows plus overscan below.
	assert.Equal(t, 10+DefaultOverscan, win.End)
	assert.Equal(t, 0, win.TopOffset)

	l.ScrollTo(50)
	win = l.Window()
	assert.Equal(t, 50-DefaultOverscan, win.Start)
	assert.Equal(t, 60+DefaultOverscan, win.End)
	assert.Equal(t, win.Start, win.TopOffset)
}

func TestWindowClampsAtEdges(t *testing.T) {
	l := newTestLayout(5, 10)
	win := l.Window()
	assert.Equal(t, 0, win.Start)
	assert.Equal(t, 5, win.End)
}

func TestScrollClamping(t *testing.T) {
	l := newTestLayout(20, 10)

	l.ScrollBy(-5)
	assert.Equal(t, 0, l.ScrollOffset())

	l.ScrollBy(1000)
	assert.Equal(t, 10, l.ScrollOffset()) // total 20 - viewport 10

	l.ScrollToTop()
	assert.Equal(t, 0, l.ScrollOffset())
	l.ScrollToBottom()
	assert.Equal(t, 10, l.ScrollOffset())
}

func TestExpandUsesEstimateThenMeasurement(t *testing.T) {
	l := newTestLayout(10, 20)

	assert.Equal(t, 10, l.TotalHeight())

	l.SetExpanded(3, true)
	assert.True(t, l.Expanded(3))
	assert.Equal(t, 9+DefaultExpandedEstimate, l.TotalHeight())

	// Measurement replaces the estimate.
	l.Measure(3, 7)
	assert.Equal(t, 9+7, l.TotalHeight())

	// Collapsing drops the stale measurement.
	l.SetExpanded(3, false)
	assert.Equal(t, 10, l.TotalHeight())
}

func TestScrollPreservedWhenRowAboveExpands(t *testing.T) {
	l := newTestLayout(100, 10)
	l.ScrollTo(50)

	before := l.Window()

	// Expanding a row fully above the viewport shifts the offset so
	// the same rows stay visible.
	l.SetExpanded(2, true)
	assert.Equal(t, 50+DefaultExpandedEstimate-1, l.ScrollOffset())

	after := l.Window()
	assert.Equal(t, before.Start, after.Start)
	assert.Equal(t, before.End, after.End)
}

func TestScrollPreservedWhenRowAboveIsMeasured(t *testing.T) {
	l := newTestLayout(100, 10)
	l.SetExpanded(2, true)
	l.ScrollTo(60)

	before := l.Window()

	// Re-measuring the expanded row above the viewport keeps the
	// visible set stable.
	l.Measure(2, 20)
	after := l.Window()
	assert.Equal(t, 60+20-DefaultExpandedEstimate, l.ScrollOffset())
	assert.Equal(t, before.Start, after.Start)
	assert.Equal(t, before.End, after.End)
}

func TestScrollUntouchedWhenRowBelowChanges(t *testing.T) {
	l := newTestLayout(100, 10)
	l.ScrollTo(5)

	l.SetExpanded(50, true)
	assert.Equal(t, 5, l.ScrollOffset())

	l.Measure(50, 30)
	assert.Equal(t, 5, l.ScrollOffset())
}

func TestResetInvalidatesEverything(t *testing.T) {
	l := newTestLayout(50, 10)
	l.SetExpanded(5, true)
	l.Measure(5, 9)
	l.ScrollTo(20)

	l.Reset(30)
	assert.Equal(t, 0, l.ScrollOffset())
	assert.False(t, l.Expanded(5))
	assert.Equal(t, 30, l.TotalHeight()) // all rows back to the collapsed estimate
}

func TestResizeKeepsScrollDropsState(t *testing.T) {
	l := newTestLayout(100, 10)
	l.SetExpanded(2, true)
	l.Measure(2, 20)
	l.ScrollTo(30)

	l.SetViewport(15)
	assert.Equal(t, 30, l.ScrollOffset())
	// Measurement and expansion mark are both gone; every row is back
	// on the collapsed estimate.
	assert.False(t, l.Expanded(2))
	assert.Equal(t, 100, l.TotalHeight())
}

func TestSetExpandedIdempotent(t *testing.T) {
	l := newTestLayout(10, 20)

	l.SetExpanded(1, true)
	h := l.TotalHeight()
	l.SetExpanded(1, true)
	assert.Equal(t, h, l.TotalHeight())

	// Out-of-range toggles are ignored.
	l.SetExpanded(-1, true)
	l.SetExpanded(99, true)
	assert.Equal(t, h, l.TotalHeight())
}

func TestMeasureIgnoresInvalid(t *testing.T) {
	l := newTestLayout(10, 20)
	l.Measure(-1, 5)
	l.Measure(50, 5)
	l.Measure(2, 0)
	assert.Equal(t, 10, l.TotalHeight())
}

func TestEnsureVisible(t *testing.T) {
	l := newTestLayout(100, 10)

	// Below the viewport: scrolls down just enough.
	l.EnsureVisible(25)
	assert.Equal(t, 16, l.ScrollOffset())

	// Above the viewport: scrolls up to the row's top.
	l.EnsureVisible(3)
	assert.Equal(t, 3, l.ScrollOffset())

	// Already visible: no movement.
	l.EnsureVisible(5)
	assert.Equal(t, 3, l.ScrollOffset())
}

func TestWindowWithMixedHeights(t *testing.T) {
	l := newTestLayout(10, 12)
	l.SetExpanded(0, true)
	l.Measure(0, 8)

	win := l.Window()
	require.Equal(t, 0, win.Start)
	// Row 0 takes 8 lines, rows 1..4 fill the remaining 4, plus
	// overscan.
	assert.Equal(t, 5+DefaultOverscan, win.End)
}

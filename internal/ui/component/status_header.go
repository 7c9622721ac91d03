package component

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/gxscan/gxscan/internal/ui/style"
)

// FeedStatus represents the current feed connection state.
type FeedStatus struct {
	Connected bool
	Err       error
	LastBatch time.Time
}

// StatusHeader provides a one-box header with the essential screen state:
// connection health, row counts and the active sort.
type StatusHeader struct {
	feed      FeedStatus
	shown     int
	total     int
	sortLabel string
	searching bool
	style     StatusHeaderStyle
	width     int
}

// StatusHeaderStyle contains all styling for the status header
type StatusHeaderStyle struct {
	container lipgloss.Style
	title     lipgloss.Style
	counts    lipgloss.Style
	sortInfo  lipgloss.Style
	feedGood  lipgloss.Style
	feedBad   lipgloss.Style
	stale     lipgloss.Style
}

// NewStatusHeader creates a new status header component
func NewStatusHeader() *StatusHeader {
	palette := style.DefaultPalette()

	return &StatusHeader{
		style: StatusHeaderStyle{
			container: lipgloss.NewStyle().
				Background(palette.Background).
				Foreground(palette.Text).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(palette.Primary).
				Padding(0, 2),

			title: lipgloss.NewStyle().
				Foreground(palette.Primary).
				Bold(true),

			counts: lipgloss.NewStyle().
				Foreground(palette.TextSecondary),

			sortInfo: lipgloss.NewStyle().
				Foreground(palette.TextMuted),

			feedGood: lipgloss.NewStyle().
				Foreground(palette.Success).
				Bold(true),

			feedBad: lipgloss.NewStyle().
				Foreground(palette.Error).
				Bold(true),

			stale: lipgloss.NewStyle().
				Foreground(palette.Warning).
				Bold(true),
		},
	}
}

// SetFeedStatus updates the feed connection status.
func (sh *StatusHeader) SetFeedStatus(status FeedStatus) {
	sh.feed = status
}

// SetCounts updates the shown/total row counters.
func (sh *StatusHeader) SetCounts(shown, total int) {
	sh.shown = shown
	sh.total = total
}

// SetSortLabel updates the active sort description, e.g. "age ↑".
func (sh *StatusHeader) SetSortLabel(label string) {
	sh.sortLabel = label
}

// SetSearching marks whether the search input is active.
func (sh *StatusHeader) SetSearching(searching bool) {
	sh.searching = searching
}

// SetWidth sets the component width for responsive layout
func (sh *StatusHeader) SetWidth(width int) {
	sh.width = width
	sh.style.container = sh.style.container.Width(width - 2)
}

// View renders the status header
func (sh *StatusHeader) View() string {
	title := sh.style.title.Render("gxscan")
	counts := sh.style.counts.Render(fmt.Sprintf("%d/%d tokens", sh.shown, sh.total))
	sortInfo := sh.style.sortInfo.Render("sort: " + sh.sortLabel)

	parts := []string{title, " | ", sh.renderFeedStatus(), " | ", counts, " | ", sortInfo}
	if sh.searching {
		parts = append(parts, " | ", sh.style.title.Render("search"))
	}

	content := lipgloss.JoinHorizontal(lipgloss.Left, parts...)
	return sh.style.container.Render(content)
}

// renderFeedStatus renders the feed connection state, flagging a connected
// but silent feed as stale.
func (sh *StatusHeader) renderFeedStatus() string {
	if !sh.feed.Connected {
		status := "● feed: reconnecting"
		if sh.feed.Err != nil {
			status = fmt.Sprintf("● feed: %v", sh.feed.Err)
		}
		return sh.style.feedBad.Render(status)
	}

	if !sh.feed.LastBatch.IsZero() && time.Since(sh.feed.LastBatch) > StaleAfter {
		age := time.Since(sh.feed.LastBatch).Truncate(time.Second)
		return sh.style.stale.Render(fmt.Sprintf("● feed: stale (%s)", age))
	}

	return sh.style.feedGood.Render("● feed: live")
}

// StaleAfter is how long the feed may stay silent before the header
// flags the data as stale.
const StaleAfter = 30 * time.Second

// GetHeight returns the component height for layout calculations
func (sh *StatusHeader) GetHeight() int {
	return 3 // Border + content
}

package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gxscan/gxscan/internal/feed"
	"github.com/gxscan/gxscan/internal/history"
	"github.com/gxscan/gxscan/internal/token"
)

// Tea message types for UI communication

// ConnectionStatusMsg reports a feed connection transition.
type ConnectionStatusMsg struct {
	Connected bool
	Err       string
	Epoch     uint64
}

// BatchMsg carries a coalesced batch of records from the feed actor.
type BatchMsg struct {
	Records []token.Record
	Epoch   uint64
}

// FeedClosedMsg signals that the feed actor terminated.
type FeedClosedMsg struct{}

// HistoryFetchedMsg delivers the result of one history fetch. A
// non-nil Err leaves the previous cache entry untouched.
type HistoryFetchedMsg struct {
	Address string
	Points  []history.Point
	Err     error
}

// FrameMsg is the fixed-rate scheduling point that coalesces
// re-measurement and scroll-restore work between paints.
type FrameMsg struct{}

// WaitForFeed returns a tea.Cmd that delivers the next feed event as a
// UI message. Events arrive in emission order; the screen re-arms the
// command after each message.
func WaitForFeed(events <-chan feed.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return FeedClosedMsg{}
		}
		switch ev := ev.(type) {
		case feed.ConnectionStatus:
			return ConnectionStatusMsg{Connected: ev.Connected, Err: ev.Err, Epoch: ev.Epoch}
		case feed.Batch:
			return BatchMsg{Records: ev.Records, Epoch: ev.Epoch}
		default:
			return nil
		}
	}
}

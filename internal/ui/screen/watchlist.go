package screen

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/gxscan/gxscan/internal/feed"
	"github.com/gxscan/gxscan/internal/history"
	"github.com/gxscan/gxscan/internal/pipeline"
	"github.com/gxscan/gxscan/internal/store"
	"github.com/gxscan/gxscan/internal/token"
	"github.com/gxscan/gxscan/internal/ui"
	"github.com/gxscan/gxscan/internal/ui/component"
	"github.com/gxscan/gxscan/internal/ui/style"
	"github.com/gxscan/gxscan/internal/ui/virtual"
)

// prefsKeyFilters is the persistence key for the filter snapshot.
const prefsKeyFilters = "filters"

// frameInterval paces the coalesced re-measurement and history-trigger
// pass between paints.
const frameInterval = 100 * time.Millisecond

// Prefs is the opaque preference store the screen persists its filter
// snapshot to. Reads fall back to defaults, writes are best-effort.
type Prefs interface {
	GetJSON(key string, out any) error
	PutJSON(key string, v any)
}

// Deps wires the watchlist screen to the rest of the application.
// Fetcher and Prefs may be nil; the screen then skips history fetching
// and filter persistence.
type Deps struct {
	Store   *store.Store
	History *history.Cache
	Fetcher *history.Fetcher
	Feed    *feed.Actor
	Prefs   Prefs
	Logger  *zap.Logger

	MaxRecords int
}

// Watchlist is the live token list screen. It owns the filter state
// and the expansion set, projects the store through the filter
// pipeline only when a version changed, and renders just the visible
// window of the projected sequence.
type Watchlist struct {
	deps Deps
	keys ui.KeyMap

	filters      pipeline.FilterState
	projected    []token.Record
	storeVersion uint64

	layout        *virtual.Layout
	expandedAddrs map[string]bool
	cursor        int
	fetching      map[string]bool

	feedStatus component.FeedStatus

	header  *component.StatusHeader
	helpBar *component.HelpBar
	rowView *component.RowView
	search  textinput.Model

	searching    bool
	showFullHelp bool
	width        int
	height       int
}

// New creates the watchlist screen, restoring the persisted filter
// snapshot when one exists.
func New(deps Deps) *Watchlist {
	filters := pipeline.DefaultFilters()
	if deps.Prefs != nil {
		if err := deps.Prefs.GetJSON(prefsKeyFilters, &filters); err != nil {
			filters = pipeline.DefaultFilters()
		}
	}
	filters = filters.Normalize()
	if deps.MaxRecords > 0 {
		filters.MaxRecords = deps.MaxRecords
	}

	search := textinput.New()
	search.Placeholder = "name, symbol or address"
	search.Prompt = "/ "
	search.CharLimit = 64

	return &Watchlist{
		deps:          deps,
		keys:          ui.DefaultKeyMap(),
		filters:       filters,
		layout:        virtual.NewLayout(),
		expandedAddrs: make(map[string]bool),
		fetching:      make(map[string]bool),
		header:        component.NewStatusHeader(),
		helpBar:       component.NewHelpBar(),
		rowView:       component.NewRowView(80),
		search:        search,
	}
}

// Init starts the feed listener and the frame ticker.
func (w *Watchlist) Init() tea.Cmd {
	return tea.Batch(ui.WaitForFeed(w.deps.Feed.Events()), frameTick())
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg {
		return ui.FrameMsg{}
	})
}

// Update is the single-threaded reaction loop. Each message runs to
// completion before the next is dequeued.
func (w *Watchlist) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.resize(msg.Width, msg.Height)
		return w, nil

	case ui.ConnectionStatusMsg:
		return w, w.onConnectionStatus(msg)

	case ui.BatchMsg:
		return w, w.onBatch(msg)

	case ui.FeedClosedMsg:
		return w, tea.Quit

	case ui.HistoryFetchedMsg:
		w.onHistoryFetched(msg)
		return w, nil

	case ui.FrameMsg:
		return w, tea.Batch(append(w.framePass(), frameTick())...)

	case tea.KeyMsg:
		return w.onKey(msg)
	}

	return w, nil
}

func (w *Watchlist) resize(width, height int) {
	w.width = width
	w.height = height
	w.header.SetWidth(width)
	w.helpBar.SetWidth(width)
	w.rowView.SetWidth(width)
	w.search.Width = width - 4
	// Resize invalidates measurements and collapses every row, since
	// both were taken against the old geometry. Scroll offset is kept.
	w.expandedAddrs = make(map[string]bool)
	w.layout.SetViewport(w.contentHeight())
}

// applyViewport reinstalls the list height after the surrounding
// chrome changes, then re-marks expansions the layout dropped with its
// measurements.
func (w *Watchlist) applyViewport() {
	w.layout.SetViewport(w.contentHeight())
	for i, rec := range w.projected {
		if w.expandedAddrs[rec.Address] {
			w.layout.SetExpanded(i, true)
		}
	}
}

func (w *Watchlist) contentHeight() int {
	h := w.height - w.header.GetHeight() - lipgloss.Height(w.helpView())
	if w.searching {
		h--
	}
	if h < 0 {
		h = 0
	}
	return h
}

// onConnectionStatus clears the store on disconnect so stale risk data
// is never mistaken for live. The last projection stays on screen,
// flagged by the header, until the user changes filters or new batches
// arrive.
func (w *Watchlist) onConnectionStatus(msg ui.ConnectionStatusMsg) tea.Cmd {
	wasConnected := w.feedStatus.Connected
	w.feedStatus.Connected = msg.Connected
	if msg.Err != "" {
		w.feedStatus.Err = fmt.Errorf("%s", msg.Err)
	} else {
		w.feedStatus.Err = nil
	}

	if wasConnected && !msg.Connected {
		w.deps.Store.Clear()
		w.storeVersion = w.deps.Store.Version()
	}
	return ui.WaitForFeed(w.deps.Feed.Events())
}

func (w *Watchlist) onBatch(msg ui.BatchMsg) tea.Cmd {
	w.deps.Store.Merge(msg.Records)
	w.feedStatus.LastBatch = time.Now()
	if w.deps.Store.Version() != w.storeVersion {
		w.reproject(false)
	}
	return ui.WaitForFeed(w.deps.Feed.Events())
}

func (w *Watchlist) onHistoryFetched(msg ui.HistoryFetchedMsg) {
	delete(w.fetching, msg.Address)
	if msg.Err != nil {
		// Previous cache entry, if any, stays untouched.
		w.deps.Logger.Warn("history fetch failed",
			zap.String("address", msg.Address),
			zap.Error(msg.Err))
		return
	}
	// A stale response for an address no longer visible is still
	// cached for potential reuse.
	w.deps.History.Populate(msg.Address, msg.Points)
}

// framePass runs the per-frame work: upgrade estimated row heights to
// measured ones and trigger history fetches for visible uncached
// addresses only.
func (w *Watchlist) framePass() []tea.Cmd {
	win := w.layout.Window()
	var cmds []tea.Cmd

	for i := win.Start; i < win.End; i++ {
		rendered := w.rowView.Render(w.rowData(i), w.layout.Expanded(i), false)
		w.layout.Measure(i, lipgloss.Height(rendered))

		addr := w.projected[i].Address
		if w.deps.Fetcher != nil && !w.deps.History.Has(addr) && !w.fetching[addr] {
			w.fetching[addr] = true
			cmds = append(cmds, w.fetchHistory(addr))
		}
	}
	return cmds
}

func (w *Watchlist) fetchHistory(address string) tea.Cmd {
	fetcher := w.deps.Fetcher
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), history.FetchTimeout)
		defer cancel()
		points, err := fetcher.Fetch(ctx, address)
		return ui.HistoryFetchedMsg{Address: address, Points: points, Err: err}
	}
}

func (w *Watchlist) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if w.searching {
		return w.onSearchKey(msg)
	}

	switch {
	case key.Matches(msg, w.keys.Quit):
		return w, tea.Quit

	case key.Matches(msg, w.keys.Help):
		w.showFullHelp = !w.showFullHelp
		w.applyViewport()

	case key.Matches(msg, w.keys.Refresh):
		if err := w.deps.Feed.RequestInitial(); err != nil {
			w.deps.Logger.Warn("snapshot refresh failed", zap.Error(err))
		}

	case key.Matches(msg, w.keys.Up):
		w.moveCursor(-1)
	case key.Matches(msg, w.keys.Down):
		w.moveCursor(1)
	case key.Matches(msg, w.keys.PageUp):
		w.moveCursor(-w.layout.PageSize())
	case key.Matches(msg, w.keys.PageDown):
		w.moveCursor(w.layout.PageSize())
	case key.Matches(msg, w.keys.Home):
		w.cursor = 0
		w.layout.ScrollToTop()
	case key.Matches(msg, w.keys.End):
		w.cursor = len(w.projected) - 1
		w.layout.ScrollToBottom()
		w.ensureCursorVisible()

	case key.Matches(msg, w.keys.Expand):
		w.toggleExpand()

	case key.Matches(msg, w.keys.Search):
		w.searching = true
		w.search.SetValue(w.filters.SearchQuery)
		w.applyViewport()
		return w, w.search.Focus()

	case key.Matches(msg, w.keys.HideHoneypots):
		w.filters.HideHoneypots = !w.filters.HideHoneypots
		w.filtersChanged()
	case key.Matches(msg, w.keys.HideDanger):
		w.filters.HideDanger = !w.filters.HideDanger
		w.filtersChanged()
	case key.Matches(msg, w.keys.HideWarning):
		w.filters.HideWarning = !w.filters.HideWarning
		w.filtersChanged()
	case key.Matches(msg, w.keys.OnlySafe):
		w.filters.ShowOnlySafe = !w.filters.ShowOnlySafe
		w.filtersChanged()
	case key.Matches(msg, w.keys.OnlyRenounced):
		w.filters.HideNotRenounced = !w.filters.HideNotRenounced
		w.filtersChanged()
	case key.Matches(msg, w.keys.OnlyLockedLiq):
		w.filters.HideUnlockedLiquidity = !w.filters.HideUnlockedLiquidity
		w.filtersChanged()
	case key.Matches(msg, w.keys.ClearFilters):
		max := w.filters.MaxRecords
		w.filters = pipeline.DefaultFilters()
		w.filters.MaxRecords = max
		w.filtersChanged()

	case key.Matches(msg, w.keys.CycleSort):
		w.filters.SortBy = nextSortField(w.filters.SortBy)
		w.filtersChanged()
	case key.Matches(msg, w.keys.ReverseSort):
		if w.filters.SortDirection == pipeline.SortAsc {
			w.filters.SortDirection = pipeline.SortDesc
		} else {
			w.filters.SortDirection = pipeline.SortAsc
		}
		w.filtersChanged()
	}

	return w, nil
}

func (w *Watchlist) onSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		w.searching = false
		w.search.Blur()
		w.filters.SearchQuery = ""
		w.layout.SetViewport(w.contentHeight())
		w.filtersChanged()
		return w, nil
	case tea.KeyEnter:
		w.searching = false
		w.search.Blur()
		w.applyViewport()
		return w, nil
	}

	var cmd tea.Cmd
	w.search, cmd = w.search.Update(msg)
	if query := w.search.Value(); query != w.filters.SearchQuery {
		w.filters.SearchQuery = query
		w.filtersChanged()
	}
	return w, cmd
}

func nextSortField(f pipeline.SortField) pipeline.SortField {
	switch f {
	case pipeline.SortByAge:
		return pipeline.SortByHolders
	case pipeline.SortByHolders:
		return pipeline.SortByLiquidity
	case pipeline.SortByLiquidity:
		return pipeline.SortBySafetyScore
	default:
		return pipeline.SortByAge
	}
}

func (w *Watchlist) moveCursor(delta int) {
	if len(w.projected) == 0 {
		return
	}
	w.cursor += delta
	if w.cursor < 0 {
		w.cursor = 0
	}
	if w.cursor >= len(w.projected) {
		w.cursor = len(w.projected) - 1
	}
	w.ensureCursorVisible()
}

func (w *Watchlist) ensureCursorVisible() {
	w.layout.EnsureVisible(w.cursor)
}

func (w *Watchlist) toggleExpand() {
	if w.cursor < 0 || w.cursor >= len(w.projected) {
		return
	}
	addr := w.projected[w.cursor].Address
	expanded := !w.expandedAddrs[addr]
	if expanded {
		w.expandedAddrs[addr] = true
	} else {
		delete(w.expandedAddrs, addr)
	}
	w.layout.SetExpanded(w.cursor, expanded)
}

// filtersChanged persists the snapshot and reprojects with the
// expansion set cleared and the scroll reset.
func (w *Watchlist) filtersChanged() {
	w.filters = w.filters.Normalize()
	if w.deps.Prefs != nil {
		w.deps.Prefs.PutJSON(prefsKeyFilters, w.filters)
	}
	w.expandedAddrs = make(map[string]bool)
	w.reproject(true)
}

// reproject recomputes the filtered sequence. The layout is rebuilt
// either way because row indices change meaning; expansion marks are
// carried over by address unless the filters themselves changed.
func (w *Watchlist) reproject(filterChange bool) {
	cursorAddr := ""
	if !filterChange {
		cursorAddr = w.cursorAddress()
	}

	w.projected = pipeline.Project(w.deps.Store.Snapshot(), w.filters)
	w.storeVersion = w.deps.Store.Version()

	w.layout.Reset(len(w.projected))
	w.cursor = 0
	for i, rec := range w.projected {
		if w.expandedAddrs[rec.Address] {
			w.layout.SetExpanded(i, true)
		}
		if cursorAddr != "" && rec.Address == cursorAddr {
			w.cursor = i
		}
	}
}

func (w *Watchlist) cursorAddress() string {
	if w.cursor >= 0 && w.cursor < len(w.projected) {
		return w.projected[w.cursor].Address
	}
	return ""
}

func (w *Watchlist) rowData(i int) component.RowData {
	rec := w.projected[i]
	data := component.RowData{Record: rec}
	if points, err := w.deps.History.Get(rec.Address); err == nil {
		data.LiquiditySeries = history.Values(points, history.MetricLiquidity)
		data.HolderSeries = history.Values(points, history.MetricHolders)
	}
	return data
}

// View renders the header, the visible slice of the projected list and
// the help bar.
func (w *Watchlist) View() string {
	if w.width == 0 {
		return "loading..."
	}

	w.header.SetFeedStatus(w.feedStatus)
	w.header.SetCounts(len(w.projected), w.deps.Store.Len())
	w.header.SetSortLabel(sortLabel(w.filters))
	w.header.SetSearching(w.searching)

	sections := []string{w.header.View()}
	if w.searching {
		sections = append(sections, w.search.View())
	}
	sections = append(sections, w.viewList())
	sections = append(sections, w.helpView())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// helpView renders the compact single-line help bar, or every binding
// while the help toggle is on.
func (w *Watchlist) helpView() string {
	if w.showFullHelp {
		return w.helpBar.ViewAll(w.keys.FullHelp())
	}
	return w.helpBar.SetKeyBindings(w.keys.ListHelp()).View()
}

// viewList renders only the rows inside the visible window and crops
// the result to the viewport against the scroll offset.
func (w *Watchlist) viewList() string {
	viewport := w.contentHeight()
	if viewport <= 0 {
		return ""
	}
	if len(w.projected) == 0 {
		return w.viewEmpty(viewport)
	}

	win := w.layout.Window()
	rows := make([]string, 0, win.Len())
	for i := win.Start; i < win.End; i++ {
		rows = append(rows, w.rowView.Render(w.rowData(i), w.layout.Expanded(i), i == w.cursor))
	}

	lines := strings.Split(strings.Join(rows, "\n"), "\n")
	skip := w.layout.ScrollOffset() - win.TopOffset
	if skip < 0 {
		skip = 0
	}
	if skip > len(lines) {
		skip = len(lines)
	}
	lines = lines[skip:]
	if len(lines) > viewport {
		lines = lines[:viewport]
	}
	for len(lines) < viewport {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// viewEmpty renders the explicit empty state instead of a blank area.
func (w *Watchlist) viewEmpty(viewport int) string {
	palette := style.DefaultPalette()
	msg := "no tokens match the current filters"
	if !w.feedStatus.Connected {
		msg = "feed disconnected, reconnecting..."
	}
	empty := lipgloss.NewStyle().
		Foreground(palette.TextMuted).
		Width(w.width).
		Height(viewport).
		Align(lipgloss.Center, lipgloss.Center).
		Render(msg)
	return empty
}

func sortLabel(f pipeline.FilterState) string {
	arrow := "↑"
	if f.SortDirection == pipeline.SortDesc {
		arrow = "↓"
	}
	return string(f.SortBy) + " " + arrow
}

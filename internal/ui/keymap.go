package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keyboard shortcuts for the application
type KeyMap struct {
	// Global
	Quit    key.Binding
	Help    key.Binding
	Refresh key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	// Row interaction
	Expand key.Binding

	// Filtering
	Search        key.Binding
	HideHoneypots key.Binding
	HideDanger    key.Binding
	HideWarning   key.Binding
	OnlySafe      key.Binding
	OnlyRenounced key.Binding
	OnlyLockedLiq key.Binding
	ClearFilters  key.Binding

	// Sorting
	CycleSort   key.Binding
	ReverseSort key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "refresh"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "b"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "f"),
			key.WithHelp("pgdn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "top"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "bottom"),
		),

		Expand: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "expand"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		HideHoneypots: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "hide honeypots"),
		),
		HideDanger: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "hide danger"),
		),
		HideWarning: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "hide warning"),
		),
		OnlySafe: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "only safe"),
		),
		OnlyRenounced: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "only renounced"),
		),
		OnlyLockedLiq: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "only locked LP"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear filters"),
		),

		CycleSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort field"),
		),
		ReverseSort: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "reverse sort"),
		),
	}
}

// ListHelp returns the bindings shown in the compact watchlist help
// bar.
func (k KeyMap) ListHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Expand, k.Search, k.CycleSort, k.Help, k.Quit,
	}
}

// FullHelp returns every binding, shown while the help toggle is on.
func (k KeyMap) FullHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End,
		k.Expand, k.Search, k.Refresh,
		k.HideHoneypots, k.HideDanger, k.HideWarning,
		k.OnlySafe, k.OnlyRenounced, k.OnlyLockedLiq, k.ClearFilters,
		k.CycleSort, k.ReverseSort,
		k.Help, k.Quit,
	}
}

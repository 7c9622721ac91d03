package component

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/gxscan/gxscan/internal/ui/style"
)

// HelpBar represents a help bar component showing keyboard shortcuts
type HelpBar struct {
	keyBindings []key.Binding
	width       int

	keyStyle       lipgloss.Style
	descStyle      lipgloss.Style
	sepStyle       lipgloss.Style
	containerStyle lipgloss.Style
}

// NewHelpBar creates a new help bar component
func NewHelpBar() *HelpBar {
	palette := style.DefaultPalette()

	return &HelpBar{
		keyBindings: make([]key.Binding, 0),
		width:       80,

		keyStyle: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true),

		descStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		sepStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		containerStyle: lipgloss.NewStyle().
			Padding(0, 1),
	}
}

// SetKeyBindings sets the key bindings to display
func (h *HelpBar) SetKeyBindings(bindings []key.Binding) *HelpBar {
	h.keyBindings = bindings
	return h
}

// SetWidth sets the help bar width
func (h *HelpBar) SetWidth(width int) *HelpBar {
	h.width = width
	return h
}

// View renders the help bar as a single line of "key description" pairs,
// dropping trailing entries that do not fit.
func (h *HelpBar) View() string {
	if len(h.keyBindings) == 0 {
		return ""
	}

	availableWidth := h.width - 2 // Account for padding
	separator := h.sepStyle.Render(" • ")
	sepWidth := lipgloss.Width(separator)

	items := make([]string, 0, len(h.keyBindings))
	currentWidth := 0

	for _, binding := range h.keyBindings {
		if !binding.Enabled() {
			continue
		}

		keys := binding.Keys()
		help := binding.Help()
		if len(keys) == 0 || help.Desc == "" {
			continue
		}

		item := h.keyStyle.Render(help.Key) + " " + h.descStyle.Render(help.Desc)
		itemWidth := lipgloss.Width(item) + sepWidth

		if currentWidth+itemWidth > availableWidth && len(items) > 0 {
			break
		}

		items = append(items, item)
		currentWidth += itemWidth
	}

	content := strings.Join(items, separator)
	return h.containerStyle.Width(h.width).Render(content)
}

// ViewAll renders the given bindings without touching the configured
// set, wrapping onto additional lines instead of dropping what does
// not fit. Used for the expanded help view.
func (h *HelpBar) ViewAll(bindings []key.Binding) string {
	if len(bindings) == 0 {
		return ""
	}

	availableWidth := h.width - 2
	separator := h.sepStyle.Render(" • ")
	sepWidth := lipgloss.Width(separator)

	var lines []string
	var line []string
	currentWidth := 0

	for _, binding := range bindings {
		if !binding.Enabled() {
			continue
		}

		help := binding.Help()
		if len(binding.Keys()) == 0 || help.Desc == "" {
			continue
		}

		item := h.keyStyle.Render(help.Key) + " " + h.descStyle.Render(help.Desc)
		itemWidth := lipgloss.Width(item) + sepWidth

		if currentWidth+itemWidth > availableWidth && len(line) > 0 {
			lines = append(lines, strings.Join(line, separator))
			line = nil
			currentWidth = 0
		}

		line = append(line, item)
		currentWidth += itemWidth
	}
	if len(line) > 0 {
		lines = append(lines, strings.Join(line, separator))
	}

	return h.containerStyle.Width(h.width).Render(strings.Join(lines, "\n"))
}

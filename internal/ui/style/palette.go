package style

import "github.com/charmbracelet/lipgloss"

// Color palette shared by every screen and component.
var (
	// Primary colors
	Cyan    = lipgloss.Color("#00E5FF") // Primary highlight
	Magenta = lipgloss.Color("#FF1B6B") // Accent
	Yellow  = lipgloss.Color("#FFB500") // Warnings
	Green   = lipgloss.Color("#2AFFAA") // Safe / positive trend
	Red     = lipgloss.Color("#FF5555") // Danger / negative trend
	Blue    = lipgloss.Color("#3B82F6") // Info

	// Base colors
	Base03 = lipgloss.Color("#1B1D23") // Background
	Base02 = lipgloss.Color("#262831") // Darker background
	Base01 = lipgloss.Color("#6C7280") // Muted text
	Base2  = lipgloss.Color("#ECEFF4") // Primary text
	Base1  = lipgloss.Color("#B4BCC8") // Secondary text
)

// Liquidity display thresholds in USD, matching the upstream monitor.
const (
	LiquidityHighUSD = 50000.0
	LiquidityMidUSD  = 10000.0
)

// Palette provides centralized color management.
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color
	Info      lipgloss.Color

	Background    lipgloss.Color
	BackgroundAlt lipgloss.Color
	Text          lipgloss.Color
	TextMuted     lipgloss.Color
	TextSecondary lipgloss.Color

	Safe   lipgloss.Color
	Warn   lipgloss.Color
	Danger lipgloss.Color
}

// DefaultPalette returns the default color palette.
func DefaultPalette() Palette {
	return Palette{
		Primary:   Cyan,
		Secondary: Magenta,
		Success:   Green,
		Error:     Red,
		Warning:   Yellow,
		Info:      Blue,

		Background:    Base03,
		BackgroundAlt: Base02,
		Text:          Base2,
		TextMuted:     Base01,
		TextSecondary: Base1,

		Safe:   Green,
		Warn:   Yellow,
		Danger: Red,
	}
}

// LiquidityColor grades a liquidity amount for display.
func (p Palette) LiquidityColor(usd float64) lipgloss.Color {
	switch {
	case usd >= LiquidityHighUSD:
		return p.Success
	case usd >= LiquidityMidUSD:
		return p.Warning
	default:
		return p.Error
	}
}

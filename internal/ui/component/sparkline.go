package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gxscan/gxscan/internal/trend"
	"github.com/gxscan/gxscan/internal/ui/style"
)

// Sparkline renders a mini block graph of a metric series with a trend arrow.
type Sparkline struct {
	data  []float64
	width int
	style lipgloss.Style
	color lipgloss.Color
}

// NewSparkline creates a sparkline of the given character width.
func NewSparkline(width int) *Sparkline {
	return &Sparkline{
		data:  make([]float64, 0),
		width: width,
		style: lipgloss.NewStyle(),
		color: style.DefaultPalette().Primary,
	}
}

// SetData sets the data points, oldest first.
func (s *Sparkline) SetData(data []float64) *Sparkline {
	s.data = make([]float64, len(data))
	copy(s.data, data)
	return s
}

// SetWidth sets the width of the sparkline.
func (s *Sparkline) SetWidth(width int) *Sparkline {
	s.width = width
	return s
}

// SetColor sets the color for the spark blocks.
func (s *Sparkline) SetColor(color lipgloss.Color) *Sparkline {
	s.color = color
	return s
}

// View renders the sparkline followed by a trend arrow.
func (s *Sparkline) View() string {
	if len(s.data) == 0 {
		return s.style.Foreground(style.DefaultPalette().TextMuted).
			Render(strings.Repeat("▁", s.width))
	}

	blocks := s.style.Foreground(s.color).Render(s.generateSparkBlocks())

	direction := trend.Classify(s.data)
	arrow := lipgloss.NewStyle().
		Foreground(trendColor(direction)).
		Render(direction.Arrow())

	return blocks + " " + arrow
}

// generateSparkBlocks maps each data point onto the block character ramp.
func (s *Sparkline) generateSparkBlocks() string {
	data := s.data
	if len(data) > s.width {
		data = data[len(data)-s.width:]
	}

	min, max := minMax(data)
	if min == max {
		return strings.Repeat("▄", len(data))
	}

	sparkChars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	var result strings.Builder
	for _, value := range data {
		normalized := (value - min) / (max - min)
		index := int(normalized * float64(len(sparkChars)-1))
		if index < 0 {
			index = 0
		} else if index >= len(sparkChars) {
			index = len(sparkChars) - 1
		}
		result.WriteRune(sparkChars[index])
	}

	// Pad with spaces if we have fewer data points than width.
	for i := len(data); i < s.width; i++ {
		result.WriteRune(' ')
	}

	return result.String()
}

func minMax(data []float64) (float64, float64) {
	min, max := data[0], data[0]
	for _, value := range data {
		if value < min {
			min = value
		}
		if value > max {
			max = value
		}
	}
	return min, max
}

func trendColor(d trend.Direction) lipgloss.Color {
	palette := style.DefaultPalette()
	switch d {
	case trend.Up:
		return palette.Success
	case trend.Down:
		return palette.Error
	default:
		return palette.TextMuted
	}
}

package component

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gxscan/gxscan/internal/token"
	"github.com/gxscan/gxscan/internal/ui/style"
)

// RowData bundles one token record with the optional history series the
// expanded view charts. Series are nil until the history cache has them.
type RowData struct {
	Record          token.Record
	LiquiditySeries []float64
	HolderSeries    []float64
}

// RowView renders token rows in collapsed (one line) and expanded
// (detail card) form. One instance is shared across all rows; only the
// per-call RowData varies.
type RowView struct {
	width   int
	palette style.Palette

	selected  lipgloss.Style
	name      lipgloss.Style
	symbol    lipgloss.Style
	muted     lipgloss.Style
	label     lipgloss.Style
	value     lipgloss.Style
	detailBox lipgloss.Style
}

// NewRowView creates a row renderer for the given terminal width.
func NewRowView(width int) *RowView {
	palette := style.DefaultPalette()

	return &RowView{
		width:   width,
		palette: palette,

		selected: lipgloss.NewStyle().
			Background(palette.BackgroundAlt).
			Bold(true),

		name: lipgloss.NewStyle().
			Foreground(palette.Text).
			Bold(true),

		symbol: lipgloss.NewStyle().
			Foreground(palette.Secondary),

		muted: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		label: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Width(12),

		value: lipgloss.NewStyle().
			Foreground(palette.Text),

		detailBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(palette.TextMuted).
			Padding(0, 2),
	}
}

// SetWidth updates the terminal width used for layout.
func (rv *RowView) SetWidth(width int) {
	rv.width = width
}

// Render renders one row, expanded or collapsed, optionally highlighted
// as the cursor row.
func (rv *RowView) Render(data RowData, expanded, cursor bool) string {
	line := rv.renderCollapsed(data.Record)
	if cursor {
		line = rv.selected.Width(rv.width).Render(line)
	}
	if !expanded {
		return line
	}
	return line + "\n" + rv.renderDetail(data)
}

// renderCollapsed renders the one-line summary: risk badge, identity,
// age, holders, liquidity and tax.
func (rv *RowView) renderCollapsed(rec token.Record) string {
	badge := rv.riskBadge(rec.Risk)

	symbol := rec.Symbol
	if symbol == "" {
		symbol = "?"
	}
	name := rec.Name
	if name == "" {
		name = shortAddress(rec.Address)
	}

	identity := rv.symbol.Render(fmt.Sprintf("%-8s", truncate(symbol, 8))) + " " +
		rv.name.Render(fmt.Sprintf("%-18s", truncate(name, 18)))

	age := rv.muted.Render(fmt.Sprintf("%8s", token.FormatAge(rec.AgeHours)))
	holders := rv.value.Render(fmt.Sprintf("%7d h", rec.HolderCount))

	liqStyle := lipgloss.NewStyle().Foreground(rv.palette.LiquidityColor(rec.LiquidityAmount))
	liquidity := liqStyle.Render(fmt.Sprintf("%10s", formatUSD(rec.LiquidityAmount)))

	tax := rv.muted.Render(fmt.Sprintf("%4.1f/%.1f%%", rec.BuyTax, rec.SellTax))

	return strings.Join([]string{badge, identity, age, holders, liquidity, tax}, "  ")
}

// renderDetail renders the expanded card below the summary line.
func (rv *RowView) renderDetail(data RowData) string {
	rec := data.Record
	var lines []string

	lines = append(lines,
		rv.label.Render("address")+rv.value.Render(rec.Address),
		rv.label.Render("pair")+rv.value.Render(rec.PairAddress),
		rv.label.Render("owner")+rv.renderOwner(rec),
		rv.label.Render("taxes")+rv.value.Render(
			fmt.Sprintf("buy %.1f%%  sell %.1f%%  transfer %.1f%%",
				rec.BuyTax, rec.SellTax, rec.TransferTax)),
	)

	if flags := riskFlags(rec); len(flags) > 0 {
		lines = append(lines,
			rv.label.Render("flags")+lipgloss.NewStyle().
				Foreground(rv.palette.Warning).
				Render(strings.Join(flags, ", ")))
	}
	if rec.IsHoneypot && rec.HoneypotReason != "" {
		lines = append(lines,
			rv.label.Render("honeypot")+lipgloss.NewStyle().
				Foreground(rv.palette.Danger).
				Render(rec.HoneypotReason))
	}

	if lp := rec.DecodeLPHolders(); lp.Parsed {
		locked := fmt.Sprintf("%.1f%% locked across %d holders",
			lp.LockedLPPercent(), len(lp.Items))
		lines = append(lines, rv.label.Render("lp")+rv.value.Render(locked))
	}
	if dex := rec.DecodeDexInfo(); dex.Parsed && len(dex.Items) > 0 {
		entries := make([]string, 0, len(dex.Items))
		for _, d := range dex.Items {
			entries = append(entries, fmt.Sprintf("%s %s", d.Name, formatUSD(d.Liquidity)))
		}
		lines = append(lines, rv.label.Render("dex")+rv.value.Render(strings.Join(entries, ", ")))
	}

	lines = append(lines, rv.renderSeries("liquidity", data.LiquiditySeries, rv.palette.Primary))
	lines = append(lines, rv.renderSeries("holders", data.HolderSeries, rv.palette.Secondary))

	lines = append(lines,
		rv.label.Render("scans")+rv.muted.Render(
			fmt.Sprintf("%d total, status %s", rec.TotalScans, orUnknown(rec.Status))))

	return rv.detailBox.Width(rv.width).Render(strings.Join(lines, "\n"))
}

// renderSeries renders one sparkline row, or a placeholder while the
// history fetch is still pending.
func (rv *RowView) renderSeries(name string, series []float64, color lipgloss.Color) string {
	if series == nil {
		return rv.label.Render(name) + rv.muted.Render("loading history...")
	}
	spark := NewSparkline(24).SetData(series).SetColor(color)
	return rv.label.Render(name) + spark.View()
}

func (rv *RowView) renderOwner(rec token.Record) string {
	if rec.Renounced() {
		return lipgloss.NewStyle().
			Foreground(rv.palette.Success).
			Render("renounced")
	}
	if rec.OwnerAddress == "" {
		return rv.muted.Render("unknown")
	}
	return rv.value.Render(shortAddress(rec.OwnerAddress))
}

func (rv *RowView) riskBadge(level token.Level) string {
	var color lipgloss.Color
	switch level {
	case token.LevelSafe:
		color = rv.palette.Safe
	case token.LevelWarning:
		color = rv.palette.Warn
	default:
		color = rv.palette.Danger
	}
	badge := fmt.Sprintf("[%-7s]", level.String())
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(badge)
}

// riskFlags lists the scanner flags the detail view surfaces.
func riskFlags(rec token.Record) []string {
	var flags []string
	if rec.HiddenOwner {
		flags = append(flags, "hidden owner")
	}
	if rec.CanTakeBackOwnership {
		flags = append(flags, "reclaimable ownership")
	}
	if rec.OwnerChangeBalance {
		flags = append(flags, "owner can change balances")
	}
	if rec.Selfdestruct {
		flags = append(flags, "selfdestruct")
	}
	if rec.IsProxy {
		flags = append(flags, "proxy")
	}
	if rec.IsMintable {
		flags = append(flags, "mintable")
	}
	if rec.SlippageModifiable {
		flags = append(flags, "modifiable slippage")
	}
	if !rec.IsOpenSource {
		flags = append(flags, "closed source")
	}
	return flags
}

func formatUSD(v float64) string {
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("$%.2fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("$%.1fK", v/1_000)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

func shortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:8] + "..." + addr[len(addr)-4:]
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

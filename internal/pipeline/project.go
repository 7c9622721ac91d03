package pipeline

import (
	"sort"
	"strings"

	"github.com/gxscan/gxscan/internal/token"
)

// Project transforms a store snapshot into the ordered, bounded
// sequence the list renders. It is pure: same snapshot and filters in,
// same sequence out. A record must satisfy every enabled predicate;
// the search query is applied as the final predicate.
func Project(snapshot []token.Record, filters FilterState) []token.Record {
	filters = filters.Normalize()

	out := make([]token.Record, 0, len(snapshot))
	for _, rec := range snapshot {
		if !passes(&rec, &filters) {
			continue
		}
		if !matchesSearch(&rec, filters.SearchQuery) {
			continue
		}
		out = append(out, rec)
	}

	sortRecords(out, filters.SortBy, filters.SortDirection)

	if filters.MaxRecords > 0 && len(out) > filters.MaxRecords {
		out = out[:filters.MaxRecords]
	}
	return out
}

// passes applies every enabled non-search predicate conjunctively.
// Contradictory toggles (hideHoneypots with showOnlyHoneypots) simply
// pass nothing; the more restrictive filter wins.
func passes(rec *token.Record, f *FilterState) bool {
	if rec.HolderCount < f.MinHolders {
		return false
	}
	if rec.LiquidityAmount < f.MinLiquidity {
		return false
	}
	if f.HideHoneypots && rec.IsHoneypot {
		return false
	}
	if f.ShowOnlyHoneypots && !rec.IsHoneypot {
		return false
	}
	if f.HideDanger && rec.Risk == token.LevelDanger {
		return false
	}
	if f.HideWarning && rec.Risk == token.LevelWarning {
		return false
	}
	if f.ShowOnlySafe && rec.Risk != token.LevelSafe {
		return false
	}
	if f.HideNotRenounced && !rec.Renounced() {
		return false
	}
	if f.HideUnlockedLiquidity && !rec.DecodeLPHolders().HasLockedLiquidity() {
		return false
	}
	return true
}

// matchesSearch is a case-insensitive substring match over name,
// symbol, and address. An empty query matches everything.
func matchesSearch(rec *token.Record, query string) bool {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(rec.Name), query) ||
		strings.Contains(strings.ToLower(rec.Symbol), query) ||
		strings.Contains(strings.ToLower(rec.Address), query)
}

// sortRecords orders records by the selected field. The sort is stable
// so equal keys keep their snapshot order.
func sortRecords(records []token.Record, field SortField, dir SortDirection) {
	key := func(r *token.Record) float64 {
		switch field {
		case SortByHolders:
			return float64(r.HolderCount)
		case SortByLiquidity:
			return r.LiquidityAmount
		case SortBySafetyScore:
			return float64(r.Risk.SafetyScore())
		default:
			return r.AgeHours
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := key(&records[i]), key(&records[j])
		if dir == SortDesc {
			return a > b
		}
		return a < b
	})
}

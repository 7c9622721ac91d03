package token

// Level classifies a token by the severity of its risk signals.
type Level int

const (
	// LevelSafe means no known risk signal fired.
	LevelSafe Level = iota
	// LevelWarning marks contracts with abusable but not outright
	// hostile properties (proxy, mintable, high tax, mutable slippage).
	LevelWarning
	// LevelDanger marks honeypots and ownership-abuse signals.
	LevelDanger
)

// Tax above this fraction of a trade is treated as a risk signal.
const highTaxThreshold = 10.0

// String returns the lowercase name used for display and filter keys.
func (l Level) String() string {
	switch l {
	case LevelSafe:
		return "safe"
	case LevelWarning:
		return "warning"
	case LevelDanger:
		return "danger"
	default:
		return "unknown"
	}
}

// SafetyScore maps the level to a sortable ordinal where safer is
// larger: safe=2, warning=1, danger=0.
func (l Level) SafetyScore() int {
	switch l {
	case LevelSafe:
		return 2
	case LevelWarning:
		return 1
	default:
		return 0
	}
}

// ClassifyRisk derives the risk level from a record's signal fields.
// The precedence is fixed: any danger signal wins over any warning
// signal, and the result is a pure function of the record fields.
func ClassifyRisk(r *Record) Level {
	switch {
	case r.IsHoneypot,
		r.HiddenOwner,
		r.CanTakeBackOwnership,
		r.OwnerChangeBalance,
		r.Selfdestruct:
		return LevelDanger

	case r.IsProxy,
		r.IsMintable,
		r.BuyTax > highTaxThreshold,
		r.SellTax > highTaxThreshold,
		r.SlippageModifiable:
		return LevelWarning

	default:
		return LevelSafe
	}
}

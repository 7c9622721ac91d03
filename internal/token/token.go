package token

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Zero and burn addresses both count as renounced ownership.
const (
	ZeroAddress = "0x0000000000000000000000000000000000000000"
	DeadAddress = "0x000000000000000000000000000000000000dead"
)

// Record is the canonical fact record for one tracked token, keyed by
// its contract address. Records arrive fully decoded from the feed and
// are replaced wholesale on every merge; nothing mutates them in place.
type Record struct {
	Address     string `json:"token_address"`
	PairAddress string `json:"pair_address"`
	Name        string `json:"token_name"`
	Symbol      string `json:"token_symbol"`

	AgeHours     float64 `json:"token_age_hours"`
	CreationTime int64   `json:"hp_creation_time"`

	BuyTax      float64 `json:"hp_buy_tax"`
	SellTax     float64 `json:"hp_sell_tax"`
	TransferTax float64 `json:"hp_transfer_tax"`

	LiquidityAmount float64 `json:"hp_liquidity_amount"`
	HolderCount     int     `json:"hp_holder_count"`

	IsHoneypot     bool   `json:"hp_is_honeypot"`
	HoneypotReason string `json:"hp_honeypot_reason"`

	IsOpenSource         bool `json:"gp_is_open_source"`
	IsProxy              bool `json:"gp_is_proxy"`
	IsMintable           bool `json:"gp_is_mintable"`
	HiddenOwner          bool `json:"gp_hidden_owner"`
	CanTakeBackOwnership bool `json:"gp_can_take_back_ownership"`
	OwnerChangeBalance   bool `json:"gp_owner_change_balance"`
	Selfdestruct         bool `json:"gp_selfdestruct"`
	SlippageModifiable   bool `json:"gp_slippage_modifiable"`

	OwnerAddress   string `json:"gp_owner_address"`
	CreatorAddress string `json:"gp_creator_address"`

	TotalScans int    `json:"total_scans"`
	Status     string `json:"status"`

	// Nested payloads from the upstream scanners. Kept raw and decoded
	// on demand; malformed bytes decode to the empty variant.
	LPHolders json.RawMessage `json:"gp_lp_holders,omitempty"`
	DexInfo   json.RawMessage `json:"gp_dex_info,omitempty"`

	// Derived on merge from the fields above, never shipped by the feed.
	Risk Level `json:"-"`
}

// Valid reports whether the record carries the minimum identity the
// store requires. Records without an address are dropped at merge.
func (r *Record) Valid() bool {
	return r.Address != ""
}

// Renounced reports whether ownership has been given up.
func (r *Record) Renounced() bool {
	owner := strings.ToLower(r.OwnerAddress)
	return owner == ZeroAddress || owner == DeadAddress
}

// ListedAt returns the creation time, or the zero time when the
// upstream scanner did not resolve one.
func (r *Record) ListedAt() time.Time {
	if r.CreationTime <= 0 {
		return time.Time{}
	}
	return time.Unix(r.CreationTime, 0)
}

// FormatAge renders the token age compactly (2d 3h, 4h 12m, 9m 30s).
func FormatAge(ageHours float64) string {
	if ageHours <= 0 {
		return "unknown"
	}

	// Round to whole seconds so fractional hours do not drift the
	// smallest component one unit low.
	d := time.Duration(ageHours * float64(time.Hour)).Round(time.Second)
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
}

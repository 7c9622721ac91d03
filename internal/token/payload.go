package token

import "encoding/json"

// LPHolder is one entry of the liquidity-provider holder payload.
type LPHolder struct {
	Address  string  `json:"address"`
	Tag      string  `json:"tag"`
	IsLocked bool    `json:"is_locked"`
	Percent  float64 `json:"percent,string"`
}

// DexEntry is one entry of the dex-liquidity payload.
type DexEntry struct {
	Name      string  `json:"name"`
	Pair      string  `json:"pair"`
	Liquidity float64 `json:"liquidity,string"`
}

// LPHolderList is the decoded lp-holder payload. Parsed is false when
// the raw bytes were absent or malformed; Items is always usable and
// empty in that case.
type LPHolderList struct {
	Items  []LPHolder
	Parsed bool
}

// DexList is the decoded dex-liquidity payload, with the same
// malformed-means-empty contract as LPHolderList.
type DexList struct {
	Items  []DexEntry
	Parsed bool
}

// DecodeLPHolders decodes the record's lp-holder payload. Malformed or
// missing payloads yield the empty variant, never an error.
func (r *Record) DecodeLPHolders() LPHolderList {
	var items []LPHolder
	if len(r.LPHolders) == 0 || json.Unmarshal(r.LPHolders, &items) != nil {
		return LPHolderList{}
	}
	return LPHolderList{Items: items, Parsed: true}
}

// DecodeDexInfo decodes the record's dex-liquidity payload with the
// same defensive contract as DecodeLPHolders.
func (r *Record) DecodeDexInfo() DexList {
	var items []DexEntry
	if len(r.DexInfo) == 0 || json.Unmarshal(r.DexInfo, &items) != nil {
		return DexList{}
	}
	return DexList{Items: items, Parsed: true}
}

// LockedLPPercent sums the locked share across lp holders.
func (l LPHolderList) LockedLPPercent() float64 {
	var locked float64
	for _, h := range l.Items {
		if h.IsLocked {
			locked += h.Percent
		}
	}
	return locked
}

// HasLockedLiquidity reports whether any lp holder locks its share.
func (l LPHolderList) HasLockedLiquidity() bool {
	for _, h := range l.Items {
		if h.IsLocked {
			return true
		}
	}
	return false
}

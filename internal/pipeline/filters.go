package pipeline

// SortField selects the comparator key for the projected sequence.
type SortField string

const (
	SortByAge         SortField = "age"
	SortByHolders     SortField = "holders"
	SortByLiquidity   SortField = "liquidity"
	SortBySafetyScore SortField = "safetyScore"
)

// SortDirection orders the comparator output.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// FilterState is the user-configured view over the token store. It is
// a plain value object: the UI mutates a copy and the persistence
// layer stores the JSON snapshot opaquely.
type FilterState struct {
	MinHolders   int     `json:"minHolders"`
	MinLiquidity float64 `json:"minLiquidity"`

	HideHoneypots         bool `json:"hideHoneypots"`
	ShowOnlyHoneypots     bool `json:"showOnlyHoneypots"`
	HideDanger            bool `json:"hideDanger"`
	HideWarning           bool `json:"hideWarning"`
	ShowOnlySafe          bool `json:"showOnlySafe"`
	HideNotRenounced      bool `json:"hideNotRenounced"`
	HideUnlockedLiquidity bool `json:"hideUnlockedLiquidity"`

	SearchQuery string `json:"searchQuery"`

	SortBy        SortField     `json:"sortBy"`
	SortDirection SortDirection `json:"sortDirection"`

	MaxRecords int `json:"maxRecords"`
}

// DefaultFilters returns the startup configuration used when no
// persisted snapshot exists or reading it fails.
func DefaultFilters() FilterState {
	return FilterState{
		HideHoneypots: true,
		SortBy:        SortByAge,
		SortDirection: SortAsc,
		MaxRecords:    1000,
	}
}

// Normalize repairs unknown sort fields and directions after loading a
// persisted snapshot from an older version.
func (f FilterState) Normalize() FilterState {
	switch f.SortBy {
	case SortByAge, SortByHolders, SortByLiquidity, SortBySafetyScore:
	default:
		f.SortBy = SortByAge
	}
	switch f.SortDirection {
	case SortAsc, SortDesc:
	default:
		f.SortDirection = SortAsc
	}
	if f.MaxRecords < 0 {
		f.MaxRecords = 0
	}
	return f
}

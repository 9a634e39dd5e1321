package events

// Typed payloads for Varuna's domain events.

// BalanceComputedData accompanies BalanceComputed events.
type BalanceComputedData struct {
	ShipID     string  `json:"ship_id"`
	Year       int     `json:"year"`
	CBGramsCO2 float64 `json:"cb_gco2eq"`
	Status     string  `json:"status"`
}

// SurplusBankedData accompanies SurplusBanked events.
type SurplusBankedData struct {
	ShipID      string  `json:"ship_id"`
	Year        int     `json:"year"`
	Amount      float64 `json:"amount_gco2eq"`
	RemainingCB float64 `json:"remaining_cb"`
}

// BankedAppliedData accompanies BankedApplied events.
type BankedAppliedData struct {
	ShipID   string  `json:"ship_id"`
	Year     int     `json:"year"`
	Amount   float64 `json:"amount_gco2eq"`
	CBBefore float64 `json:"cb_before"`
	CBAfter  float64 `json:"cb_after"`
}

// PoolCreatedData accompanies PoolCreated events.
type PoolCreatedData struct {
	PoolID        int64   `json:"pool_id"`
	Year          int     `json:"year"`
	MemberCount   int     `json:"member_count"`
	TotalCBBefore float64 `json:"total_cb_before"`
	TotalCBAfter  float64 `json:"total_cb_after"`
}

// BaselineChangedData accompanies BaselineChanged events.
type BaselineChangedData struct {
	RouteID string `json:"route_id"`
}

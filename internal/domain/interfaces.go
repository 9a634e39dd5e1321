package domain

// Outbound ports implemented by the persistence adapters. Services depend
// on these interfaces, never on a concrete store; any storage engine that
// implements them is substitutable.
//
// Absence is reported as (nil, nil) by the Find methods, except
// AdjustedCB which deliberately reports 0 for a ship-year with no stored
// balance. Storage failures wrap ErrUnavailable.

// ComplianceRepository stores per-ship-year compliance balances.
type ComplianceRepository interface {
	// Save upserts the balance keyed by (ShipID, Year).
	Save(balance *ComplianceBalance) (*ComplianceBalance, error)
	// FindByShipAndYear returns the stored balance, or nil if absent.
	FindByShipAndYear(shipID string, year int) (*ComplianceBalance, error)
	// AdjustedCB returns the stored balance plus the net effect of
	// ledger entries (-BANK, +APPLY), or 0 if no balance is stored.
	AdjustedCB(shipID string, year int) (float64, error)
}

// BankRepository stores the append-only banking ledger.
type BankRepository interface {
	// Save appends a ledger entry and returns it with ID and timestamp
	// assigned.
	Save(entry *BankEntry) (*BankEntry, error)
	// FindByShipAndYear returns the ship-year's entries, newest first.
	FindByShipAndYear(shipID string, year int) ([]BankEntry, error)
	// AvailableBalance returns the signed sum (+BANK, -APPLY) of the
	// ship-year's entries.
	AvailableBalance(shipID string, year int) (float64, error)
}

// PoolRepository persists pools and their members.
type PoolRepository interface {
	// CreatePool stores a pool with its members in one transaction.
	CreatePool(year int, members []PoolMember) (*Pool, error)
	// FindByID returns a pool with its members, or nil if absent.
	FindByID(id int64) (*Pool, error)
	// FindByYear returns all pools created for a year.
	FindByYear(year int) ([]Pool, error)
}

// RouteRepository stores voyage route data.
type RouteRepository interface {
	// FindAll returns every route, baseline first.
	FindAll() ([]Route, error)
	// FindByRouteID returns the route with the given route ID, or nil.
	FindByRouteID(routeID string) (*Route, error)
	// FindBaseline returns the current baseline route, or nil.
	FindBaseline() (*Route, error)
	// SetBaseline atomically moves the baseline flag to the given route.
	// Fails with ErrNotFound if the route does not exist.
	SetBaseline(routeID string) error
}

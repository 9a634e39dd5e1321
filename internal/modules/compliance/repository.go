package compliance

import (
	"database/sql"
	"time"

	"github.com/rs/zerolog"
	"github.com/varuna/varuna/internal/domain"
)

// Repository handles compliance balance database operations
// Databases: compliance.db (ship_compliance table), ledger.db
// (bank_entries table, for the adjusted-CB query)
type Repository struct {
	db       *sql.DB // compliance.db
	ledgerDB *sql.DB // ledger.db
	log      zerolog.Logger
}

// NewRepository creates a new compliance repository
func NewRepository(db, ledgerDB *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:       db,
		ledgerDB: ledgerDB,
		log:      log.With().Str("repo", "compliance").Logger(),
	}
}

// Save upserts the balance keyed by (ship_id, year) and re-timestamps it.
func (r *Repository) Save(balance *domain.ComplianceBalance) (*domain.ComplianceBalance, error) {
	query := `
		INSERT INTO ship_compliance (ship_id, year, cb_gco2eq, computed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (ship_id, year)
		DO UPDATE SET cb_gco2eq = excluded.cb_gco2eq, computed_at = excluded.computed_at`

	computedAt := balance.ComputedAt
	if computedAt.IsZero() {
		computedAt = time.Now().UTC()
	}

	if _, err := r.db.Exec(query, balance.ShipID, balance.Year, balance.CBGramsCO2, computedAt.Unix()); err != nil {
		return nil, domain.Unavailablef("failed to save compliance balance: %v", err)
	}

	return r.FindByShipAndYear(balance.ShipID, balance.Year)
}

// FindByShipAndYear returns the stored balance, or nil if absent.
func (r *Repository) FindByShipAndYear(shipID string, year int) (*domain.ComplianceBalance, error) {
	query := `
		SELECT id, ship_id, year, cb_gco2eq, computed_at
		FROM ship_compliance
		WHERE ship_id = ? AND year = ?`

	var b domain.ComplianceBalance
	var computedAtUnix int64

	err := r.db.QueryRow(query, shipID, year).Scan(&b.ID, &b.ShipID, &b.Year, &b.CBGramsCO2, &computedAtUnix)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Unavailablef("failed to fetch compliance balance: %v", err)
	}

	b.ComputedAt = time.Unix(computedAtUnix, 0).UTC()
	return &b, nil
}

// AdjustedCB returns the stored balance plus the net effect of ledger
// entries: BANK entries are set aside (-), APPLY entries flow back (+).
// A ship-year with no stored balance reports 0 rather than failing; that
// is the documented default the pooling feed relies on.
func (r *Repository) AdjustedCB(shipID string, year int) (float64, error) {
	var storedCB float64
	err := r.db.QueryRow(
		"SELECT cb_gco2eq FROM ship_compliance WHERE ship_id = ? AND year = ?",
		shipID, year,
	).Scan(&storedCB)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, domain.Unavailablef("failed to fetch stored balance: %v", err)
	}

	var netAdjustment sql.NullFloat64
	err = r.ledgerDB.QueryRow(`
		SELECT SUM(CASE
			WHEN transaction_type = 'BANK' THEN -amount_gco2eq
			WHEN transaction_type = 'APPLY' THEN amount_gco2eq
			ELSE 0
		END)
		FROM bank_entries
		WHERE ship_id = ? AND year = ?`,
		shipID, year,
	).Scan(&netAdjustment)
	if err != nil {
		return 0, domain.Unavailablef("failed to compute ledger adjustment: %v", err)
	}

	return storedCB + netAdjustment.Float64, nil
}

var _ domain.ComplianceRepository = (*Repository)(nil)

// Package banking manages the append-only surplus banking ledger.
package banking

import (
	"database/sql"
	"time"

	"github.com/rs/zerolog"
	"github.com/varuna/varuna/internal/domain"
)

// Repository handles banking ledger database operations
// Database: ledger.db (bank_entries table, append-only)
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new banking repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "banking").Logger(),
	}
}

// Save appends a ledger entry. Entries are immutable once written.
func (r *Repository) Save(entry *domain.BankEntry) (*domain.BankEntry, error) {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := r.db.Exec(
		"INSERT INTO bank_entries (ship_id, year, amount_gco2eq, transaction_type, created_at) VALUES (?, ?, ?, ?, ?)",
		entry.ShipID, entry.Year, entry.AmountGramsCO2, string(entry.TransactionType), createdAt.Unix(),
	)
	if err != nil {
		return nil, domain.Unavailablef("failed to append ledger entry: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, domain.Unavailablef("failed to read ledger entry id: %v", err)
	}

	saved := *entry
	saved.ID = id
	saved.CreatedAt = createdAt
	return &saved, nil
}

// FindByShipAndYear returns the ship-year's entries, newest first.
func (r *Repository) FindByShipAndYear(shipID string, year int) ([]domain.BankEntry, error) {
	rows, err := r.db.Query(`
		SELECT id, ship_id, year, amount_gco2eq, transaction_type, created_at
		FROM bank_entries
		WHERE ship_id = ? AND year = ?
		ORDER BY created_at DESC, id DESC`,
		shipID, year,
	)
	if err != nil {
		return nil, domain.Unavailablef("failed to fetch ledger entries: %v", err)
	}
	defer rows.Close()

	var entries []domain.BankEntry
	for rows.Next() {
		var e domain.BankEntry
		var txType string
		var createdAtUnix int64
		if err := rows.Scan(&e.ID, &e.ShipID, &e.Year, &e.AmountGramsCO2, &txType, &createdAtUnix); err != nil {
			return nil, domain.Unavailablef("failed to scan ledger entry: %v", err)
		}
		e.TransactionType = domain.TransactionType(txType)
		e.CreatedAt = time.Unix(createdAtUnix, 0).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Unavailablef("failed to iterate ledger entries: %v", err)
	}

	return entries, nil
}

// AvailableBalance returns the signed sum (+BANK, -APPLY) of the
// ship-year's entries, 0 if there are none.
func (r *Repository) AvailableBalance(shipID string, year int) (float64, error) {
	var balance sql.NullFloat64
	err := r.db.QueryRow(`
		SELECT SUM(CASE
			WHEN transaction_type = 'BANK' THEN amount_gco2eq
			WHEN transaction_type = 'APPLY' THEN -amount_gco2eq
			ELSE 0
		END)
		FROM bank_entries
		WHERE ship_id = ? AND year = ?`,
		shipID, year,
	).Scan(&balance)
	if err != nil {
		return 0, domain.Unavailablef("failed to compute banked balance: %v", err)
	}

	return balance.Float64, nil
}

var _ domain.BankRepository = (*Repository)(nil)

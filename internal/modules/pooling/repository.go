package pooling

import (
	"database/sql"
	"time"

	"github.com/rs/zerolog"
	"github.com/varuna/varuna/internal/database"
	"github.com/varuna/varuna/internal/domain"
)

// Repository handles pool database operations
// Database: compliance.db (pools and pool_members tables)
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new pooling repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "pooling").Logger(),
	}
}

// CreatePool stores a pool with its members in one transaction.
func (r *Repository) CreatePool(year int, members []domain.PoolMember) (*domain.Pool, error) {
	var poolID int64
	createdAt := time.Now().UTC()

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		result, err := tx.Exec("INSERT INTO pools (year, created_at) VALUES (?, ?)", year, createdAt.Unix())
		if err != nil {
			return domain.Unavailablef("failed to insert pool: %v", err)
		}
		poolID, err = result.LastInsertId()
		if err != nil {
			return domain.Unavailablef("failed to read pool id: %v", err)
		}

		for _, m := range members {
			if _, err := tx.Exec(
				"INSERT INTO pool_members (pool_id, ship_id, cb_before, cb_after) VALUES (?, ?, ?, ?)",
				poolID, m.ShipID, m.CBBefore, m.CBAfter,
			); err != nil {
				return domain.Unavailablef("failed to insert pool member: %v", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &domain.Pool{
		ID:        poolID,
		Year:      year,
		Members:   members,
		CreatedAt: createdAt,
	}, nil
}

// FindByID returns a pool with its members, or nil if absent.
func (r *Repository) FindByID(id int64) (*domain.Pool, error) {
	var pool domain.Pool
	var createdAtUnix int64

	err := r.db.QueryRow("SELECT id, year, created_at FROM pools WHERE id = ?", id).
		Scan(&pool.ID, &pool.Year, &createdAtUnix)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Unavailablef("failed to fetch pool: %v", err)
	}
	pool.CreatedAt = time.Unix(createdAtUnix, 0).UTC()

	members, err := r.findMembers(pool.ID)
	if err != nil {
		return nil, err
	}
	pool.Members = members

	return &pool, nil
}

// FindByYear returns all pools created for a year, oldest first.
func (r *Repository) FindByYear(year int) ([]domain.Pool, error) {
	rows, err := r.db.Query("SELECT id, year, created_at FROM pools WHERE year = ? ORDER BY id ASC", year)
	if err != nil {
		return nil, domain.Unavailablef("failed to fetch pools: %v", err)
	}
	defer rows.Close()

	var pools []domain.Pool
	for rows.Next() {
		var pool domain.Pool
		var createdAtUnix int64
		if err := rows.Scan(&pool.ID, &pool.Year, &createdAtUnix); err != nil {
			return nil, domain.Unavailablef("failed to scan pool: %v", err)
		}
		pool.CreatedAt = time.Unix(createdAtUnix, 0).UTC()
		pools = append(pools, pool)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Unavailablef("failed to iterate pools: %v", err)
	}

	for i := range pools {
		members, err := r.findMembers(pools[i].ID)
		if err != nil {
			return nil, err
		}
		pools[i].Members = members
	}

	return pools, nil
}

// findMembers returns a pool's members in allocation order.
func (r *Repository) findMembers(poolID int64) ([]domain.PoolMember, error) {
	rows, err := r.db.Query(
		"SELECT ship_id, cb_before, cb_after FROM pool_members WHERE pool_id = ? ORDER BY id ASC",
		poolID,
	)
	if err != nil {
		return nil, domain.Unavailablef("failed to fetch pool members: %v", err)
	}
	defer rows.Close()

	var members []domain.PoolMember
	for rows.Next() {
		var m domain.PoolMember
		if err := rows.Scan(&m.ShipID, &m.CBBefore, &m.CBAfter); err != nil {
			return nil, domain.Unavailablef("failed to scan pool member: %v", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Unavailablef("failed to iterate pool members: %v", err)
	}

	return members, nil
}

var _ domain.PoolRepository = (*Repository)(nil)

// Package routes manages voyage route data and baseline comparisons.
package routes

import (
	"database/sql"
	"time"

	"github.com/rs/zerolog"
	"github.com/varuna/varuna/internal/database"
	"github.com/varuna/varuna/internal/domain"
)

// Repository handles route database operations
// Database: fleet.db (routes table)
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new route repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "routes").Logger(),
	}
}

const routeColumns = `id, route_id, vessel_type, fuel_type, year, ghg_intensity,
	fuel_consumption, distance, total_emissions, is_baseline, created_at`

// FindAll returns every route, baseline first, then by route ID.
func (r *Repository) FindAll() ([]domain.Route, error) {
	rows, err := r.db.Query(
		"SELECT " + routeColumns + " FROM routes ORDER BY is_baseline DESC, route_id ASC",
	)
	if err != nil {
		return nil, domain.Unavailablef("failed to fetch routes: %v", err)
	}
	defer rows.Close()

	var routes []domain.Route
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, *route)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Unavailablef("failed to iterate routes: %v", err)
	}

	return routes, nil
}

// FindByRouteID returns the route with the given route ID, or nil if absent.
func (r *Repository) FindByRouteID(routeID string) (*domain.Route, error) {
	row := r.db.QueryRow("SELECT "+routeColumns+" FROM routes WHERE route_id = ?", routeID)
	route, err := scanRoute(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return route, nil
}

// FindBaseline returns the current baseline route, or nil if none is set.
func (r *Repository) FindBaseline() (*domain.Route, error) {
	row := r.db.QueryRow("SELECT " + routeColumns + " FROM routes WHERE is_baseline = 1")
	route, err := scanRoute(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return route, nil
}

// SetBaseline moves the baseline flag to the given route in one
// transaction. The partial unique index on is_baseline guarantees at
// most one baseline survives.
func (r *Repository) SetBaseline(routeID string) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRow("SELECT COUNT(*) FROM routes WHERE route_id = ?", routeID).Scan(&exists)
		if err != nil {
			return domain.Unavailablef("failed to check route: %v", err)
		}
		if exists == 0 {
			return domain.NotFoundf("route %s not found", routeID)
		}

		if _, err := tx.Exec("UPDATE routes SET is_baseline = 0 WHERE is_baseline = 1"); err != nil {
			return domain.Unavailablef("failed to clear baseline: %v", err)
		}
		if _, err := tx.Exec("UPDATE routes SET is_baseline = 1 WHERE route_id = ?", routeID); err != nil {
			return domain.Unavailablef("failed to set baseline: %v", err)
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRoute(row rowScanner) (*domain.Route, error) {
	var route domain.Route
	var isBaseline int
	var createdAtUnix int64

	err := row.Scan(
		&route.ID,
		&route.RouteID,
		&route.VesselType,
		&route.FuelType,
		&route.Year,
		&route.GHGIntensity,
		&route.FuelConsumption,
		&route.Distance,
		&route.TotalEmissions,
		&isBaseline,
		&createdAtUnix,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, domain.Unavailablef("failed to scan route: %v", err)
	}

	route.IsBaseline = isBaseline == 1
	route.CreatedAt = time.Unix(createdAtUnix, 0).UTC()
	return &route, nil
}

var _ domain.RouteRepository = (*Repository)(nil)

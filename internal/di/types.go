// Package di wires Varuna's databases, repositories, services, and jobs.
package di

import (
	"github.com/varuna/varuna/internal/database"
	"github.com/varuna/varuna/internal/events"
	"github.com/varuna/varuna/internal/modules/analytics"
	"github.com/varuna/varuna/internal/modules/banking"
	"github.com/varuna/varuna/internal/modules/compliance"
	"github.com/varuna/varuna/internal/modules/pooling"
	"github.com/varuna/varuna/internal/modules/routes"
	"github.com/varuna/varuna/internal/reliability"
	"github.com/varuna/varuna/internal/scheduler"
)

// Container holds every wired component. Construction order runs
// databases, then repositories, then services, then jobs; Close tears
// the databases down in reverse.
type Container struct {
	// Databases
	FleetDB      *database.DB
	ComplianceDB *database.DB
	LedgerDB     *database.DB
	CacheDB      *database.DB
	Databases    map[string]*database.DB

	// Events
	EventManager *events.Manager

	// Repositories
	RouteRepo      *routes.Repository
	ComplianceRepo *compliance.Repository
	BankRepo       *banking.Repository
	PoolRepo       *pooling.Repository

	// Services
	ComplianceService *compliance.Service
	RoutesService     *routes.Service
	BankingService    *banking.Service
	PoolingService    *pooling.Service
	AnalyticsService  *analytics.Service

	// Background work
	Scheduler       *scheduler.Scheduler
	S3BackupService *reliability.S3BackupService
}

// Close releases all database connections.
func (c *Container) Close() {
	for _, db := range []*database.DB{c.CacheDB, c.LedgerDB, c.ComplianceDB, c.FleetDB} {
		if db != nil {
			_ = db.Close()
		}
	}
}

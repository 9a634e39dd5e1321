package di

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/varuna/varuna/internal/config"
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

const fleetStatsTTL = 5 * time.Minute

// New builds the full container from configuration.
func New(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	c := &Container{}

	if err := c.openDatabases(cfg, log); err != nil {
		c.Close()
		return nil, err
	}

	c.EventManager = events.NewManager(log)

	c.wireRepositories(log)
	c.wireServices(log)

	if err := c.wireJobs(cfg, log); err != nil {
		c.Close()
		return nil, err
	}

	return c, nil
}

// openDatabases opens, migrates, and seeds the four databases.
func (c *Container) openDatabases(cfg *config.Config, log zerolog.Logger) error {
	open := func(name string, profile database.Profile) (*database.DB, error) {
		db, err := database.New(database.Config{
			Path:    filepath.Join(cfg.DataDir, name+".db"),
			Profile: profile,
			Name:    name,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open %s database: %w", name, err)
		}
		if err := db.Migrate(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate %s database: %w", name, err)
		}
		return db, nil
	}

	var err error
	if c.FleetDB, err = open("fleet", database.ProfileStandard); err != nil {
		return err
	}
	if c.ComplianceDB, err = open("compliance", database.ProfileStandard); err != nil {
		return err
	}
	if c.LedgerDB, err = open("ledger", database.ProfileLedger); err != nil {
		return err
	}
	if c.CacheDB, err = open("cache", database.ProfileCache); err != nil {
		return err
	}

	if err := c.FleetDB.SeedIfEmpty("routes", "fleet_seed.sql"); err != nil {
		return fmt.Errorf("failed to seed fleet database: %w", err)
	}

	c.Databases = map[string]*database.DB{
		"fleet":      c.FleetDB,
		"compliance": c.ComplianceDB,
		"ledger":     c.LedgerDB,
		"cache":      c.CacheDB,
	}

	log.Info().Str("data_dir", cfg.DataDir).Msg("Databases ready")
	return nil
}

func (c *Container) wireRepositories(log zerolog.Logger) {
	c.RouteRepo = routes.NewRepository(c.FleetDB.Conn(), log)
	c.ComplianceRepo = compliance.NewRepository(c.ComplianceDB.Conn(), c.LedgerDB.Conn(), log)
	c.BankRepo = banking.NewRepository(c.LedgerDB.Conn(), log)
	c.PoolRepo = pooling.NewRepository(c.ComplianceDB.Conn(), log)
}

func (c *Container) wireServices(log zerolog.Logger) {
	c.ComplianceService = compliance.NewService(
		compliance.NewCalculator(),
		c.ComplianceRepo,
		c.RouteRepo,
		c.EventManager,
		log,
	)
	c.RoutesService = routes.NewService(
		c.RouteRepo,
		routes.NewComparisonCalculator(),
		c.EventManager,
		log,
	)
	c.BankingService = banking.NewService(
		c.BankRepo,
		c.ComplianceRepo,
		c.EventManager,
		log,
	)
	c.PoolingService = pooling.NewService(
		pooling.NewAllocator(),
		c.PoolRepo,
		c.ComplianceRepo,
		c.EventManager,
		log,
	)
	c.AnalyticsService = analytics.NewService(
		c.RouteRepo,
		analytics.NewSnapshotCache(c.CacheDB.Conn(), fleetStatsTTL, log),
		log,
	)
}

// wireJobs builds the scheduler and registers all background jobs. Jobs
// are always registered so manual triggers work; whether the cron loop
// runs is the caller's decision.
func (c *Container) wireJobs(cfg *config.Config, log zerolog.Logger) error {
	c.Scheduler = scheduler.New(log)

	recompute := scheduler.NewRecomputeBalancesJob(c.RouteRepo, c.ComplianceRepo, c.ComplianceService, log)
	if err := c.Scheduler.AddJob(cfg.RecomputeSchedule, recompute); err != nil {
		return fmt.Errorf("failed to register recompute job: %w", err)
	}

	maintenance := scheduler.NewDBMaintenanceJob(c.Databases, log)
	if err := c.Scheduler.AddJob(cfg.MaintenanceSchedule, maintenance); err != nil {
		return fmt.Errorf("failed to register maintenance job: %w", err)
	}

	if cfg.Backup.Enabled {
		s3Client, err := reliability.NewS3Client(context.Background(), cfg.Backup, log)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}

		c.S3BackupService = reliability.NewS3BackupService(
			s3Client,
			reliability.NewBackupService(c.Databases, log),
			cfg.DataDir,
			log,
		)

		backup := scheduler.NewS3BackupJob(c.S3BackupService, cfg.Backup.Retention, log)
		if err := c.Scheduler.AddJob(cfg.BackupSchedule, backup); err != nil {
			return fmt.Errorf("failed to register backup job: %w", err)
		}
	}

	return nil
}

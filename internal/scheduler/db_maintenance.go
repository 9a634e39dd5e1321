package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/varuna/varuna/internal/database"
)

// DBMaintenanceJob keeps the SQLite databases healthy: quick integrity
// checks, WAL checkpoints to prevent bloat, and a VACUUM of the
// disposable cache database.
type DBMaintenanceJob struct {
	databases map[string]*database.DB
	log       zerolog.Logger
}

// NewDBMaintenanceJob creates a new maintenance job
func NewDBMaintenanceJob(databases map[string]*database.DB, log zerolog.Logger) *DBMaintenanceJob {
	return &DBMaintenanceJob{
		databases: databases,
		log:       log.With().Str("job", "db_maintenance").Logger(),
	}
}

// Run executes the maintenance job
func (j *DBMaintenanceJob) Run() error {
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for name, db := range j.databases {
		if err := db.QuickCheck(ctx); err != nil {
			j.log.Error().
				Str("database", name).
				Err(err).
				Msg("Quick check failed")
			return err
		}

		if err := db.WALCheckpoint("TRUNCATE"); err != nil {
			// Checkpoint contention is transient, the next run catches up
			j.log.Warn().
				Str("database", name).
				Err(err).
				Msg("WAL checkpoint failed")
		}
	}

	// The cache database is the only one that churns enough to need it
	if cacheDB, ok := j.databases["cache"]; ok {
		if err := cacheDB.Vacuum(); err != nil {
			j.log.Warn().Err(err).Msg("Cache VACUUM failed")
		}
	}

	j.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Msg("Database maintenance completed")

	return nil
}

// Name returns the job name for scheduler
func (j *DBMaintenanceJob) Name() string {
	return "db_maintenance"
}

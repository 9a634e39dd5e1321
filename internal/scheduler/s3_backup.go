package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/varuna/varuna/internal/reliability"
)

// S3BackupJob archives the databases to object storage and prunes old
// archives.
type S3BackupJob struct {
	backupService *reliability.S3BackupService
	retain        int
	log           zerolog.Logger
}

// NewS3BackupJob creates a new S3 backup job
func NewS3BackupJob(backupService *reliability.S3BackupService, retain int, log zerolog.Logger) *S3BackupJob {
	return &S3BackupJob{
		backupService: backupService,
		retain:        retain,
		log:           log.With().Str("job", "s3_backup").Logger(),
	}
}

// Run executes the backup job
func (j *S3BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	if err := j.backupService.CreateAndUploadBackup(ctx); err != nil {
		return err
	}

	if err := j.backupService.RotateOldBackups(ctx, j.retain); err != nil {
		// Rotation failure only costs storage, never the fresh backup
		j.log.Warn().Err(err).Msg("Backup rotation failed")
	}

	return nil
}

// Name returns the job name for scheduler
func (j *S3BackupJob) Name() string {
	return "s3_backup"
}

package analytics

import (
	"database/sql"
	"time"

	"github.com/rs/zerolog"
	"github.com/varuna/varuna/internal/domain"
	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotCache stores computed analytics snapshots in the cache
// database, msgpack-encoded. Entries expire by age; the cache database
// is disposable, so a wiped cache only costs a recomputation.
type SnapshotCache struct {
	db  *sql.DB
	ttl time.Duration
	log zerolog.Logger
}

// NewSnapshotCache creates a new snapshot cache
func NewSnapshotCache(db *sql.DB, ttl time.Duration, log zerolog.Logger) *SnapshotCache {
	return &SnapshotCache{
		db:  db,
		ttl: ttl,
		log: log.With().Str("component", "snapshot_cache").Logger(),
	}
}

// Get loads a cached snapshot into dest. Returns false on a miss or an
// expired entry.
func (c *SnapshotCache) Get(key string, dest interface{}) (bool, error) {
	var payload []byte
	var createdAtUnix int64

	err := c.db.QueryRow(
		"SELECT payload, created_at FROM analytics_snapshots WHERE cache_key = ?", key,
	).Scan(&payload, &createdAtUnix)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, domain.Unavailablef("failed to read snapshot cache: %v", err)
	}

	if time.Since(time.Unix(createdAtUnix, 0)) > c.ttl {
		return false, nil
	}

	if err := msgpack.Unmarshal(payload, dest); err != nil {
		// A corrupt entry is treated as a miss and overwritten on the
		// next Put.
		c.log.Warn().Err(err).Str("key", key).Msg("Discarding undecodable snapshot")
		return false, nil
	}

	return true, nil
}

// Put stores a snapshot under the given key, replacing any prior entry.
func (c *SnapshotCache) Put(key string, value interface{}) error {
	payload, err := msgpack.Marshal(value)
	if err != nil {
		return domain.Unavailablef("failed to encode snapshot: %v", err)
	}

	_, err = c.db.Exec(`
		INSERT INTO analytics_snapshots (cache_key, payload, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (cache_key)
		DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`,
		key, payload, time.Now().Unix(),
	)
	if err != nil {
		return domain.Unavailablef("failed to write snapshot cache: %v", err)
	}
	return nil
}

// Purge removes entries older than the TTL.
func (c *SnapshotCache) Purge() error {
	cutoff := time.Now().Add(-c.ttl).Unix()
	if _, err := c.db.Exec("DELETE FROM analytics_snapshots WHERE created_at < ?", cutoff); err != nil {
		return domain.Unavailablef("failed to purge snapshot cache: %v", err)
	}
	return nil
}

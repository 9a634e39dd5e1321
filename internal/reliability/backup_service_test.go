package reliability

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varuna/varuna/internal/database"
)

func testDatabases(t *testing.T) map[string]*database.DB {
	t.Helper()

	dir := t.TempDir()
	dbs := make(map[string]*database.DB)
	for name, profile := range map[string]database.Profile{
		"fleet":      database.ProfileStandard,
		"compliance": database.ProfileStandard,
		"ledger":     database.ProfileLedger,
		"cache":      database.ProfileCache,
	} {
		db, err := database.New(database.Config{
			Path:    filepath.Join(dir, name+".db"),
			Profile: profile,
			Name:    name,
		})
		require.NoError(t, err)
		require.NoError(t, db.Migrate())
		t.Cleanup(func() { db.Close() })
		dbs[name] = db
	}
	return dbs
}

func TestBackupService_DatabaseNames(t *testing.T) {
	svc := NewBackupService(testDatabases(t), zerolog.Nop())

	// Sorted, and the recomputable cache database is excluded
	assert.Equal(t, []string{"compliance", "fleet", "ledger"}, svc.DatabaseNames())
}

func TestBackupService_BackupDatabase(t *testing.T) {
	dbs := testDatabases(t)
	svc := NewBackupService(dbs, zerolog.Nop())

	_, err := dbs["ledger"].Exec(
		"INSERT INTO bank_entries (ship_id, year, amount_gco2eq, transaction_type) VALUES (?, ?, ?, ?)",
		"R001", 2024, 500.0, "BANK",
	)
	require.NoError(t, err)

	backupPath := filepath.Join(t.TempDir(), "ledger.db")
	require.NoError(t, svc.BackupDatabase("ledger", backupPath))

	// The copy is standalone and carries the data
	copyDB, err := sql.Open("sqlite", backupPath)
	require.NoError(t, err)
	defer copyDB.Close()

	var count int
	require.NoError(t, copyDB.QueryRow("SELECT COUNT(*) FROM bank_entries").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestBackupService_UnknownDatabase(t *testing.T) {
	svc := NewBackupService(testDatabases(t), zerolog.Nop())

	err := svc.BackupDatabase("nope", filepath.Join(t.TempDir(), "nope.db"))
	assert.Error(t, err)
}

package pooling

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varuna/varuna/internal/database"
	"github.com/varuna/varuna/internal/domain"
	"github.com/varuna/varuna/internal/events"
	"github.com/varuna/varuna/internal/modules/compliance"
)

type fixture struct {
	service        *Service
	repo           *Repository
	complianceRepo domain.ComplianceRepository
	ledgerDB       *database.DB
	manager        *events.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	complianceDB, err := database.New(database.Config{
		Path:    fmt.Sprintf("file:%s_compliance?mode=memory&cache=shared", t.Name()),
		Profile: database.ProfileStandard,
		Name:    "compliance",
	})
	require.NoError(t, err)
	require.NoError(t, complianceDB.Migrate())
	t.Cleanup(func() { _ = complianceDB.Close() })

	ledgerDB, err := database.New(database.Config{
		Path:    fmt.Sprintf("file:%s_ledger?mode=memory&cache=shared", t.Name()),
		Profile: database.ProfileLedger,
		Name:    "ledger",
	})
	require.NoError(t, err)
	require.NoError(t, ledgerDB.Migrate())
	t.Cleanup(func() { _ = ledgerDB.Close() })

	complianceRepo := compliance.NewRepository(complianceDB.Conn(), ledgerDB.Conn(), zerolog.Nop())
	poolRepo := NewRepository(complianceDB.Conn(), zerolog.Nop())
	manager := events.NewManager(zerolog.Nop())

	return &fixture{
		service:        NewService(NewAllocator(), poolRepo, complianceRepo, manager, zerolog.Nop()),
		repo:           poolRepo,
		complianceRepo: complianceRepo,
		ledgerDB:       ledgerDB,
		manager:        manager,
	}
}

func (f *fixture) storeBalance(t *testing.T, shipID string, year int, cb float64) {
	t.Helper()
	balance, err := domain.NewComplianceBalance(shipID, year, cb, time.Now().UTC())
	require.NoError(t, err)
	_, err = f.complianceRepo.Save(balance)
	require.NoError(t, err)
}

func TestService_CreatePool(t *testing.T) {
	t.Run("allocates and persists", func(t *testing.T) {
		f := newFixture(t)
		f.storeBalance(t, "R001", 2024, 150)
		f.storeBalance(t, "R002", 2024, -30)
		f.storeBalance(t, "R003", 2024, -80)

		result, err := f.service.CreatePool(2024, []string{"R001", "R002", "R003"})
		require.NoError(t, err)

		assert.Equal(t, 40.0, result.TotalCBBefore)
		assert.Equal(t, 40.0, result.TotalCBAfter)
		require.Len(t, result.Pool.Members, 3)
		assert.Equal(t, 40.0, result.Pool.Members[0].CBAfter)
		assert.Equal(t, 0.0, result.Pool.Members[1].CBAfter)
		assert.Equal(t, 0.0, result.Pool.Members[2].CBAfter)

		stored, err := f.service.GetPool(result.Pool.ID)
		require.NoError(t, err)
		assert.Equal(t, result.Pool.Members, stored.Members)
	})

	t.Run("ships without balances enter at zero", func(t *testing.T) {
		f := newFixture(t)
		f.storeBalance(t, "R001", 2024, 100)

		result, err := f.service.CreatePool(2024, []string{"R001", "R404"})
		require.NoError(t, err)
		assert.Equal(t, 100.0, result.TotalCBBefore)
	})

	t.Run("uses adjusted balances", func(t *testing.T) {
		f := newFixture(t)
		f.storeBalance(t, "R001", 2024, 1000)
		f.storeBalance(t, "R002", 2024, -100)

		// Bank 600 of R001's surplus; the pool sees only 400
		_, err := f.ledgerDB.Exec(
			"INSERT INTO bank_entries (ship_id, year, amount_gco2eq, transaction_type) VALUES (?, ?, ?, ?)",
			"R001", 2024, 600.0, "BANK",
		)
		require.NoError(t, err)

		result, err := f.service.CreatePool(2024, []string{"R001", "R002"})
		require.NoError(t, err)
		assert.Equal(t, 300.0, result.TotalCBBefore)
	})

	t.Run("negative pooled total is rejected before allocation", func(t *testing.T) {
		f := newFixture(t)
		f.storeBalance(t, "R001", 2024, 50)
		f.storeBalance(t, "R002", 2024, -80)

		_, err := f.service.CreatePool(2024, []string{"R001", "R002"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrRuleViolation)

		pools, err := f.service.ListPools(2024)
		require.NoError(t, err)
		assert.Empty(t, pools)
	})

	t.Run("duplicate ships are rejected", func(t *testing.T) {
		f := newFixture(t)
		f.storeBalance(t, "R001", 2024, 100)

		_, err := f.service.CreatePool(2024, []string{"R001", "R001"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("empty ship list is rejected", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.service.CreatePool(2024, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("emits PoolCreated", func(t *testing.T) {
		f := newFixture(t)
		f.storeBalance(t, "R001", 2024, 100)
		f.storeBalance(t, "R002", 2024, -40)

		ch, unsubscribe := f.manager.Subscribe()
		defer unsubscribe()

		_, err := f.service.CreatePool(2024, []string{"R001", "R002"})
		require.NoError(t, err)

		ev := <-ch
		assert.Equal(t, events.PoolCreated, ev.Type)
		assert.Equal(t, "pooling", ev.Module)
	})
}

func TestService_GetPool(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.GetPool(999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_ListPools(t *testing.T) {
	f := newFixture(t)
	f.storeBalance(t, "R001", 2024, 100)
	f.storeBalance(t, "R002", 2024, -40)
	f.storeBalance(t, "R003", 2025, 60)
	f.storeBalance(t, "R004", 2025, -10)

	_, err := f.service.CreatePool(2024, []string{"R001", "R002"})
	require.NoError(t, err)
	_, err = f.service.CreatePool(2025, []string{"R003", "R004"})
	require.NoError(t, err)

	pools2024, err := f.service.ListPools(2024)
	require.NoError(t, err)
	require.Len(t, pools2024, 1)
	assert.Equal(t, 2024, pools2024[0].Year)
	assert.Len(t, pools2024[0].Members, 2)

	pools2026, err := f.service.ListPools(2026)
	require.NoError(t, err)
	assert.Empty(t, pools2026)
}

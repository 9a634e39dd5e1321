package banking

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/varuna/varuna/internal/domain"
	"github.com/varuna/varuna/internal/events"
)

// BankResult is the outcome of banking surplus balance.
type BankResult struct {
	Entry       *domain.BankEntry `json:"entry"`
	AvailableCB float64           `json:"availableCbGco2eq"`
	RemainingCB float64           `json:"remainingCbGco2eq"`
}

// ApplyResult is the outcome of applying banked surplus.
type ApplyResult struct {
	Entry           *domain.BankEntry `json:"entry"`
	AvailableBanked float64           `json:"availableBankedGco2eq"`
	RemainingBanked float64           `json:"remainingBankedGco2eq"`
	CBBefore        float64           `json:"cbBefore"`
	CBAfter         float64           `json:"cbAfter"`
}

// Service enforces the banking rules over the ledger.
//
// Bank sets surplus aside by appending a ledger entry; it never touches
// the stored balance. Apply does both: it appends the consuming entry
// and adds the amount onto the stored balance. Reads that want the
// effective balance must go through AdjustedCB, which folds the ledger
// back in.
type Service struct {
	bankRepo       domain.BankRepository
	complianceRepo domain.ComplianceRepository
	eventManager   *events.Manager
	log            zerolog.Logger
}

// NewService creates a new banking service
func NewService(
	bankRepo domain.BankRepository,
	complianceRepo domain.ComplianceRepository,
	eventManager *events.Manager,
	log zerolog.Logger,
) *Service {
	return &Service{
		bankRepo:       bankRepo,
		complianceRepo: complianceRepo,
		eventManager:   eventManager,
		log:            log.With().Str("service", "banking").Logger(),
	}
}

// Records returns the ship-year's ledger entries, newest first.
func (s *Service) Records(shipID string, year int) ([]domain.BankEntry, error) {
	if err := domain.ValidateShipID(shipID); err != nil {
		return nil, err
	}
	if err := domain.ValidateYear(year); err != nil {
		return nil, err
	}
	return s.bankRepo.FindByShipAndYear(shipID, year)
}

// AvailableBanked returns the net banked balance still open to apply.
func (s *Service) AvailableBanked(shipID string, year int) (float64, error) {
	if err := domain.ValidateShipID(shipID); err != nil {
		return 0, err
	}
	if err := domain.ValidateYear(year); err != nil {
		return 0, err
	}
	return s.bankRepo.AvailableBalance(shipID, year)
}

// Bank sets aside surplus compliance balance for later use. The amount
// is capped by the stored balance; earlier banking does not reduce the
// cap, only the adjusted-CB view reflects it.
func (s *Service) Bank(shipID string, year int, amount float64) (*BankResult, error) {
	if err := domain.ValidateShipID(shipID); err != nil {
		return nil, err
	}
	if err := domain.ValidateYear(year); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, domain.InvalidInputf("bank amount must be positive, got %v", amount)
	}

	balance, err := s.complianceRepo.FindByShipAndYear(shipID, year)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		return nil, domain.NotFoundf("no compliance balance for ship %s year %d", shipID, year)
	}

	availableCB := balance.CBGramsCO2
	if availableCB <= 0 {
		return nil, domain.RuleViolationf("cannot bank a non-positive compliance balance (%v)", availableCB)
	}
	if amount > availableCB {
		return nil, domain.RuleViolationf("cannot bank %v: only %v available", amount, availableCB)
	}

	entry, err := domain.NewBankEntry(shipID, year, amount, domain.TransactionBank, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	saved, err := s.bankRepo.Save(entry)
	if err != nil {
		return nil, err
	}

	remaining := availableCB - amount
	s.eventManager.Emit(events.SurplusBanked, "banking", events.SurplusBankedData{
		ShipID:      shipID,
		Year:        year,
		Amount:      amount,
		RemainingCB: remaining,
	})

	return &BankResult{
		Entry:       saved,
		AvailableCB: availableCB,
		RemainingCB: remaining,
	}, nil
}

// Apply consumes banked surplus, adding it onto the stored compliance
// balance. The amount is capped by the net banked balance.
func (s *Service) Apply(shipID string, year int, amount float64) (*ApplyResult, error) {
	if err := domain.ValidateShipID(shipID); err != nil {
		return nil, err
	}
	if err := domain.ValidateYear(year); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, domain.InvalidInputf("apply amount must be positive, got %v", amount)
	}

	balance, err := s.complianceRepo.FindByShipAndYear(shipID, year)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		return nil, domain.NotFoundf("no compliance balance for ship %s year %d", shipID, year)
	}

	availableBanked, err := s.bankRepo.AvailableBalance(shipID, year)
	if err != nil {
		return nil, err
	}
	if amount > availableBanked {
		return nil, domain.RuleViolationf("cannot apply %v: only %v banked", amount, availableBanked)
	}

	cbBefore := balance.CBGramsCO2
	cbAfter := cbBefore + amount

	entry, err := domain.NewBankEntry(shipID, year, amount, domain.TransactionApply, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	saved, err := s.bankRepo.Save(entry)
	if err != nil {
		return nil, err
	}

	// Ledger and balance live in separate database files, so the pair of
	// writes is sequential, not atomic. The ledger entry lands first; a
	// crash between the writes leaves the balance recoverable from it.
	updated, err := domain.NewComplianceBalance(shipID, year, cbAfter, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if _, err := s.complianceRepo.Save(updated); err != nil {
		return nil, err
	}

	remaining := availableBanked - amount
	s.eventManager.Emit(events.BankedApplied, "banking", events.BankedAppliedData{
		ShipID:   shipID,
		Year:     year,
		Amount:   amount,
		CBBefore: cbBefore,
		CBAfter:  cbAfter,
	})

	return &ApplyResult{
		Entry:           saved,
		AvailableBanked: availableBanked,
		RemainingBanked: remaining,
		CBBefore:        cbBefore,
		CBAfter:         cbAfter,
	}, nil
}

package domain

import "time"

// TransactionType distinguishes the two ledger operations.
type TransactionType string

const (
	// TransactionBank records a commitment to hold surplus balance.
	TransactionBank TransactionType = "BANK"
	// TransactionApply consumes previously banked surplus.
	TransactionApply TransactionType = "APPLY"
)

// BankEntry is one immutable row of the banking ledger. Entries are
// append-only; the net banked balance for a ship-year is the signed sum
// (+BANK, -APPLY) over its entries.
type BankEntry struct {
	ID              int64           `json:"id,omitempty"`
	ShipID          string          `json:"shipId"`
	Year            int             `json:"year"`
	AmountGramsCO2  float64         `json:"amountGco2eq"`
	TransactionType TransactionType `json:"transactionType"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// NewBankEntry validates and constructs a ledger entry.
func NewBankEntry(shipID string, year int, amount float64, txType TransactionType, createdAt time.Time) (*BankEntry, error) {
	if err := ValidateShipID(shipID); err != nil {
		return nil, err
	}
	if err := ValidateYear(year); err != nil {
		return nil, err
	}
	if txType != TransactionBank && txType != TransactionApply {
		return nil, InvalidInputf("transaction type must be BANK or APPLY, got %q", txType)
	}
	if amount <= 0 {
		return nil, InvalidInputf("%s amount must be positive, got %v", txType, amount)
	}
	return &BankEntry{
		ShipID:          shipID,
		Year:            year,
		AmountGramsCO2:  amount,
		TransactionType: txType,
		CreatedAt:       createdAt,
	}, nil
}

// IsBank reports whether the entry records a banking commitment.
func (e *BankEntry) IsBank() bool {
	return e.TransactionType == TransactionBank
}

// IsApply reports whether the entry consumes banked balance.
func (e *BankEntry) IsApply() bool {
	return e.TransactionType == TransactionApply
}

// SignedAmount is the entry's contribution to the net banked balance.
func (e *BankEntry) SignedAmount() float64 {
	if e.TransactionType == TransactionApply {
		return -e.AmountGramsCO2
	}
	return e.AmountGramsCO2
}

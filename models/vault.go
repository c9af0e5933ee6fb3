package models

import "time"

// VaultState is the single-row state of the funds vault. A ceiling of zero
// disables the per-payout limit.
type VaultState struct {
	Balance       int64     `db:"balance"`
	PayoutCeiling int64     `db:"payout_ceiling"`
	Paused        bool      `db:"paused"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// OperationType tags entries in the vault's append-only operations ledger.
type OperationType string

const (
	OperationDeposit       OperationType = "deposit"
	OperationPayout        OperationType = "payout"
	OperationAdminWithdraw OperationType = "admin_withdraw"
)

// VaultOperation is one ledger entry: a deposit into or a payout out of the
// vault. CallerID is the component that moved the funds, Counterparty the
// external account on the other side.
type VaultOperation struct {
	ID           int64         `db:"id"`
	Kind         OperationType `db:"kind"`
	CallerID     string        `db:"caller_id"`
	Counterparty string        `db:"counterparty"`
	Amount       int64         `db:"amount"`
	CreatedAt    time.Time     `db:"created_at"`
}

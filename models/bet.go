package models

import "time"

// Bet represents a single dice bet. Bets are never deleted; settled bets stay
// as the player's immutable history.
type Bet struct {
	ID        int64      `db:"id"`
	Player    string     `db:"player"`
	Amount    int64      `db:"amount"`
	Choice    int        `db:"choice"`
	Rolled    *int       `db:"rolled"` // nil until settlement
	Payout    int64      `db:"payout"`
	Status    Status     `db:"status"`
	RequestID *string    `db:"request_id"`
	CreatedAt time.Time  `db:"created_at"`
	SettledAt *time.Time `db:"settled_at"`
}

// Won reports whether the settled bet paid out.
func (b *Bet) Won() bool {
	return b.Status == StatusSettled && b.Payout > 0
}

// BetReceipt is returned to the player when a bet is placed. The request id
// lets the caller correlate the eventual settlement.
type BetReceipt struct {
	BetID     int64
	RequestID string
	Amount    int64
	Choice    int
}

package models

import "time"

// Round represents one raffle round. At most one round is ever open or
// awaiting randomness; settling a round always creates its successor.
type Round struct {
	ID           int64      `db:"id"`
	Status       Status     `db:"status"`
	StartedAt    time.Time  `db:"started_at"`
	Pot          int64      `db:"pot"`
	Winner       *string    `db:"winner"`        // nil until settlement
	WinningIndex *int       `db:"winning_index"` // index into the entry list
	RequestID    *string    `db:"request_id"`
	CreatedAt    time.Time  `db:"created_at"`
	SettledAt    *time.Time `db:"settled_at"`
}

// RoundEntry is one paid entry into a round. The same player may hold several
// entries; insertion order is entry order and is what the winning index
// selects over.
type RoundEntry struct {
	ID        int64     `db:"id"`
	RoundID   int64     `db:"round_id"`
	Player    string    `db:"player"`
	Amount    int64     `db:"amount"`
	CreatedAt time.Time `db:"created_at"`
}

// RoundInfo bundles a round with its ordered entry list for display.
type RoundInfo struct {
	Round   *Round
	Entries []*RoundEntry
}

// TriggerCheck is the result of the read-only trigger probe.
type TriggerCheck struct {
	Ready    bool
	Status   Status
	Entrants int
	Pot      int64
	Elapsed  time.Duration
}

package models

import "time"

// RandomnessRequest is a pending entry in the router's correlation table.
// Each request id is written at most once and consumed (deleted) at most
// once, inside the settlement transaction it unlocks.
type RandomnessRequest struct {
	RequestID string    `db:"request_id"`
	Consumer  string    `db:"consumer"`
	CreatedAt time.Time `db:"created_at"`
}

// OracleRequest is the fixed request record forwarded to the oracle. The
// confirmation depth and gas budget are deployment-time constants; they fix
// the protocol's latency/cost profile and are not negotiable per call.
type OracleRequest struct {
	KeyID          string `json:"key_id"`
	SubscriptionID string `json:"subscription_id"`
	Confirmations  int    `json:"confirmations"`
	GasBudget      uint64 `json:"gas_budget"`
	WordCount      int    `json:"word_count"`
	PaymentMode    string `json:"payment_mode"`
}

package pool

import "time"

// Params carries the chain parameters spec §9 treats as injected
// constants rather than baked-in literals. Defaults match the values
// the original Dash mainnet deployment used.
type Params struct {
	MinParticipants     int
	MaxParticipants     int
	MaxPoolTransactions int
	MinProtoVersion     int32

	QueueTimeout   time.Duration
	SigningTimeout time.Duration
	AdvertExpiry   time.Duration
}

// DefaultParams returns the spec §9-confirmed defaults: MIN_PARTICIPANTS=3,
// MAX_PARTICIPANTS=5, MAX_POOL_TRANSACTIONS=3, timeouts per §5.
func DefaultParams() Params {
	return Params{
		MinParticipants:     3,
		MaxParticipants:     5,
		MaxPoolTransactions: 3,
		MinProtoVersion:     70208,
		QueueTimeout:        30 * time.Second,
		SigningTimeout:      15 * time.Second,
		AdvertExpiry:        30 * time.Second,
	}
}

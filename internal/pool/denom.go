package pool

// Standard denomination catalogue, grounded on
// CPrivateSend::GetStandardDenominations: a descending ladder of
// amounts expressed in satoshi-equivalent units, each 10x the next
// down to 0.001 coin, then a final 0.00001 coin denomination.
const (
	coin            int64 = 100_000_000
	denom10         int64 = 10 * coin
	denom1          int64 = 1 * coin
	denomP1         int64 = coin / 10
	denomP01        int64 = coin / 100
	denomP001       int64 = coin / 1000
	denomP00001     int64 = coin / 100000
	participantMax        = ParticipantMaxInputs
)

// standardDenominations is ordered highest to lowest, matching the
// original's GetStandardDenominations ordering used for
// GetDenominationsByAmounts lookups.
var standardDenominations = []int64{
	denom10, denom1, denomP1, denomP01, denomP001, denomP00001,
}

// StandardDenominations is the default collab.Denominations
// implementation: a small, static catalogue, reference-supplied
// because (unlike the registry or mempool) it requires no external
// state to answer.
type StandardDenominations struct{}

func (StandardDenominations) IsValid(amount int64) bool {
	for _, d := range standardDenominations {
		if d == amount {
			return true
		}
	}
	return false
}

// MaxPoolAmount mirrors CPrivateSend::GetMaxPoolAmount:
// PARTICIPANT_MAX_INPUTS times the largest denomination.
func (StandardDenominations) MaxPoolAmount() int64 {
	return int64(participantMax) * standardDenominations[0]
}

// DefaultCollateralAmount mirrors CPrivateSend::GetCollateralAmount:
// COLLATERAL = 0.001 COIN.
const DefaultCollateralAmount = coin / 1000

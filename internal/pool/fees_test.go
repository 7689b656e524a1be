package pool

import (
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/opencoinjoin/coordinator/internal/collab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRand makes ChargeFees/ChargeRandomFees deterministic: every
// Intn call returns the configured value, Shuffle is a no-op.
type fixedRand struct {
	n int
}

func (f fixedRand) Intn(n int) int                   { return f.n }
func (f fixedRand) Shuffle(n int, swap func(i, j int)) {}

func collateralWith(v int64) CollateralTx {
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxOut(wire.NewTxOut(v, []byte("c")))
	return CollateralTx{Tx: tx}
}

func TestChargeFeesNoOffendersReturnsNil(t *testing.T) {
	s := &Session{
		Phase:           PhaseAcceptingEntries,
		Collaterals:     []CollateralTx{collateralWith(1), collateralWith(2)},
		collateralOwner: []string{"a", "b"},
		Entries:         []*Entry{{PeerAddr: "a"}, {PeerAddr: "b"}},
	}
	var rand collab.RandSource = fixedRand{n: 0}
	assert.Nil(t, s.ChargeFees(rand))
}

func TestChargeFeesAllOffendersNoCharge(t *testing.T) {
	s := &Session{
		Phase:           PhaseAcceptingEntries,
		Collaterals:     []CollateralTx{collateralWith(1), collateralWith(2)},
		collateralOwner: []string{"a", "b"},
	}
	// n=0 means "proceed" (skip the 2/3 no-op), but everyone is an
	// offender so the second probabilistic gate also proceeds (n=0),
	// landing on the "everyone uncooperative" no-charge branch.
	var rand collab.RandSource = fixedRand{n: 0}
	assert.Nil(t, s.ChargeFees(rand))
}

func TestChargeFeesOneOffenderConsumed(t *testing.T) {
	s := &Session{
		Phase:           PhaseAcceptingEntries,
		Collaterals:     []CollateralTx{collateralWith(1), collateralWith(2), collateralWith(3)},
		collateralOwner: []string{"a", "b", "c"},
		Entries:         []*Entry{{PeerAddr: "a"}, {PeerAddr: "b"}},
	}
	var rand collab.RandSource = fixedRand{n: 0}
	consumed := s.ChargeFees(rand)
	require.NotNil(t, consumed)
	assert.Equal(t, int64(3), consumed.Tx.TxOut[0].Value)
}

func TestChargeFeesSkipProbability(t *testing.T) {
	s := &Session{
		Phase:           PhaseAcceptingEntries,
		Collaterals:     []CollateralTx{collateralWith(1), collateralWith(2), collateralWith(3)},
		collateralOwner: []string{"a", "b", "c"},
		Entries:         []*Entry{{PeerAddr: "a"}, {PeerAddr: "b"}},
	}
	var rand collab.RandSource = fixedRand{n: 1}
	assert.Nil(t, s.ChargeFees(rand))
}

func TestChargeRandomFeesHaltsOnFirstMiss(t *testing.T) {
	s := &Session{
		Collaterals: []CollateralTx{collateralWith(1), collateralWith(2), collateralWith(3)},
	}
	consumed := s.ChargeRandomFees(fixedRand{n: 0})
	assert.Len(t, consumed, 3)

	consumed = s.ChargeRandomFees(fixedRand{n: 1})
	assert.Len(t, consumed, 0)
}

package pool

import (
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/opencoinjoin/coordinator/internal/collab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outpointN(n byte) Outpoint {
	var hash chainhash.Hash
	hash[0] = n
	return wire.OutPoint{Hash: hash, Index: uint32(n)}
}

func newTestEntry(peer string, nInputs int, denom int64, collateralValid bool) *Entry {
	e := &Entry{PeerAddr: peer}
	for i := 0; i < nInputs; i++ {
		e.Inputs = append(e.Inputs, &MixingInput{PrevOut: outpointN(byte(i + 1))})
	}
	e.Outputs = []MixingOutput{{Amount: denom, LockingScript: []byte("script")}}
	tx := wire.NewMsgTx(wire.TxVersion)
	if collateralValid {
		tx.AddTxOut(wire.NewTxOut(DefaultCollateralAmount, []byte("collateral")))
	}
	e.Collateral = CollateralTx{Tx: tx}
	return e
}

func TestIdleInvariant(t *testing.T) {
	s := &Session{}
	assert.True(t, s.IsIdle())
}

func TestAddEntrySuccessAndEntriesFull(t *testing.T) {
	s := &Session{
		Phase:       PhaseAcceptingEntries,
		Denom:       1000,
		Collaterals: make([]CollateralTx, 1),
	}
	validity := collab.DefaultValidityChecker{}
	validator := collab.FixedCollateralValidator{Amount: DefaultCollateralAmount}

	entry := newTestEntry("peerA", 2, 1000, true)
	msg, consumed := s.AddEntry(entry, DefaultParams(), validity, validator)
	require.Equal(t, MsgEntriesAdded, msg)
	require.Nil(t, consumed)
	assert.Len(t, s.Entries, 1)

	// Seats are now full (1 collateral, 1 entry).
	entry2 := newTestEntry("peerB", 1, 1000, true)
	msg, _ = s.AddEntry(entry2, DefaultParams(), validity, validator)
	assert.Equal(t, ErrEntriesFull, msg)
}

func TestAddEntryMaxInputsConsumesCollateral(t *testing.T) {
	s := &Session{
		Phase:       PhaseAcceptingEntries,
		Denom:       1000,
		Collaterals: make([]CollateralTx, 2),
	}
	entry := newTestEntry("peerA", ParticipantMaxInputs+1, 1000, true)
	msg, consumed := s.AddEntry(entry, DefaultParams(), collab.DefaultValidityChecker{}, collab.FixedCollateralValidator{Amount: DefaultCollateralAmount})
	assert.Equal(t, ErrMaximum, msg)
	require.NotNil(t, consumed)
}

func TestAddEntryDuplicateOutpoint(t *testing.T) {
	s := &Session{
		Phase:       PhaseAcceptingEntries,
		Denom:       1000,
		Collaterals: make([]CollateralTx, 2),
	}
	entry1 := newTestEntry("peerA", 1, 1000, true)
	msg, _ := s.AddEntry(entry1, DefaultParams(), collab.DefaultValidityChecker{}, collab.FixedCollateralValidator{Amount: DefaultCollateralAmount})
	require.Equal(t, MsgEntriesAdded, msg)

	entry2 := &Entry{PeerAddr: "peerB"}
	entry2.Inputs = append(entry2.Inputs, &MixingInput{PrevOut: entry1.Inputs[0].PrevOut})
	entry2.Outputs = []MixingOutput{{Amount: 1000, LockingScript: []byte("x")}}
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxOut(wire.NewTxOut(DefaultCollateralAmount, []byte("c")))
	entry2.Collateral = CollateralTx{Tx: tx}

	msg, consumed := s.AddEntry(entry2, DefaultParams(), collab.DefaultValidityChecker{}, collab.FixedCollateralValidator{Amount: DefaultCollateralAmount})
	assert.Equal(t, ErrAlreadyHave, msg)
	assert.Nil(t, consumed)
}

func TestCreateFinalTransactionCanonicalOrdering(t *testing.T) {
	s := &Session{Phase: PhaseAcceptingEntries, Denom: 1000}
	e1 := newTestEntry("p1", 1, 1000, true)
	e1.Outputs = []MixingOutput{{Amount: 1000, LockingScript: []byte("zzz")}}
	e2 := &Entry{PeerAddr: "p2"}
	e2.Inputs = []*MixingInput{{PrevOut: outpointN(0)}}
	e2.Outputs = []MixingOutput{{Amount: 1000, LockingScript: []byte("aaa")}}
	s.Entries = []*Entry{e1, e2}

	s.CreateFinalTransaction(time.Now())

	require.Equal(t, PhaseSigning, s.Phase)
	require.Len(t, s.FinalTx.TxIn, 2)
	// outpointN(0) has a lower hash byte than outpointN(1), so e2's input sorts first.
	assert.Equal(t, e2.Inputs[0].PrevOut, s.FinalTx.TxIn[0].PreviousOutPoint)
	// "aaa" < "zzz" lexicographically, equal amounts.
	assert.Equal(t, []byte("aaa"), s.FinalTx.TxOut[0].PkScript)
}

func TestIsSessionReadyAndTimeout(t *testing.T) {
	params := DefaultParams()
	now := time.Now()

	s := &Session{Phase: PhaseQueue, LastProgressAt: now, Collaterals: make([]CollateralTx, params.MaxParticipants)}
	assert.True(t, s.IsSessionReady(now, params))

	s2 := &Session{Phase: PhaseQueue, LastProgressAt: now.Add(-params.QueueTimeout), Collaterals: make([]CollateralTx, params.MinParticipants)}
	assert.True(t, s2.HasTimedOut(now, params))
	assert.True(t, s2.IsSessionReady(now, params))

	idle := &Session{Phase: PhaseIdle, LastProgressAt: now.Add(-time.Hour)}
	assert.False(t, idle.HasTimedOut(now, params))
}

func TestHasTimedOutSigningUsesShorterWindow(t *testing.T) {
	params := DefaultParams()
	now := time.Now()
	s := &Session{Phase: PhaseSigning, LastProgressAt: now.Add(-params.SigningTimeout)}
	assert.True(t, s.HasTimedOut(now, params))

	s2 := &Session{Phase: PhaseSigning, LastProgressAt: now.Add(-params.SigningTimeout + time.Second)}
	assert.False(t, s2.HasTimedOut(now, params))
}

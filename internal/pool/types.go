// Package pool implements the mixing session state machine: the queue
// registry, entry acceptance, final transaction assembly, signature
// attachment, commit, and the fee/collateral controller.
package pool

import (
	"time"

	"github.com/btcsuite/btcd/wire"
)

// Denomination identifies one of a fixed catalogue of standard amounts.
// Only equal-denomination inputs/outputs may appear in the same session.
type Denomination int64

// Outpoint identifies a single spendable output on the chain.
type Outpoint = wire.OutPoint

// CollateralTx is a standalone signed transaction posted by a client as
// forfeitable bond. Validity is delegated to the CollateralValidator
// collaborator.
type CollateralTx struct {
	Tx *wire.MsgTx
}

// Hash returns the transaction hash of the collateral, or "" when Tx
// is nil.
func (c CollateralTx) Hash() string {
	if c.Tx == nil {
		return ""
	}
	return c.Tx.TxHash().String()
}

// MixingInput is an outpoint together with the locking script that must
// be satisfied, an optional unlocking script filled in during signing,
// and whether it has been signed yet.
type MixingInput struct {
	PrevOut       Outpoint
	LockingScript []byte
	UnlockScript  []byte
	Signed        bool
}

// MixingOutput is a locking script and amount. Amount must equal the
// session denomination.
type MixingOutput struct {
	LockingScript []byte
	Amount        int64
}

// Entry is one client's bundle of inputs, outputs, and collateral.
// ParticipantMaxInputs bounds |Inputs|.
const ParticipantMaxInputs = 9

type Entry struct {
	Inputs     []*MixingInput
	Outputs    []MixingOutput
	Collateral CollateralTx
	PeerAddr   string
}

// QueueAdvert is a signed announcement that a coordinator is accepting
// candidates (Ready=false) or has sealed a session (Ready=true).
// Equality is defined over Denom, CoordOutpoint, Timestamp, Ready —
// Signature is excluded.
type QueueAdvert struct {
	Denom         Denomination
	CoordOutpoint Outpoint
	Timestamp     int64
	Ready         bool
	Signature     []byte
}

// Equal compares two adverts ignoring Signature, per spec.
func (a QueueAdvert) Equal(b QueueAdvert) bool {
	return a.Denom == b.Denom &&
		a.CoordOutpoint == b.CoordOutpoint &&
		a.Timestamp == b.Timestamp &&
		a.Ready == b.Ready
}

// SigningPayload returns the bytes the coordinator's operator key signs
// over — every field of the advert except the signature itself.
func (a QueueAdvert) SigningPayload() []byte {
	buf := make([]byte, 0, 64)
	buf = append(buf, byte(a.Denom), byte(a.Denom>>8), byte(a.Denom>>16), byte(a.Denom>>24))
	buf = append(buf, a.CoordOutpoint.Hash[:]...)
	idx := a.CoordOutpoint.Index
	buf = append(buf, byte(idx), byte(idx>>8), byte(idx>>16), byte(idx>>24))
	ts := a.Timestamp
	for i := 0; i < 8; i++ {
		buf = append(buf, byte(ts>>(8*i)))
	}
	if a.Ready {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	return buf
}

// Phase is the session's position in the fixed lifecycle. The
// coordinator itself never enters PhaseError or PhaseSuccess; those are
// client-side semantics only.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseQueue
	PhaseAcceptingEntries
	PhaseSigning
	PhaseError
	PhaseSuccess
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseQueue:
		return "QUEUE"
	case PhaseAcceptingEntries:
		return "ACCEPTING_ENTRIES"
	case PhaseSigning:
		return "SIGNING"
	case PhaseError:
		return "ERROR"
	case PhaseSuccess:
		return "SUCCESS"
	default:
		return "UNKNOWN"
	}
}

// Session is the coordinator's singleton mixing session. id == 0 means
// inactive (phase must be PhaseIdle).
type Session struct {
	ID              int32
	Denom           Denomination
	Phase           Phase
	Collaterals     []CollateralTx
	collateralOwner []string // PeerAddr that posted Collaterals[i], parallel slice
	Entries         []*Entry
	LastProgressAt  time.Time
	FinalTx         *wire.MsgTx
}

// IsIdle reports whether the session matches the IDLE invariants of §3:
// id = 0, no entries, no collaterals, no final tx.
func (s *Session) IsIdle() bool {
	return s.Phase == PhaseIdle && s.ID == 0 && len(s.Entries) == 0 &&
		len(s.Collaterals) == 0 && s.FinalTx == nil
}

package pool

import (
	"bytes"
	"sort"
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/opencoinjoin/coordinator/internal/collab"
)

// AddEntry implements §4.2 entry acceptance. consumed reports the
// collateral (if any) that should be forfeited as a side effect of
// rejection; it is nil on acceptance and on ambiguous-attribution
// rejections.
func (s *Session) AddEntry(entry *Entry, params Params, validity collab.ValidityChecker, collateralValidator collab.CollateralValidator) (msg PoolMessage, consumed *CollateralTx) {
	if len(s.Entries) >= len(s.Collaterals) {
		return ErrEntriesFull, nil
	}
	if !collateralValidator.IsValid(entry.Collateral.Tx) {
		return ErrInvalidCollateral, nil
	}
	if len(entry.Inputs) > ParticipantMaxInputs {
		return ErrMaximum, &entry.Collateral
	}
	for _, in := range entry.Inputs {
		if s.hasOutpoint(in.PrevOut) {
			return ErrAlreadyHave, nil
		}
	}
	ok, consumeCollateral := validity.CheckInputsOutputs(int64(s.Denom), len(entry.Inputs), len(entry.Outputs))
	if !ok {
		if consumeCollateral {
			return ErrInvalidInput, &entry.Collateral
		}
		return ErrInvalidInput, nil
	}
	for _, out := range entry.Outputs {
		if out.Amount != int64(s.Denom) {
			if consumeCollateral {
				return ErrDenom, &entry.Collateral
			}
			return ErrDenom, nil
		}
	}

	s.Entries = append(s.Entries, entry)
	return MsgEntriesAdded, nil
}

func (s *Session) hasOutpoint(op Outpoint) bool {
	for _, e := range s.Entries {
		for _, in := range e.Inputs {
			if in.PrevOut == op {
				return true
			}
		}
	}
	return false
}

// IsSessionReady implements §4.4.
func (s *Session) IsSessionReady(now time.Time, params Params) bool {
	switch s.Phase {
	case PhaseAcceptingEntries:
		return true
	case PhaseQueue:
		if len(s.Collaterals) >= params.MaxParticipants {
			return true
		}
		if s.HasTimedOut(now, params) && len(s.Collaterals) >= params.MinParticipants {
			return true
		}
	}
	return false
}

// HasTimedOut implements §4.4: SIGNING uses SigningTimeout, everything
// else but IDLE uses QueueTimeout; IDLE never times out.
func (s *Session) HasTimedOut(now time.Time, params Params) bool {
	if s.Phase == PhaseIdle {
		return false
	}
	timeout := params.QueueTimeout
	if s.Phase == PhaseSigning {
		timeout = params.SigningTimeout
	}
	return now.Sub(s.LastProgressAt) >= timeout
}

// CheckForCompleteQueue implements §4.4: QUEUE -> ACCEPTING_ENTRIES
// when IsSessionReady becomes true in QUEUE. Returns true if the
// transition happened, so the caller can sign+broadcast a ready
// advert.
func (s *Session) CheckForCompleteQueue(now time.Time, params Params) bool {
	if s.Phase != PhaseQueue {
		return false
	}
	if !s.IsSessionReady(now, params) {
		return false
	}
	s.Phase = PhaseAcceptingEntries
	s.LastProgressAt = now
	return true
}

// CreateFinalTransaction implements §4.3: concatenates all inputs and
// outputs across entries, sorts them canonically, and transitions to
// SIGNING.
func (s *Session) CreateFinalTransaction(now time.Time) {
	tx := wire.NewMsgTx(wire.TxVersion)

	type inRec struct {
		in  *MixingInput
		idx int
	}
	ins := make([]inRec, 0)
	for _, e := range s.Entries {
		for _, in := range e.Inputs {
			ins = append(ins, inRec{in: in})
		}
	}
	sort.Slice(ins, func(i, j int) bool {
		a, b := ins[i].in.PrevOut, ins[j].in.PrevOut
		if cmp := bytes.Compare(a.Hash[:], b.Hash[:]); cmp != 0 {
			return cmp < 0
		}
		return a.Index < b.Index
	})

	outs := make([]MixingOutput, 0)
	for _, e := range s.Entries {
		outs = append(outs, e.Outputs...)
	}
	sort.Slice(outs, func(i, j int) bool {
		if outs[i].Amount != outs[j].Amount {
			return outs[i].Amount < outs[j].Amount
		}
		return bytes.Compare(outs[i].LockingScript, outs[j].LockingScript) < 0
	})

	for _, r := range ins {
		op := r.in.PrevOut
		tx.AddTxIn(&wire.TxIn{PreviousOutPoint: op})
	}
	for _, o := range outs {
		tx.AddTxOut(wire.NewTxOut(o.Amount, o.LockingScript))
	}

	s.FinalTx = tx
	s.Phase = PhaseSigning
	s.LastProgressAt = now
}

// AddScriptSig implements §4.6 signature attachment.
func (s *Session) AddScriptSig(prevOut Outpoint, unlockScript []byte, verifier collab.ScriptVerifier) PoolMessage {
	for _, e := range s.Entries {
		for _, in := range e.Inputs {
			if in.Signed && bytes.Equal(in.UnlockScript, unlockScript) {
				return ErrInvalidScript
			}
		}
	}

	var target *MixingInput
	for _, e := range s.Entries {
		for _, in := range e.Inputs {
			if in.PrevOut == prevOut {
				target = in
			}
		}
	}
	if target == nil {
		return ErrInvalidInput
	}

	txInIdx := -1
	for i, txIn := range s.FinalTx.TxIn {
		if txIn.PreviousOutPoint == prevOut {
			txInIdx = i
			break
		}
	}
	if txInIdx < 0 {
		return ErrInvalidInput
	}

	if err := verifier.Verify(s.FinalTx, txInIdx, target.LockingScript, unlockScript); err != nil {
		return ErrInvalidScript
	}

	target.UnlockScript = unlockScript
	target.Signed = true
	s.FinalTx.TxIn[txInIdx].SignatureScript = unlockScript
	return MsgNoErr
}

// IsSignaturesComplete implements §4.6.
func (s *Session) IsSignaturesComplete() bool {
	for _, e := range s.Entries {
		for _, in := range e.Inputs {
			if !in.Signed {
				return false
			}
		}
	}
	return true
}

// reset returns the session to the IDLE invariants of §3.
func (s *Session) reset() {
	s.ID = 0
	s.Phase = PhaseIdle
	s.Denom = 0
	s.Collaterals = nil
	s.collateralOwner = nil
	s.Entries = nil
	s.FinalTx = nil
}

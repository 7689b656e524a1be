package pool

import (
	"time"

	"github.com/opencoinjoin/coordinator/internal/collab"
)

// PoolAction is what CheckPool determined should happen next.
type PoolAction int

const (
	ActionNone PoolAction = iota
	ActionAssemble
	ActionAssembleAfterTimeout
	ActionCommit
)

// CheckPool implements §4.5 step 2: if ACCEPTING_ENTRIES and all seats
// filled, assemble; if ACCEPTING_ENTRIES and timed out with quorum,
// charge fees then assemble; if SIGNING and all inputs signed, commit.
func (s *Session) CheckPool(now time.Time, params Params) PoolAction {
	switch s.Phase {
	case PhaseAcceptingEntries:
		if len(s.Entries) == len(s.Collaterals) {
			return ActionAssemble
		}
		if s.HasTimedOut(now, params) && len(s.Entries) >= params.MinParticipants {
			return ActionAssembleAfterTimeout
		}
	case PhaseSigning:
		if s.IsSignaturesComplete() {
			return ActionCommit
		}
	}
	return ActionNone
}

// verifyAssembledTransaction is the defense-in-depth re-check spec §9
// recommends: IsSignaturesComplete only trusts the per-input Signed
// flag set by AddScriptSig; this re-runs the verifier over the fully
// assembled transaction before it reaches CommitFinalTransaction.
func (s *Session) verifyAssembledTransaction(verifier collab.ScriptVerifier) bool {
	for _, e := range s.Entries {
		for _, in := range e.Inputs {
			idx := -1
			for i, txIn := range s.FinalTx.TxIn {
				if txIn.PreviousOutPoint == in.PrevOut {
					idx = i
					break
				}
			}
			if idx < 0 {
				return false
			}
			if err := verifier.Verify(s.FinalTx, idx, in.LockingScript, in.UnlockScript); err != nil {
				return false
			}
		}
	}
	return true
}

package pool

import (
	"github.com/opencoinjoin/coordinator/internal/collab"
)

// AddCollateral records a candidate's collateral and submitting
// address before any Entry has necessarily been submitted, so offender
// attribution in ChargeFees can tell "posted collateral, never
// entered" apart from "entered but never signed".
func (s *Session) AddCollateral(peerAddr string, tx CollateralTx) {
	s.Collaterals = append(s.Collaterals, tx)
	s.collateralOwner = append(s.collateralOwner, peerAddr)
}

// offenders implements the phase-dependent attribution of §4.8:
// in ACCEPTING_ENTRIES, owners who posted collateral but never
// submitted an Entry; in SIGNING, entries with at least one unsigned
// input.
func (s *Session) offenders() []*CollateralTx {
	var out []*CollateralTx
	switch s.Phase {
	case PhaseAcceptingEntries:
		entered := make(map[string]bool, len(s.Entries))
		for _, e := range s.Entries {
			entered[e.PeerAddr] = true
		}
		for i := range s.Collaterals {
			if !entered[s.collateralOwner[i]] {
				out = append(out, &s.Collaterals[i])
			}
		}
	case PhaseSigning:
		for _, e := range s.Entries {
			for _, in := range e.Inputs {
				if !in.Signed {
					out = append(out, &e.Collateral)
					break
				}
			}
		}
	}
	return out
}

// ChargeFees implements §4.8's ChargeFees. Returns the single
// collateral to forfeit, or nil if no charge should occur this call.
func (s *Session) ChargeFees(rand collab.RandSource) *CollateralTx {
	// Probability 2/3: skip entirely.
	if rand.Intn(3) != 0 {
		return nil
	}

	offenders := s.offenders()
	if len(offenders) == 0 {
		return nil
	}

	if len(offenders) >= len(s.Collaterals)-1 {
		if rand.Intn(3) != 0 {
			return nil
		}
		if len(offenders) == len(s.Collaterals) {
			return nil
		}
	}

	rand.Shuffle(len(offenders), func(i, j int) {
		offenders[i], offenders[j] = offenders[j], offenders[i]
	})
	return offenders[0]
}

// ChargeRandomFees implements §4.8's post-success sweep: iterate
// session_collaterals, for each with 10% probability consume it,
// otherwise halt the iteration.
func (s *Session) ChargeRandomFees(rand collab.RandSource) []*CollateralTx {
	var consumed []*CollateralTx
	for i := range s.Collaterals {
		if rand.Intn(10) != 0 {
			break
		}
		consumed = append(consumed, &s.Collaterals[i])
	}
	return consumed
}

// ConsumeCollateral implements §4.8's ConsumeCollateral: submit to the
// mempool; relay on acceptance; on rejection the bond has likely
// already been spent, so the failure is dropped rather than retried.
func ConsumeCollateral(tx *CollateralTx, mempool collab.Mempool, transport collab.Transport) error {
	if tx == nil || tx.Tx == nil {
		return nil
	}
	if err := mempool.Accept(tx.Tx); err != nil {
		return nil
	}
	return transport.RelayTx(tx.Tx)
}

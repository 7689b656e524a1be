package pool

import (
	"time"

	"github.com/btcsuite/btcd/wire"
	"github.com/opencoinjoin/coordinator/internal/collab"
)

// DsTx is the DSTX inventory payload broadcast network-wide: the
// signed transaction together with the coordinator's collateral
// outpoint, signing time, and signature — the Go analogue of the
// original's CDarksendBroadcastTx / mapDSTX entry.
type DsTx struct {
	Tx            *wire.MsgTx
	CoordOutpoint Outpoint
	SigTime       int64
	Signature     []byte
}

// BroadcastStore is where a DsTx is published so a restarted
// coordinator does not build and sign a second DsTx for a transaction
// it already published — a capability the original provides via a
// static in-process map (mapDSTX) but which a restartable daemon needs
// backed by disk. The inventory announcement is relayed on every
// commit, whether or not the hash was already known.
type BroadcastStore interface {
	Has(txHash string) (bool, error)
	Put(b DsTx) error
}

// CommitFinalTransaction implements §4.7. priorityBonus is handed to
// Mempool.Prioritise per step 1's "small priority boost". Mempool.Accept
// is guarded by an external lock acquired non-blockingly by the
// implementation (mirroring the original's TRY_LOCK(cs_main, lockMain));
// whether it failed because that lock was contended
// (collab.ErrLocked) or because the transaction was genuinely rejected,
// commit fails the same way: ERR_INVALID_TX and a reset, since either
// way no further progress is possible on this attempt.
func (s *Session) CommitFinalTransaction(
	now time.Time,
	mempool collab.Mempool,
	broadcasts BroadcastStore,
	signer collab.OperatorSigner,
	coordOutpoint Outpoint,
	transport collab.Transport,
	rand collab.RandSource,
	priorityBonus int64,
) (consumedCollaterals []*CollateralTx, ok bool) {
	if err := mempool.Accept(s.FinalTx); err != nil {
		s.RelayStatus(transport, StatusRejected, ErrInvalidTx)
		s.reset()
		return nil, false
	}
	txHash := s.FinalTx.TxHash().String()
	mempool.Prioritise(txHash, priorityBonus)

	known, err := broadcasts.Has(txHash)
	if err == nil && !known {
		b := DsTx{
			Tx:            s.FinalTx,
			CoordOutpoint: coordOutpoint,
			SigTime:       now.Unix(),
		}
		sig, signErr := signer.Sign(broadcastSigningPayload(b))
		if signErr == nil {
			b.Signature = sig
			_ = broadcasts.Put(b)
		}
	}

	_ = transport.RelayInv(txHash)
	s.RelayCompletedTransaction(transport, MsgSuccess)

	consumed := s.ChargeRandomFees(rand)

	s.reset()
	return consumed, true
}

func broadcastSigningPayload(b DsTx) []byte {
	hash := b.Tx.TxHash()
	buf := make([]byte, 0, 64)
	buf = append(buf, hash[:]...)
	buf = append(buf, b.CoordOutpoint.Hash[:]...)
	idx := b.CoordOutpoint.Index
	buf = append(buf, byte(idx), byte(idx>>8), byte(idx>>16), byte(idx>>24))
	for i := 0; i < 8; i++ {
		buf = append(buf, byte(b.SigTime>>(8*i)))
	}
	return buf
}

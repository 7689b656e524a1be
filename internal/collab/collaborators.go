// Package collab defines the external collaborator interfaces the
// mixing coordinator depends on (spec §6) and provides reference
// implementations sufficient to run the coordinator standalone. The
// chain-tip registry, mempool, and denomination/collateral policy are
// explicitly out of scope for the core state machine; production
// deployments are expected to supply their own implementations backed
// by the node's real masternode list and mempool.
package collab

import (
	"github.com/btcsuite/btcd/wire"
)

// NodeInfo is what the chain-tip registry knows about a registered
// coordinator peer.
type NodeInfo struct {
	OperatorPubKey []byte
	NetAddr        string
	ProTxHash      string
}

// ChainTipRegistry resolves the set of currently valid coordinator
// nodes and their operator public keys.
type ChainTipRegistry interface {
	GetByCollateral(outpoint wire.OutPoint) (NodeInfo, bool)
	ValidCount() int
}

// PeerMetadataStore tracks per-coordinator advertisement bookkeeping
// and the network-wide advertisement counter.
type PeerMetadataStore interface {
	LastAdvertSeq(proTxHash string) int64
	SetLastAdvertSeq(proTxHash string, seq int64)
	AllowMix(proTxHash string)
	AdvertCounter() int64
	IncrAdvertCounter() int64
}

// Mempool accepts and prioritizes transactions. Acceptance is the
// boundary across which a mixing transaction becomes irreversible.
// Accept is guarded by an external lock acquired non-blockingly at
// commit time (the original's TRY_LOCK(cs_main, lockMain) in
// CommitFinalTransaction); implementations that model that lock
// return ErrLocked, distinct from a genuine rejection, when it could
// not be acquired.
type Mempool interface {
	Accept(tx *wire.MsgTx) error
	Prioritise(hash string, bonus int64)
}

// ErrLocked is returned by Mempool.Accept when the external lock
// guarding mempool/chainstate access could not be acquired
// non-blockingly, mirroring internal/pool/queue.go's ErrLocked for the
// queue registry.
type mempoolLockedErr struct{}

func (mempoolLockedErr) Error() string { return "mempool locked" }

var ErrLocked = mempoolLockedErr{}

// Transport delivers messages to peers and relays network-wide
// announcements. All outbound I/O is handed here so the state machine
// never blocks holding protocol state.
type Transport interface {
	Push(peerAddr string, update StatusUpdate) error
	PushFinalTx(peerAddr string, sessionID int32, tx *wire.MsgTx) error
	PushComplete(peerAddr string, sessionID int32, msg int32) error
	RelayInv(txHash string) error
	RelayTx(tx *wire.MsgTx) error
	RelayQueueAdvert(denom int64, coordOutpoint wire.OutPoint, timestamp int64, ready bool, sig []byte) error
}

// StatusUpdate mirrors pool.StatusUpdate without importing internal/pool,
// keeping collab free of a dependency cycle; internal/pool's PushStatus
// builds this type directly from the session's fields.
type StatusUpdate struct {
	SessionID int32
	Phase     int32
	Reserved  int32
	Update    int32
	Reason    int32
}

// Denominations exposes the fixed amount catalogue.
type Denominations interface {
	IsValid(amount int64) bool
	MaxPoolAmount() int64
}

// CollateralValidator checks a posted collateral transaction for
// validity as a forfeitable bond.
type CollateralValidator interface {
	IsValid(tx *wire.MsgTx) bool
	CollateralAmount() int64
}

// ValidityChecker enforces the shared validity predicate for a
// submitted entry's inputs and outputs. The bool return signals
// whether the bundle is acceptable; consumeCollateral signals whether
// rejection should additionally forfeit the submitter's collateral.
type ValidityChecker interface {
	CheckInputsOutputs(denom int64, inputCount, outputCount int) (ok bool, consumeCollateral bool)
}

// ScriptVerifier verifies that an unlocking script satisfies a locking
// script for a given input position in tx, per the amount-zero
// convention mandated by spec §9.
type ScriptVerifier interface {
	Verify(tx *wire.MsgTx, inputIndex int, lockingScript, unlockScript []byte) error
}

// OperatorSigner signs and verifies messages under the coordinator's
// operator key, used both for self-advertisement and broadcast
// signing.
type OperatorSigner interface {
	Sign(msg []byte) ([]byte, error)
	Verify(pubkey, msg, sig []byte) bool
	PubKey() []byte
}

// Clock returns monotonic wall-clock time in whole seconds.
type Clock interface {
	Now() int64
}

// RandSource provides uniformly distributed integers and shuffling,
// injected so tests can run deterministic scenarios.
type RandSource interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

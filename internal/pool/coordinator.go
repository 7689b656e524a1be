package pool

import (
	"sync"
	"time"

	"github.com/opencoinjoin/coordinator/internal/collab"
)

// Coordinator wires the session state machine together with its
// external collaborators. Per spec §9's "cyclic/shared ownership"
// note, every dependency is injected at construction rather than held
// as a package-level singleton.
type Coordinator struct {
	mu sync.Mutex

	Session  *Session
	Registry *Registry
	Params   Params

	SelfOutpoint  Outpoint
	SelfProTxHash string

	CoordinatorMode bool
	ChainSynced     bool
	Shutdown        bool

	ChainTip    collab.ChainTipRegistry
	PeerStore   collab.PeerMetadataStore
	Mempool     collab.Mempool
	Transport   collab.Transport
	Denoms      collab.Denominations
	Collateral  collab.CollateralValidator
	Validity    collab.ValidityChecker
	Script      collab.ScriptVerifier
	Signer      collab.OperatorSigner
	Clock       collab.Clock
	Rand        collab.RandSource
	Broadcasts  BroadcastStore
}

// New returns a Coordinator with a fresh, idle session.
func New(params Params) *Coordinator {
	return &Coordinator{
		Session:         &Session{},
		Registry:        NewRegistry(),
		Params:          params,
		CoordinatorMode: true,
		ChainSynced:     true,
	}
}

func (c *Coordinator) now() time.Time {
	return time.Unix(c.Clock.Now(), 0)
}

// checkVersion implements the §4.1 preamble shared by every inbound
// message: drop with no state change if not in coordinator mode, if
// the chain is not synchronized, or if the peer's protocol version is
// below MinProtoVersion. The bool return is false when the message
// must be dropped.
func (c *Coordinator) checkVersion(peerVersion int32) (PoolMessage, bool) {
	if !c.CoordinatorMode || c.Shutdown {
		return ErrMode, false
	}
	if !c.ChainSynced {
		return ErrMode, false
	}
	if peerVersion < c.Params.MinProtoVersion {
		return ErrVersion, false
	}
	return MsgNoErr, true
}

// DoMaintenance implements §4.5, invoked by an external scheduler
// (once per second is adequate).
func (c *Coordinator) DoMaintenance() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.CoordinatorMode || !c.ChainSynced || c.Shutdown {
		return
	}

	now := c.now()
	s := c.Session

	if s.CheckForCompleteQueue(now, c.Params) {
		c.broadcastReadyAdvert(now)
	}

	switch s.CheckPool(now, c.Params) {
	case ActionAssemble:
		s.CreateFinalTransaction(now)
		s.RelayFinalTransaction(c.Transport)
	case ActionAssembleAfterTimeout:
		if fee := s.ChargeFees(c.Rand); fee != nil {
			_ = ConsumeCollateral(fee, c.Mempool, c.Transport)
		}
		s.CreateFinalTransaction(now)
		s.RelayFinalTransaction(c.Transport)
	case ActionCommit:
		if s.verifyAssembledTransaction(c.Script) {
			consumed, _ := s.CommitFinalTransaction(now, c.Mempool, c.Broadcasts, c.Signer, c.SelfOutpoint, c.Transport, c.Rand, commitPriorityBonus)
			for _, ct := range consumed {
				_ = ConsumeCollateral(ct, c.Mempool, c.Transport)
			}
		} else {
			s.RelayCompletedTransaction(c.Transport, ErrInvalidTx)
			s.reset()
		}
	}

	if s.HasTimedOut(now, c.Params) {
		if fee := s.ChargeFees(c.Rand); fee != nil {
			_ = ConsumeCollateral(fee, c.Mempool, c.Transport)
		}
		s.reset()
	}

	c.Registry.ExpireOlderThan(now, c.Params.AdvertExpiry)
}

const commitPriorityBonus = 1000

func (c *Coordinator) broadcastReadyAdvert(now time.Time) {
	advert := QueueAdvert{
		Denom:         c.Session.Denom,
		CoordOutpoint: c.SelfOutpoint,
		Timestamp:     now.Unix(),
		Ready:         true,
	}
	sig, err := c.Signer.Sign(advert.SigningPayload())
	if err != nil {
		return
	}
	advert.Signature = sig
	_ = c.Registry.Add(advert)
	_ = c.Transport.RelayQueueAdvert(int64(advert.Denom), advert.CoordOutpoint, advert.Timestamp, advert.Ready, advert.Signature)
}

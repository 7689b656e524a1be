package pool

// SignPair is one (outpoint, unlocking-script) pair from a
// DSSIGNFINALTX batch.
type SignPair struct {
	PrevOut      Outpoint
	UnlockScript []byte
}

// HandleDSAccept implements §4.1 DSACCEPT: a candidate joins.
func (c *Coordinator) HandleDSAccept(peerAddr string, denom Denomination, collateral CollateralTx, peerVersion int32) PoolMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	if msg, ok := c.checkVersion(peerVersion); !ok {
		return msg
	}

	now := c.now()
	s := c.Session

	if s.IsSessionReady(now, c.Params) {
		return ErrQueueFull
	}

	self, found := c.ChainTip.GetByCollateral(c.SelfOutpoint)
	if !found {
		return ErrMNList
	}

	if len(s.Collaterals) == 0 {
		if live, _ := c.Registry.OwnLiveAdvert(c.SelfOutpoint); live {
			return ErrRecent
		}
		lastSeq := c.PeerStore.LastAdvertSeq(self.ProTxHash)
		validCount := int64(c.ChainTip.ValidCount())
		advertCounter := c.PeerStore.AdvertCounter()
		if lastSeq != 0 && lastSeq+validCount/5 > advertCounter {
			return ErrRecent
		}
	}

	if !c.Denoms.IsValid(int64(denom)) {
		return ErrDenom
	}
	if !c.Collateral.IsValid(collateral.Tx) {
		return ErrInvalidCollateral
	}

	if s.ID == 0 {
		s.ID = nextSessionID(c.Rand)
		s.Denom = denom
		s.Phase = PhaseQueue
		s.LastProgressAt = now
	}
	s.AddCollateral(peerAddr, collateral)

	return MsgNoErr
}

// nextSessionID draws a session id in [1, 999_999], per spec §3.
func nextSessionID(rand interface{ Intn(int) int }) int32 {
	return int32(rand.Intn(999_999) + 1)
}

// HandleDSQueue implements §4.1 DSQUEUE: an advertisement from
// another coordinator. Deliberately does not take c.mu: it only ever
// touches c.Registry (non-blocking-locked internally, per §5) and
// c.PeerStore (self-synchronized), never c.Session, so a DSQUEUE flood
// must never be able to stall DSACCEPT/DSVIN/DSSIGNFINALTX handling on
// the same coordinator.
func (c *Coordinator) HandleDSQueue(advert QueueAdvert, peerVersion int32) bool {
	if _, ok := c.checkVersion(peerVersion); !ok {
		return false
	}

	if dup, err := c.Registry.Contains(advert); err != nil || dup {
		return false
	}
	if abuse, err := c.Registry.HasCoordinatorReadiness(advert.CoordOutpoint, advert.Ready); err != nil || abuse {
		return false
	}

	now := c.now()
	if advert.Timestamp < now.Add(-c.Params.QueueTimeout).Unix() || advert.Timestamp > now.Add(c.Params.QueueTimeout).Unix() {
		return false
	}

	sender, found := c.ChainTip.GetByCollateral(advert.CoordOutpoint)
	if !found {
		return false
	}

	if !c.Signer.Verify(sender.OperatorPubKey, advert.SigningPayload(), advert.Signature) {
		// Invalid signature: the advert is dropped. No misbehavior
		// report is made to the transport layer or any peer-scoring
		// system.
		return false
	}

	if !advert.Ready {
		lastSeq := c.PeerStore.LastAdvertSeq(sender.ProTxHash)
		validCount := int64(c.ChainTip.ValidCount())
		advertCounter := c.PeerStore.AdvertCounter()
		if lastSeq != 0 && lastSeq+validCount/5 > advertCounter {
			return false
		}
	}

	if err := c.Registry.Add(advert); err != nil {
		return false
	}
	c.PeerStore.AllowMix(sender.ProTxHash)
	c.PeerStore.SetLastAdvertSeq(sender.ProTxHash, c.PeerStore.IncrAdvertCounter())
	_ = c.Transport.RelayQueueAdvert(int64(advert.Denom), advert.CoordOutpoint, advert.Timestamp, advert.Ready, advert.Signature)
	return true
}

// HandleDSVin implements §4.1 DSVIN: client entry submission.
func (c *Coordinator) HandleDSVin(peerAddr string, entry *Entry, peerVersion int32) PoolMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	if msg, ok := c.checkVersion(peerVersion); !ok {
		return msg
	}

	s := c.Session
	if s.Phase != PhaseAcceptingEntries {
		return ErrSession
	}

	entry.PeerAddr = peerAddr
	msg, consumed := s.AddEntry(entry, c.Params, c.Validity, c.Collateral)
	if consumed != nil {
		_ = ConsumeCollateral(consumed, c.Mempool, c.Transport)
	}
	if msg.IsError() {
		_ = s.PushStatus(c.Transport, peerAddr, StatusRejected, msg)
		return msg
	}

	now := c.now()
	s.LastProgressAt = now

	switch s.CheckPool(now, c.Params) {
	case ActionAssemble:
		s.CreateFinalTransaction(now)
		s.RelayFinalTransaction(c.Transport)
	}

	s.RelayStatus(c.Transport, StatusAccepted, MsgEntriesAdded)
	return msg
}

// HandleDSSignFinalTx implements §4.1 DSSIGNFINALTX: client-supplied
// signatures.
func (c *Coordinator) HandleDSSignFinalTx(pairs []SignPair, peerVersion int32) PoolMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	if msg, ok := c.checkVersion(peerVersion); !ok {
		return msg
	}

	s := c.Session
	if s.Phase != PhaseSigning {
		return ErrSession
	}

	for _, pair := range pairs {
		if msg := s.AddScriptSig(pair.PrevOut, pair.UnlockScript, c.Script); msg != MsgNoErr {
			s.RelayStatus(c.Transport, StatusRejected, msg)
			return msg
		}
	}

	now := c.now()
	s.LastProgressAt = now
	if s.CheckPool(now, c.Params) == ActionCommit {
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
	return MsgNoErr
}

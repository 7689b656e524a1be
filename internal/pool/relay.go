package pool

import (
	"github.com/opencoinjoin/coordinator/internal/collab"
)

// PushStatus implements §4.9: unicast a tagged status tuple to one
// peer. update carries the generic accept/reject signal; reason
// carries the specific PoolMessage beneath it.
func (s *Session) PushStatus(transport collab.Transport, peerAddr string, update StatusFlag, reason PoolMessage) error {
	return transport.Push(peerAddr, collab.StatusUpdate{
		SessionID: s.ID,
		Phase:     int32(s.Phase),
		Reserved:  0,
		Update:    int32(update),
		Reason:    int32(reason),
	})
}

// allParticipantAddrs returns the distinct peer addresses with an
// Entry in this session.
func (s *Session) allParticipantAddrs() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range s.Entries {
		if !seen[e.PeerAddr] {
			seen[e.PeerAddr] = true
			out = append(out, e.PeerAddr)
		}
	}
	return out
}

// RelayStatus implements §4.9: push to every participant by address,
// tracking disconnects. If any participant is unreachable, push
// STATUS_REJECTED to all reachable ones. If all participants are
// unreachable, assume the coordinator's own networking is broken,
// reset to IDLE, and charge no fees — reported via resetNoFee.
func (s *Session) RelayStatus(transport collab.Transport, update StatusFlag, reason PoolMessage) (resetNoFee bool) {
	addrs := s.allParticipantAddrs()
	if len(addrs) == 0 {
		return false
	}

	var unreachable, reachable []string
	for _, addr := range addrs {
		if err := s.PushStatus(transport, addr, update, reason); err != nil {
			unreachable = append(unreachable, addr)
		} else {
			reachable = append(reachable, addr)
		}
	}

	if len(unreachable) == len(addrs) {
		s.reset()
		return true
	}
	if len(unreachable) > 0 {
		for _, addr := range reachable {
			_ = s.PushStatus(transport, addr, StatusRejected, ErrInvalidTx)
		}
	}
	return false
}

// RelayFinalTransaction implements §4.9: unicast the unsigned merged
// transaction to each participant, addressed by the network address
// stored in their entry. Any lookup failure escalates via
// RelayStatus(REJECTED).
func (s *Session) RelayFinalTransaction(transport collab.Transport) (resetNoFee bool) {
	for _, addr := range s.allParticipantAddrs() {
		if err := transport.PushFinalTx(addr, s.ID, s.FinalTx); err != nil {
			return s.RelayStatus(transport, StatusRejected, ErrInvalidTx)
		}
	}
	return false
}

// RelayCompletedTransaction implements §4.9: unicast the
// success/failure code to every participant.
func (s *Session) RelayCompletedTransaction(transport collab.Transport, code PoolMessage) {
	for _, addr := range s.allParticipantAddrs() {
		_ = transport.PushComplete(addr, s.ID, int32(code))
	}
}

package pool

import (
	"github.com/btcsuite/btcd/wire"
	"github.com/opencoinjoin/coordinator/internal/collab"
)

// alwaysVerifier treats every unlocking script as valid; used by
// dispatcher/coordinator tests that exercise session mechanics rather
// than cryptography (covered separately in scriptverify_test.go).
type alwaysVerifier struct{}

func (alwaysVerifier) Verify(tx *wire.MsgTx, idx int, lockingScript, unlockScript []byte) error {
	return nil
}

// fakeSigner is a no-crypto OperatorSigner for tests.
type fakeSigner struct {
	pubKey []byte
}

func (f fakeSigner) Sign(msg []byte) ([]byte, error) { return append([]byte("sig:"), msg...), nil }
func (f fakeSigner) Verify(pubkey, msg, sig []byte) bool {
	expected := append([]byte("sig:"), msg...)
	if len(sig) != len(expected) {
		return false
	}
	for i := range sig {
		if sig[i] != expected[i] {
			return false
		}
	}
	return true
}
func (f fakeSigner) PubKey() []byte { return f.pubKey }

// recordingTransport records every push/relay call for assertions.
type recordingTransport struct {
	statuses  []collab.StatusUpdate
	finalTxTo []string
	completes []int32
	relayedTx []*wire.MsgTx
	adverts   int
	fail      map[string]bool // peerAddr -> force failure
}

func newRecordingTransport() *recordingTransport {
	return &recordingTransport{fail: make(map[string]bool)}
}

func (t *recordingTransport) Push(peerAddr string, update collab.StatusUpdate) error {
	if t.fail[peerAddr] {
		return errFakePushFailed
	}
	t.statuses = append(t.statuses, update)
	return nil
}

func (t *recordingTransport) PushFinalTx(peerAddr string, sessionID int32, tx *wire.MsgTx) error {
	if t.fail[peerAddr] {
		return errFakePushFailed
	}
	t.finalTxTo = append(t.finalTxTo, peerAddr)
	return nil
}

func (t *recordingTransport) PushComplete(peerAddr string, sessionID int32, msg int32) error {
	if t.fail[peerAddr] {
		return errFakePushFailed
	}
	t.completes = append(t.completes, msg)
	return nil
}

func (t *recordingTransport) RelayInv(txHash string) error { return nil }

func (t *recordingTransport) RelayTx(tx *wire.MsgTx) error {
	t.relayedTx = append(t.relayedTx, tx)
	return nil
}

func (t *recordingTransport) RelayQueueAdvert(denom int64, coordOutpoint wire.OutPoint, timestamp int64, ready bool, sig []byte) error {
	t.adverts++
	return nil
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }

const errFakePushFailed = fakeErr("push failed")

// memBroadcastStore is an in-memory BroadcastStore for tests.
type memBroadcastStore struct {
	seen map[string]DsTx
}

func newMemBroadcastStore() *memBroadcastStore {
	return &memBroadcastStore{seen: make(map[string]DsTx)}
}

func (m *memBroadcastStore) Has(txHash string) (bool, error) {
	_, ok := m.seen[txHash]
	return ok, nil
}

func (m *memBroadcastStore) Put(b DsTx) error {
	m.seen[b.Tx.TxHash().String()] = b
	return nil
}

// alwaysAcceptMempool accepts every transaction.
type alwaysAcceptMempool struct {
	accepted []*wire.MsgTx
}

func (m *alwaysAcceptMempool) Accept(tx *wire.MsgTx) error {
	m.accepted = append(m.accepted, tx)
	return nil
}

func (m *alwaysAcceptMempool) Prioritise(hash string, bonus int64) {}

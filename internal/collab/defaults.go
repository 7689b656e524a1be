package collab

import (
	"bytes"
	cryptorand "crypto/rand"
	"encoding/binary"
	"encoding/json"
	"fmt"
	mathrand "math/rand/v2"
	"net/http"
	"sync"
	"time"

	"github.com/btcsuite/btcd/wire"
)

// StaticRegistry is an in-memory ChainTipRegistry, swappable for a
// real masternode-list-backed implementation.
type StaticRegistry struct {
	mu    sync.RWMutex
	nodes map[wire.OutPoint]NodeInfo
}

func NewStaticRegistry() *StaticRegistry {
	return &StaticRegistry{nodes: make(map[wire.OutPoint]NodeInfo)}
}

func (r *StaticRegistry) Register(outpoint wire.OutPoint, info NodeInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes[outpoint] = info
}

func (r *StaticRegistry) GetByCollateral(outpoint wire.OutPoint) (NodeInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.nodes[outpoint]
	return info, ok
}

func (r *StaticRegistry) ValidCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}

// MemoryPeerStore is an in-memory PeerMetadataStore.
type MemoryPeerStore struct {
	mu       sync.Mutex
	lastSeq  map[string]int64
	allowed  map[string]bool
	advertCt int64
}

func NewMemoryPeerStore() *MemoryPeerStore {
	return &MemoryPeerStore{
		lastSeq: make(map[string]int64),
		allowed: make(map[string]bool),
	}
}

func (s *MemoryPeerStore) LastAdvertSeq(proTxHash string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeq[proTxHash]
}

func (s *MemoryPeerStore) SetLastAdvertSeq(proTxHash string, seq int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeq[proTxHash] = seq
}

func (s *MemoryPeerStore) AllowMix(proTxHash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allowed[proTxHash] = true
}

func (s *MemoryPeerStore) AdvertCounter() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advertCt
}

func (s *MemoryPeerStore) IncrAdvertCounter() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.advertCt++
	return s.advertCt
}

// HTTPTransport pushes status updates and transaction payloads as JSON
// POSTs to each participant's callback address, and no-ops relay calls
// that belong to the real P2P network (out of scope per spec §1).
type HTTPTransport struct {
	Client *http.Client
}

func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{Client: &http.Client{Timeout: 5 * time.Second}}
}

func (t *HTTPTransport) Push(peerAddr string, update StatusUpdate) error {
	return t.postJSON(peerAddr+"/ds/status", update)
}

func (t *HTTPTransport) PushFinalTx(peerAddr string, sessionID int32, tx *wire.MsgTx) error {
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return err
	}
	payload := struct {
		SessionID int32  `json:"session_id"`
		Tx        []byte `json:"tx"`
	}{sessionID, buf.Bytes()}
	return t.postJSON(peerAddr+"/ds/finaltx", payload)
}

func (t *HTTPTransport) PushComplete(peerAddr string, sessionID int32, msg int32) error {
	payload := struct {
		SessionID int32 `json:"session_id"`
		Msg       int32 `json:"msg"`
	}{sessionID, msg}
	return t.postJSON(peerAddr+"/ds/complete", payload)
}

func (t *HTTPTransport) RelayInv(txHash string) error {
	return nil
}

func (t *HTTPTransport) RelayTx(tx *wire.MsgTx) error {
	return nil
}

func (t *HTTPTransport) RelayQueueAdvert(denom int64, coordOutpoint wire.OutPoint, timestamp int64, ready bool, sig []byte) error {
	return nil
}

func (t *HTTPTransport) postJSON(url string, payload any) error {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return err
	}
	resp, err := t.Client.Post(url, "application/json", buf)
	if err != nil {
		return fmt.Errorf("push to %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push to %s: status %d", url, resp.StatusCode)
	}
	return nil
}

// MempoolRecorder is the narrow persistence hook LoggingMempool uses
// to record accepted transactions; internal/store.Store satisfies
// this structurally, without collab needing to import it.
type MempoolRecorder interface {
	RecordAccepted(tx *wire.MsgTx) error
}

// LoggingMempool accepts every transaction (the real mempool's fee-rate
// and conflict checks are out of scope per spec §1) unless its lock is
// contended or Recorder returns an error, and optionally records each
// acceptance through Recorder. mu stands in for the external
// mempool/chainstate lock CommitFinalTransaction must acquire
// non-blockingly before touching the mempool.
type LoggingMempool struct {
	Recorder MempoolRecorder
	mu       sync.Mutex
}

func (m *LoggingMempool) Accept(tx *wire.MsgTx) error {
	if !m.mu.TryLock() {
		return ErrLocked
	}
	defer m.mu.Unlock()
	if m.Recorder != nil {
		return m.Recorder.RecordAccepted(tx)
	}
	return nil
}

func (m *LoggingMempool) Prioritise(hash string, bonus int64) {}

// FixedCollateralValidator treats any non-empty transaction with at
// least one output worth at least the configured collateral amount as
// valid. A
// production deployment would check the collateral script, fee rate,
// and confirmation depth; that policy is explicitly out of scope here.
type FixedCollateralValidator struct {
	Amount int64
}

func (v FixedCollateralValidator) IsValid(tx *wire.MsgTx) bool {
	if tx == nil || len(tx.TxOut) == 0 {
		return false
	}
	for _, out := range tx.TxOut {
		if out.Value >= v.Amount {
			return true
		}
	}
	return false
}

func (v FixedCollateralValidator) CollateralAmount() int64 {
	return v.Amount
}

// DefaultValidityChecker rejects a bundle with no inputs or no outputs
// and never asks for collateral consumption; it checks neither the
// input count limit nor output amounts (Session.AddEntry does). The precise
// standardness/amount rules are an external collaborator per spec §9's
// open question on IsValidInOuts.
type DefaultValidityChecker struct{}

func (DefaultValidityChecker) CheckInputsOutputs(denom int64, inputCount, outputCount int) (bool, bool) {
	if inputCount == 0 || outputCount == 0 {
		return false, false
	}
	return true, false
}

// SystemClock returns the real wall-clock time in whole seconds.
type SystemClock struct{}

func (SystemClock) Now() int64 {
	return time.Now().Unix()
}

// FixedClock is a deterministic Clock for tests.
type FixedClock struct {
	T int64
}

func (c *FixedClock) Now() int64 { return c.T }

// CryptoRand seeds math/rand/v2's PCG generator from crypto/rand so
// production use gets a non-predictable sequence, while tests inject a
// fixed-seed RandSource for deterministic probabilistic scenarios (the
// fee controller's ⅔/10% rolls, per spec §9 "Probabilistic enforcement").
type CryptoRand struct {
	r *mathrand.Rand
}

func NewCryptoRand() *CryptoRand {
	var seed [32]byte
	_, _ = cryptorand.Read(seed[:])
	s1 := binary.LittleEndian.Uint64(seed[:8])
	s2 := binary.LittleEndian.Uint64(seed[8:16])
	return &CryptoRand{r: mathrand.New(mathrand.NewPCG(s1, s2))}
}

func (c *CryptoRand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return c.r.IntN(n)
}

func (c *CryptoRand) Shuffle(n int, swap func(i, j int)) {
	c.r.Shuffle(n, swap)
}

// SeededRand is a fixed-seed RandSource for deterministic tests.
type SeededRand struct {
	r *mathrand.Rand
}

func NewSeededRand(seed uint64) *SeededRand {
	return &SeededRand{r: mathrand.New(mathrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *SeededRand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return s.r.IntN(n)
}

func (s *SeededRand) Shuffle(n int, swap func(i, j int)) {
	s.r.Shuffle(n, swap)
}

package main

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/opencoinjoin/coordinator/internal/pool"
)

func sendError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(StatusResponse{Message: err.Error()})
}

func indexPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(StatusResponse{Message: "privatesend coordinator"})
}

func decodeCollateral(raw []byte) pool.CollateralTx {
	if len(raw) == 0 {
		return pool.CollateralTx{}
	}
	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.DeserializeNoWitness(bytes.NewReader(raw)); err != nil {
		return pool.CollateralTx{}
	}
	return pool.CollateralTx{Tx: tx}
}

func decodeOutpoint(hash string, index uint32) wire.OutPoint {
	h, err := chainhash.NewHashFromStr(hash)
	if err != nil {
		return wire.OutPoint{}
	}
	return wire.OutPoint{Hash: *h, Index: index}
}

func (s *daemon) dsAccept(w http.ResponseWriter, r *http.Request) {
	var req DSAcceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, err)
		return
	}
	msg := s.coord.HandleDSAccept(req.PeerAddr, pool.Denomination(req.Denom), decodeCollateral(req.CollateralTx), req.ProtoVersion)
	json.NewEncoder(w).Encode(DSAcceptResponse{Status: msg.String()})
}

func (s *daemon) dsQueue(w http.ResponseWriter, r *http.Request) {
	var req DSQueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, err)
		return
	}
	advert := pool.QueueAdvert{
		Denom:         pool.Denomination(req.Denom),
		CoordOutpoint: decodeOutpoint(req.OutpointHash, req.OutpointIndex),
		Timestamp:     req.Timestamp,
		Ready:         req.Ready,
		Signature:     req.Signature,
	}
	accepted := s.coord.HandleDSQueue(advert, req.ProtoVersion)
	json.NewEncoder(w).Encode(DSQueueResponse{Accepted: accepted})
}

func (s *daemon) dsVin(w http.ResponseWriter, r *http.Request) {
	var req DSVinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, err)
		return
	}

	entry := &pool.Entry{
		Collateral: decodeCollateral(req.CollateralTx),
	}
	for _, in := range req.Inputs {
		entry.Inputs = append(entry.Inputs, &pool.MixingInput{
			PrevOut:       decodeOutpoint(in.OutpointHash, in.OutpointIndex),
			LockingScript: in.LockingScript,
		})
	}
	for _, out := range req.Outputs {
		entry.Outputs = append(entry.Outputs, pool.MixingOutput{
			LockingScript: out.LockingScript,
			Amount:        out.Amount,
		})
	}

	msg := s.coord.HandleDSVin(req.PeerAddr, entry, req.ProtoVersion)
	json.NewEncoder(w).Encode(DSVinResponse{Status: msg.String()})
}

func (s *daemon) dsSignFinalTx(w http.ResponseWriter, r *http.Request) {
	var req DSSignFinalTxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, err)
		return
	}

	pairs := make([]pool.SignPair, 0, len(req.Inputs))
	for _, in := range req.Inputs {
		pairs = append(pairs, pool.SignPair{
			PrevOut:      decodeOutpoint(in.OutpointHash, in.OutpointIndex),
			UnlockScript: in.UnlockScript,
		})
	}

	msg := s.coord.HandleDSSignFinalTx(pairs, req.ProtoVersion)
	json.NewEncoder(w).Encode(DSSignFinalTxResponse{Status: msg.String()})
}

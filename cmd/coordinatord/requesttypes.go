package main

// Request/response JSON shapes for the four inbound wire messages of
// spec §6, bound over HTTP+JSON rather than the length-prefixed P2P
// framing the spec places out of scope. The outbound payloads are
// built by collab.HTTPTransport, not defined here. Naming
// follows the teacher's coordinator/requesttypes.go convention.

type DSAcceptRequest struct {
	PeerAddr      string `json:"peer_addr"`
	Denom         int64  `json:"denom"`
	CollateralTx  []byte `json:"collateral_tx"`
	ProtoVersion  int32  `json:"proto_version"`
}

type DSAcceptResponse struct {
	Status string `json:"status"`
}

type DSQueueRequest struct {
	Denom          int64  `json:"denom"`
	OutpointHash   string `json:"outpoint_hash"`
	OutpointIndex  uint32 `json:"outpoint_index"`
	Timestamp      int64  `json:"timestamp"`
	Ready          bool   `json:"ready"`
	Signature      []byte `json:"signature"`
	ProtoVersion   int32  `json:"proto_version"`
}

type DSQueueResponse struct {
	Accepted bool `json:"accepted"`
}

type WireInput struct {
	OutpointHash  string `json:"outpoint_hash"`
	OutpointIndex uint32 `json:"outpoint_index"`
	LockingScript []byte `json:"locking_script"`
	UnlockScript  []byte `json:"unlock_script,omitempty"`
}

type WireOutput struct {
	LockingScript []byte `json:"locking_script"`
	Amount        int64  `json:"amount"`
}

type DSVinRequest struct {
	PeerAddr     string       `json:"peer_addr"`
	Inputs       []WireInput  `json:"inputs"`
	Outputs      []WireOutput `json:"outputs"`
	CollateralTx []byte       `json:"collateral_tx"`
	ProtoVersion int32        `json:"proto_version"`
}

type DSVinResponse struct {
	Status string `json:"status"`
}

type DSSignFinalTxRequest struct {
	Inputs       []WireInput `json:"inputs"`
	ProtoVersion int32       `json:"proto_version"`
}

type DSSignFinalTxResponse struct {
	Status string `json:"status"`
}

type StatusResponse struct {
	Message string `json:"message"`
}

package pool

// PoolMessage is the enumerated status/error tag relayed to clients.
// Modelled as a Go type rather than an exception: dispatcher paths
// return one of these, never panic, matching CPrivateSend::GetMessageByID
// in the original implementation.
type PoolMessage int

const (
	MsgNoErr PoolMessage = iota
	MsgSuccess
	MsgEntriesAdded

	ErrVersion
	ErrQueueFull
	ErrSession
	ErrMode
	ErrMNList
	ErrRecent

	ErrDenom
	ErrInvalidCollateral
	ErrInvalidInput
	ErrInvalidScript
	ErrNonStandardPubkey
	ErrFees
	ErrMaximum
	ErrAlreadyHave
	ErrEntriesFull

	ErrInvalidTx
	ErrMissingTx
)

var poolMessageNames = map[PoolMessage]string{
	MsgNoErr:             "MSG_NOERR",
	MsgSuccess:           "MSG_SUCCESS",
	MsgEntriesAdded:      "MSG_ENTRIES_ADDED",
	ErrVersion:           "ERR_VERSION",
	ErrQueueFull:         "ERR_QUEUE_FULL",
	ErrSession:           "ERR_SESSION",
	ErrMode:              "ERR_MODE",
	ErrMNList:            "ERR_MN_LIST",
	ErrRecent:            "ERR_RECENT",
	ErrDenom:             "ERR_DENOM",
	ErrInvalidCollateral: "ERR_INVALID_COLLATERAL",
	ErrInvalidInput:      "ERR_INVALID_INPUT",
	ErrInvalidScript:     "ERR_INVALID_SCRIPT",
	ErrNonStandardPubkey: "ERR_NON_STANDARD_PUBKEY",
	ErrFees:              "ERR_FEES",
	ErrMaximum:           "ERR_MAXIMUM",
	ErrAlreadyHave:       "ERR_ALREADY_HAVE",
	ErrEntriesFull:       "ERR_ENTRIES_FULL",
	ErrInvalidTx:         "ERR_INVALID_TX",
	ErrMissingTx:         "ERR_MISSING_TX",
}

// GetMessageByID returns the wire name for a PoolMessage, or "" if
// unrecognized.
func GetMessageByID(m PoolMessage) string {
	return poolMessageNames[m]
}

func (m PoolMessage) String() string {
	if s, ok := poolMessageNames[m]; ok {
		return s
	}
	return "ERR_UNKNOWN"
}

// IsError reports whether m represents a rejection rather than a
// success status.
func (m PoolMessage) IsError() bool {
	return m >= ErrVersion
}

// StatusFlag is the generic accept/reject signal carried by a
// DSSTATUSUPDATE, kept distinct from the business-specific PoolMessage
// reason code underneath it, matching the original's separate
// PoolStatusUpdate enum.
type StatusFlag int32

const (
	StatusRejected StatusFlag = iota
	StatusAccepted
)

// StatusUpdate is PushStatus's unicast payload: (session_id, phase,
// reserved, update, msg).
type StatusUpdate struct {
	SessionID int32
	Phase     Phase
	Reserved  int32
	Update    StatusFlag
	Reason    PoolMessage
}

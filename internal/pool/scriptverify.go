package pool

import (
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// BtcdScriptVerifier implements collab.ScriptVerifier on top of
// btcd/txscript, the Go ecosystem's analogue of the original's
// VerifyScript(..., SCRIPT_VERIFY_P2SH | SCRIPT_VERIFY_STRICTENC, ...).
//
// Amount is always passed as zero per spec §9: the script-hashing
// rules here do not bind amount, and changing this would produce a
// different signature hash and break compatibility.
type BtcdScriptVerifier struct{}

const verifyFlags = txscript.ScriptBip16 | txscript.ScriptVerifyStrictEncoding

// Verify splices unlockScript into tx's input at inputIndex and checks
// it against lockingScript under verifyFlags with input amount zero.
// tx is not mutated on failure.
func (BtcdScriptVerifier) Verify(tx *wire.MsgTx, inputIndex int, lockingScript, unlockScript []byte) error {
	if tx == nil {
		return fmt.Errorf("pool: nil transaction")
	}
	if inputIndex < 0 || inputIndex >= len(tx.TxIn) {
		return fmt.Errorf("pool: input index %d out of range", inputIndex)
	}

	working := tx.Copy()
	working.TxIn[inputIndex].SignatureScript = unlockScript

	prevOutFetcher := txscript.NewCannedPrevOutputFetcher(lockingScript, 0)
	engine, err := txscript.NewEngine(lockingScript, working, inputIndex, verifyFlags, nil, nil, 0, prevOutFetcher)
	if err != nil {
		return fmt.Errorf("pool: building script engine: %w", err)
	}
	if err := engine.Execute(); err != nil {
		return fmt.Errorf("pool: script verification failed: %w", err)
	}
	return nil
}

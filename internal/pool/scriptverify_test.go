package pool

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBtcdScriptVerifierAcceptsValidSignature(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	pubKey := priv.PubKey().SerializeCompressed()

	lockingScript, err := txscript.NewScriptBuilder().
		AddData(pubKey).
		AddOp(txscript.OP_CHECKSIG).
		Script()
	require.NoError(t, err)

	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: outpointN(1)})
	tx.AddTxOut(wire.NewTxOut(1000, []byte("out")))

	sig, err := txscript.RawTxInSignature(tx, 0, lockingScript, txscript.SigHashAll, priv)
	require.NoError(t, err)
	unlockScript, err := txscript.NewScriptBuilder().AddData(sig).Script()
	require.NoError(t, err)

	v := BtcdScriptVerifier{}
	err = v.Verify(tx, 0, lockingScript, unlockScript)
	assert.NoError(t, err)
	// tx itself is left untouched by Verify (it operates on a copy).
	assert.Empty(t, tx.TxIn[0].SignatureScript)
}

func TestBtcdScriptVerifierRejectsWrongKey(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	other, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	lockingScript, err := txscript.NewScriptBuilder().
		AddData(priv.PubKey().SerializeCompressed()).
		AddOp(txscript.OP_CHECKSIG).
		Script()
	require.NoError(t, err)

	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: outpointN(1)})
	tx.AddTxOut(wire.NewTxOut(1000, []byte("out")))

	sig, err := txscript.RawTxInSignature(tx, 0, lockingScript, txscript.SigHashAll, other)
	require.NoError(t, err)
	unlockScript, err := txscript.NewScriptBuilder().AddData(sig).Script()
	require.NoError(t, err)

	v := BtcdScriptVerifier{}
	err = v.Verify(tx, 0, lockingScript, unlockScript)
	assert.Error(t, err)
}

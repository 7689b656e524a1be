// Package keystore manages the coordinator's operator secp256k1
// identity: the key used to sign queue advertisements and broadcast
// transactions, encrypted at rest under a passphrase.
package keystore

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"

	"filippo.io/age"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// Secp256k1Signer implements collab.OperatorSigner over btcec/v2, the
// same curve the original masternode broadcast signature used.
type Secp256k1Signer struct {
	priv *btcec.PrivateKey
}

// Generate creates a fresh operator identity.
func Generate() (*Secp256k1Signer, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("keystore: generating key: %w", err)
	}
	return &Secp256k1Signer{priv: priv}, nil
}

// Sign signs msg's sha256 digest. Returns a DER-encoded signature.
func (s *Secp256k1Signer) Sign(msg []byte) ([]byte, error) {
	digest := sha256.Sum256(msg)
	sig := ecdsa.Sign(s.priv, digest[:])
	return sig.Serialize(), nil
}

// Verify checks a DER-encoded signature against a compressed pubkey.
func (s *Secp256k1Signer) Verify(pubkey, msg, sig []byte) bool {
	pk, err := btcec.ParsePubKey(pubkey)
	if err != nil {
		return false
	}
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(msg)
	return parsed.Verify(digest[:], pk)
}

// PubKey returns the operator's compressed public key.
func (s *Secp256k1Signer) PubKey() []byte {
	return s.priv.PubKey().SerializeCompressed()
}

// Save encrypts the private key at path under passphrase, grounded on
// client/internal/crypto.go's EncryptShare/DecryptShare age usage,
// generalized from an X25519 recipient keypair to a passphrase-derived
// scrypt identity since the coordinator has exactly one operator
// secret to protect, not a share to hand to a remote recipient.
func (s *Secp256k1Signer) Save(path, passphrase string) error {
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("keystore: building recipient: %w", err)
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return fmt.Errorf("keystore: creating age writer: %w", err)
	}
	if _, err := w.Write(s.priv.Serialize()); err != nil {
		return fmt.Errorf("keystore: writing key material: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("keystore: closing age writer: %w", err)
	}

	return os.WriteFile(path, buf.Bytes(), 0o600)
}

// Load decrypts the operator key at path under passphrase.
func Load(path, passphrase string) (*Secp256k1Signer, error) {
	ciphertext, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keystore: reading %s: %w", path, err)
	}

	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("keystore: building identity: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, fmt.Errorf("keystore: decrypting %s: %w", path, err)
	}
	keyBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("keystore: reading decrypted key: %w", err)
	}

	priv, _ := btcec.PrivKeyFromBytes(keyBytes)
	return &Secp256k1Signer{priv: priv}, nil
}

// LoadOrGenerate loads the key at path, generating and saving a new
// one on first run — matching the teacher's NewServerConfig
// first-run-defaults pattern.
func LoadOrGenerate(path, passphrase string) (*Secp256k1Signer, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		signer, err := Generate()
		if err != nil {
			return nil, err
		}
		if err := signer.Save(path, passphrase); err != nil {
			return nil, err
		}
		return signer, nil
	}
	return Load(path, passphrase)
}

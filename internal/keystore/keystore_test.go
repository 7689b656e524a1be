package keystore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	s, err := Generate()
	require.NoError(t, err)

	msg := []byte("queue advert payload")
	sig, err := s.Sign(msg)
	require.NoError(t, err)
	assert.True(t, s.Verify(s.PubKey(), msg, sig))
	assert.False(t, s.Verify(s.PubKey(), []byte("tampered"), sig))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, err := Generate()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "operator.key")
	require.NoError(t, s.Save(path, "correct horse battery staple"))

	loaded, err := Load(path, "correct horse battery staple")
	require.NoError(t, err)
	assert.Equal(t, s.PubKey(), loaded.PubKey())

	msg := []byte("round trip")
	sig, err := loaded.Sign(msg)
	require.NoError(t, err)
	assert.True(t, s.Verify(s.PubKey(), msg, sig))
}

func TestLoadWrongPassphraseFails(t *testing.T) {
	s, err := Generate()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "operator.key")
	require.NoError(t, s.Save(path, "right passphrase"))

	_, err = Load(path, "wrong passphrase")
	assert.Error(t, err)
}

func TestLoadOrGenerateCreatesOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "operator.key")

	first, err := LoadOrGenerate(path, "pw")
	require.NoError(t, err)

	second, err := LoadOrGenerate(path, "pw")
	require.NoError(t, err)

	assert.Equal(t, first.PubKey(), second.PubKey())
}

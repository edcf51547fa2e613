package walletkey

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	msg := []byte("from|to|10|1|0")
	sig := kp.Sign(msg)
	require.Len(t, sig, SignatureLength)
	require.True(t, Verify(kp.Address(), msg, sig))
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	sig := kp.Sign([]byte("original"))
	if Verify(kp.Address(), []byte("tampered"), sig) {
		t.Fatalf("expected verification to fail for tampered message")
	}
}

func TestVerifyRejectsWrongLengthSignature(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	if Verify(kp.Address(), []byte("msg"), []byte{1, 2, 3}) {
		t.Fatalf("expected verification to fail for short signature")
	}
}

func TestSaveLoadKeyFile(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "node.key")
	require.NoError(t, kp.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	require.Equal(t, kp.Address(), loaded.Address())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

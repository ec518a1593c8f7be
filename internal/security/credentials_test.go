package security

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileBackedManager(t *testing.T) *CredentialManager {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FLAKEFORGE_USE_KEYRING", "false")

	cm, err := NewCredentialManager()
	require.NoError(t, err)
	require.False(t, cm.useKeyring)
	return cm
}

func TestStoreAndGetPassword(t *testing.T) {
	cm := newFileBackedManager(t)

	require.NoError(t, cm.StorePassword("warehouse-password", "s3cret"))

	got, err := cm.GetPassword("warehouse-password")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)
}

func TestCredentialIsEncryptedAtRest(t *testing.T) {
	cm := newFileBackedManager(t)

	require.NoError(t, cm.StorePassword("warehouse-password", "s3cret"))

	raw, err := os.ReadFile(cm.getCredentialPath("warehouse-password"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "s3cret")
}

func TestGetMissingCredential(t *testing.T) {
	cm := newFileBackedManager(t)

	_, err := cm.GetPassword("nope")
	assert.Error(t, err)
}

func TestDeleteCredential(t *testing.T) {
	cm := newFileBackedManager(t)

	require.NoError(t, cm.StorePassword("warehouse-password", "s3cret"))
	require.NoError(t, cm.DeleteCredential("warehouse-password"))

	_, err := cm.GetPassword("warehouse-password")
	assert.Error(t, err)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	cm := newFileBackedManager(t)

	ciphertext, err := cm.encrypt("hello warehouse")
	require.NoError(t, err)
	assert.NotEqual(t, "hello warehouse", ciphertext)

	plaintext, err := cm.decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "hello warehouse", plaintext)
}

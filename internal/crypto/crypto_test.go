package crypto

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashWithSaltIsDeterministic(t *testing.T) {
	a := HashWithSalt("hunter2", "salt")
	b := HashWithSalt("hunter2", "salt")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64) // hex-encoded sha256
}

func TestHashWithSaltDiffersBySaltAndInput(t *testing.T) {
	assert.NotEqual(t, HashWithSalt("a", "salt"), HashWithSalt("b", "salt"))
	assert.NotEqual(t, HashWithSalt("a", "salt1"), HashWithSalt("a", "salt2"))
}

func TestStoreHashAndDeriveKeyAreDistinct(t *testing.T) {
	storeHash := StoreHash("hunter2")
	key := DeriveKey(storeHash)
	assert.Len(t, key, 32)
	assert.NotEqual(t, storeHash, string(key))
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := DeriveKey(StoreHash("hunter2"))
	plaintext := []byte("id(INT)(PRIMARY),name(VARCHAR)\n1,alice\n2,bob")

	envelope, err := Encrypt(key, plaintext)
	require.NoError(t, err)
	assert.True(t, len(envelope) > ivSize)

	decrypted, err := Decrypt(key, envelope)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestEncryptProducesFreshIVEachTime(t *testing.T) {
	key := DeriveKey(StoreHash("hunter2"))
	a, err := Encrypt(key, []byte("same plaintext"))
	require.NoError(t, err)
	b, err := Encrypt(key, []byte("same plaintext"))
	require.NoError(t, err)
	assert.False(t, bytes.Equal(a[:ivSize], b[:ivSize]))
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	key := DeriveKey(StoreHash("hunter2"))
	wrongKey := DeriveKey(StoreHash("other"))
	envelope, err := Encrypt(key, []byte("secret"))
	require.NoError(t, err)

	_, err = Decrypt(wrongKey, envelope)
	assert.Error(t, err)
}

func TestAuthenticateSucceedsOnFirstTry(t *testing.T) {
	storedHash := StoreHash("hunter2")
	in := strings.NewReader("hunter2\n")
	var out bytes.Buffer

	key, wipe, err := Authenticate(in, &out, storedHash, DefaultMaxAttempts)
	require.NoError(t, err)
	assert.False(t, wipe)
	assert.Equal(t, DeriveKey(storedHash), key)
}

func TestAuthenticateRetriesThenSucceeds(t *testing.T) {
	storedHash := StoreHash("hunter2")
	in := strings.NewReader("wrong\nhunter2\n")
	var out bytes.Buffer

	key, wipe, err := Authenticate(in, &out, storedHash, DefaultMaxAttempts)
	require.NoError(t, err)
	assert.False(t, wipe)
	assert.NotEmpty(t, key)
	assert.Contains(t, out.String(), "Incorrect passphrase")
}

func TestAuthenticateWipesAfterMaxAttempts(t *testing.T) {
	storedHash := StoreHash("hunter2")
	in := strings.NewReader("a\nb\nc\n")
	var out bytes.Buffer

	_, wipe, err := Authenticate(in, &out, storedHash, 3)
	require.Error(t, err)
	assert.True(t, wipe)
	assert.Contains(t, out.String(), "Warning: one more incorrect attempt")
	assert.Contains(t, out.String(), "Erasing installation")
}

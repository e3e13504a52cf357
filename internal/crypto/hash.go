// Package crypto implements the installation's passphrase verification and
// the AES-256-CBC envelope used to encrypt table files on disk. The hashing
// and cipher constructions mirror utils.cpp's sha256WithSalt / aesEncrypt /
// aesDecrypt functions: no higher-level KDF is layered on top.
package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// StoreSalt and KeySalt are installation constants. StoreSalt protects the
// on-disk passphrase digest; KeySalt is mixed in when deriving the table
// encryption key from that digest so the two hashes can never collide.
const (
	StoreSalt = "qilodb-store-salt-v1"
	KeySalt   = "qilodb-key-salt-v1"
)

// rounds is the number of salted SHA-256 rounds applied by HashWithSalt,
// matching sha256WithSalt's fixed 10-round loop.
const rounds = 10

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// HashWithSalt implements the installation's salted iterated hash:
// h1 = SHA256(salt || x || salt); for i in 2..rounds, hi = SHA256(salt || h(i-1))
// when i is even, else SHA256(h(i-1) || salt). The output is the 64-char hex
// digest of the final round.
func HashWithSalt(x, salt string) string {
	current := sha256Hex(salt + x + salt)
	for i := 2; i <= rounds; i++ {
		if i%2 == 0 {
			current = sha256Hex(salt + current)
		} else {
			current = sha256Hex(current + salt)
		}
	}
	return current
}

// StoreHash is the digest stored in the passphrase file.
func StoreHash(passphrase string) string {
	return HashWithSalt(passphrase, StoreSalt)
}

// DeriveKey derives the 32-byte AES-256 key from a passphrase's store-hash:
// the key-salt hash of the store hash, truncated or NUL-padded to 32 bytes.
// It is computed once at startup (after a successful passphrase check) and
// held for the process lifetime.
func DeriveKey(storeHash string) []byte {
	keyHex := HashWithSalt(storeHash, KeySalt)
	key := make([]byte, 32)
	n := copy(key, []byte(keyHex))
	_ = n // remaining bytes stay zero (NUL padding) when keyHex is shorter than 32 bytes
	return key
}

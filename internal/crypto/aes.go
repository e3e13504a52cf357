package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"

	"github.com/tech-hunter-mainak/qilodb/internal/qerrors"
)

// ivSize is the AES block size: one cipher block of random bytes prefixes
// every envelope as its initialization vector.
const ivSize = aes.BlockSize

// Encrypt produces a table file's on-disk envelope: a fresh random IV
// followed by the AES-256-CBC ciphertext of plaintext under key. plaintext
// is PKCS#7-padded to the cipher's block size before encryption.
func Encrypt(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, qerrors.Cryptof("could not initialize cipher: %v", err)
	}

	padded := pkcs7Pad(plaintext, block.BlockSize())
	envelope := make([]byte, ivSize+len(padded))
	iv := envelope[:ivSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, qerrors.Cryptof("could not generate IV: %v", err)
	}

	mode := cipher.NewCBCEncrypter(block, iv)
	mode.CryptBlocks(envelope[ivSize:], padded)
	return envelope, nil
}

// Decrypt reverses Encrypt: it splits the leading IV from envelope,
// decrypts the remainder under key, and strips the PKCS#7 padding.
func Decrypt(key, envelope []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, qerrors.Cryptof("could not initialize cipher: %v", err)
	}
	if len(envelope) < ivSize || (len(envelope)-ivSize)%block.BlockSize() != 0 {
		return nil, qerrors.Cryptof("malformed ciphertext envelope")
	}

	iv := envelope[:ivSize]
	ciphertext := envelope[ivSize:]
	plaintext := make([]byte, len(ciphertext))

	mode := cipher.NewCBCDecrypter(block, iv)
	mode.CryptBlocks(plaintext, ciphertext)

	return pkcs7Unpad(plaintext)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padLen)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}
	return padded
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, qerrors.Cryptof("empty plaintext")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > len(data) {
		return nil, qerrors.Cryptof("invalid padding")
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, qerrors.Cryptof("invalid padding")
		}
	}
	return data[:len(data)-padLen], nil
}

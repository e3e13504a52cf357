package crypto

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tech-hunter-mainak/qilodb/internal/qerrors"
)

// PassphraseFileName is the name of the file, directly inside the data root,
// that holds the single-line store-salt digest of the operator's passphrase.
const PassphraseFileName = "pass.txt"

// DefaultMaxAttempts is the number of passphrase attempts allowed before
// the installation's data root is wiped (three strikes, the next attempt
// wipes), unless overridden by installation settings.
const DefaultMaxAttempts = 4

// ReadStoredHash reads the one-line digest from the passphrase file at path.
// A missing file is reported as a program_error (installation corruption):
// the passphrase file is expected to exist once initialized.
func ReadStoredHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", qerrors.Programf("could not read passphrase file: %v", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteStoredHash overwrites the passphrase file with the store-salt digest
// of passphrase.
func WriteStoredHash(path, passphrase string) error {
	hash := StoreHash(passphrase)
	if err := os.WriteFile(path, []byte(hash+"\n"), 0o600); err != nil {
		return qerrors.Programf("could not write passphrase file: %v", err)
	}
	return nil
}

// InitStoredHash creates the passphrase file only if it does not already
// exist, used on first launch of a fresh installation.
func InitStoredHash(path, passphrase string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return WriteStoredHash(path, passphrase)
}

// Authenticate runs the startup passphrase protocol against in/out: prompt
// up to maxAttempts times, comparing the store-salt hash of each attempt to
// storedHash. On success it returns the derived 32-byte AES key. On the
// final mismatched attempt it returns wipeRequested=true so the caller can
// erase every entry under the data root. A failed attempt before the
// second-to-last gets a retry prompt; the second-to-last gets a warning.
func Authenticate(in io.Reader, out io.Writer, storedHash string, maxAttempts int) (key []byte, wipeRequested bool, err error) {
	scanner := bufio.NewScanner(in)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		fmt.Fprint(out, "Enter passphrase: ")
		if !scanner.Scan() {
			return nil, false, qerrors.Programf("no passphrase provided")
		}
		candidate := scanner.Text()
		if StoreHash(candidate) == storedHash {
			return DeriveKey(storedHash), false, nil
		}

		switch {
		case attempt == maxAttempts:
			fmt.Fprintln(out, "Too many incorrect attempts. Erasing installation.")
			return nil, true, qerrors.New(qerrors.Crypto, "too many incorrect passphrase attempts")
		case attempt == maxAttempts-1:
			fmt.Fprintln(out, "Warning: one more incorrect attempt will erase this installation.")
		default:
			fmt.Fprintln(out, "Incorrect passphrase, try again.")
		}
	}
	return nil, true, qerrors.New(qerrors.Crypto, "too many incorrect passphrase attempts")
}

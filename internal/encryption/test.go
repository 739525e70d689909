package encryption

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"examtrack/internal/exams"
)

// sealMarker opens every snapshot written by TestEncryptor. Restoring a file
// without it means the snapshot came from a different encryptor.
var sealMarker = []byte("EXAMENC\x00")

// ErrNotSealed is returned when a snapshot lacks the TestEncryptor marker.
var ErrNotSealed = errors.New("snapshot was not sealed by the test encryptor")

// TestEncryptor stands in for age when backups run under encryption type
// "test". Snapshots are stored as marker plus plaintext JSON, so a backup
// directory stays readable by hand.
//
// It follows the same passphrase rules as AgeEncryptor once Setup has run:
// the passphrase must be non-empty, Setup works once, and Unlock accepts only
// that passphrase. Before Setup any passphrase unlocks.
type TestEncryptor struct {
	mu         sync.Mutex
	passphrase string
	keyed      bool
}

var _ exams.Encryptor = (*TestEncryptor)(nil)

func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

func (e *TestEncryptor) Setup(passphrase string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.keyed {
		return ErrKeysExist
	}
	if passphrase == "" {
		return fmt.Errorf("passphrase must not be empty")
	}
	e.passphrase, e.keyed = passphrase, true
	return nil
}

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(sealMarker); err != nil {
		return fmt.Errorf("writing snapshot marker: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

func (e *TestEncryptor) Unlock(passphrase string) (exams.DecryptionContext, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.keyed && passphrase != e.passphrase {
		return nil, fmt.Errorf("unlocking snapshots: wrong passphrase")
	}
	return unsealer{}, nil
}

// IsConfigured is always true; sealing needs no keys.
func (e *TestEncryptor) IsConfigured() bool { return true }

type unsealer struct{}

func (unsealer) Decrypt(r io.Reader, w io.Writer) error {
	marker := make([]byte, len(sealMarker))
	if _, err := io.ReadFull(r, marker); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrNotSealed
		}
		return fmt.Errorf("reading snapshot marker: %w", err)
	}
	if !bytes.Equal(marker, sealMarker) {
		return ErrNotSealed
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}
	return nil
}

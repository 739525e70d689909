package exams

import (
	"context"
	"io"
)

// Vault stores encrypted snapshots of the exam collection off the device.
type Vault interface {
	// PutSnapshot stores size bytes read from r under name, replacing any
	// snapshot with the same name.
	PutSnapshot(ctx context.Context, name string, r io.Reader, size int64) error

	// GetSnapshot writes the snapshot stored under name to w.
	GetSnapshot(ctx context.Context, name string, w io.Writer) error

	// ListSnapshots returns the names of all stored snapshots, oldest first.
	ListSnapshots(ctx context.Context) ([]string, error)

	// ValidateSetup verifies that the vault is reachable and usable.
	ValidateSetup(ctx context.Context) error
}

// Encryptor protects snapshots. Encryption only needs the public key;
// decryption needs the passphrase that protects the private key.
type Encryptor interface {
	// Setup generates a key pair and protects the private key with passphrase.
	Setup(passphrase string) error

	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key and returns a context able to decrypt
	// snapshots. It fails if the passphrase is wrong.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured reports whether the key files exist.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key in memory.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}

package testutil

import (
	"examtrack/internal/encryption"
	"examtrack/internal/exams"
)

// NewTestEncryptor creates a deterministic, key-less encryptor.
func NewTestEncryptor() exams.Encryptor {
	return encryption.NewTestEncryptor()
}

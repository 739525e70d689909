package testutil

import (
	"examtrack/internal/exams"
	"examtrack/internal/vault"
)

// NewTestVault creates a new in-memory vault.
func NewTestVault() exams.Vault {
	return vault.NewMemoryVault("test-vault")
}

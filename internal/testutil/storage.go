package testutil

import (
	"sync"

	"examtrack/internal/exams"
	"examtrack/internal/storage"
)

// NewTestKV returns an empty in-memory key-value store.
func NewTestKV() exams.KVStore {
	return storage.NewMemoryStore()
}

// FlakyKV wraps a KVStore and fails every Set while failing is true.
type FlakyKV struct {
	exams.KVStore

	mu      sync.Mutex
	failing bool
	err     error
}

func NewFlakyKV(inner exams.KVStore, err error) *FlakyKV {
	return &FlakyKV{KVStore: inner, err: err}
}

// SetFailing turns write failures on or off.
func (f *FlakyKV) SetFailing(failing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = failing
}

func (f *FlakyKV) Set(key string, value []byte) error {
	f.mu.Lock()
	failing := f.failing
	f.mu.Unlock()
	if failing {
		return f.err
	}
	return f.KVStore.Set(key, value)
}

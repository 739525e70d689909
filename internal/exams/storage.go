package exams

// Storage keys used in the key-value store.
const (
	ExamsKey = "exams"
	ThemeKey = "theme"
)

// KVStore is the persistent key-value blob store the exam collection lives in.
// The whole collection is stored as one JSON document under ExamsKey.
type KVStore interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(key string) (value []byte, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// Close releases the underlying connection.
	Close() error
}

package storage

import (
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"examtrack/internal/exams"
)

// backends returns a fresh instance of every KVStore implementation.
func backends(t *testing.T) map[string]exams.KVStore {
	t.Helper()

	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}

	mr := miniredis.RunT(t)
	redisStore, err := NewRedisStore(mr.Addr(), "", 0, "examtrack:")
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}

	all := map[string]exams.KVStore{
		"memory": NewMemoryStore(),
		"sqlite": sqliteStore,
		"redis":  redisStore,
	}
	t.Cleanup(func() {
		for _, s := range all {
			s.Close()
		}
	})
	return all
}

func TestKVStore_GetSetDelete(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := kv.Get("exams"); err != nil || ok {
				t.Fatalf("Get(absent) = ok %v, err %v; want not found", ok, err)
			}

			if err := kv.Set("exams", []byte(`[{"id":"a"}]`)); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			got, ok, err := kv.Get("exams")
			if err != nil || !ok {
				t.Fatalf("Get() = ok %v, err %v", ok, err)
			}
			if string(got) != `[{"id":"a"}]` {
				t.Errorf("Get() = %s", got)
			}

			if err := kv.Set("exams", []byte(`[]`)); err != nil {
				t.Fatalf("Set(overwrite) error = %v", err)
			}
			got, _, _ = kv.Get("exams")
			if string(got) != `[]` {
				t.Errorf("Get() after overwrite = %s, want []", got)
			}

			if err := kv.Delete("exams"); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, ok, _ := kv.Get("exams"); ok {
				t.Error("key still present after Delete()")
			}
			if err := kv.Delete("exams"); err != nil {
				t.Errorf("Delete(absent) error = %v", err)
			}
		})
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")

	first, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	if err := first.Set("theme", []byte("dark")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	first.Close()

	second, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer second.Close()

	got, ok, err := second.Get("theme")
	if err != nil || !ok || string(got) != "dark" {
		t.Errorf("Get() after reopen = %q, %v, %v", got, ok, err)
	}
}

func TestRedisStore_UsesPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	kv, err := NewRedisStore(mr.Addr(), "", 0, "examtrack:")
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer kv.Close()

	if err := kv.Set("exams", []byte("[]")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := mr.Get("examtrack:exams")
	if err != nil {
		t.Fatalf("miniredis Get() error = %v", err)
	}
	if got != "[]" {
		t.Errorf("stored value = %q, want []", got)
	}
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	kv := NewMemoryStore()
	value := []byte("light")
	kv.Set("theme", value)
	value[0] = 'n'

	got, _, _ := kv.Get("theme")
	if string(got) != "light" {
		t.Errorf("Get() = %q, stored value was aliased", got)
	}
}

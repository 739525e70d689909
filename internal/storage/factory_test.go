package storage

import (
	"testing"

	"github.com/alicebob/miniredis/v2"

	"examtrack/internal/config"
)

func TestNewKVStoreFromConfig(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		cfg     config.StorageConfig
		wantErr bool
	}{
		{name: "memory", cfg: config.StorageConfig{Type: "memory"}},
		{name: "sqlite", cfg: config.StorageConfig{Type: "sqlite", DataDir: t.TempDir()}},
		{name: "empty type defaults to sqlite", cfg: config.StorageConfig{DataDir: t.TempDir()}},
		{name: "sqlite without data_dir", cfg: config.StorageConfig{Type: "sqlite"}, wantErr: true},
		{name: "redis", cfg: config.StorageConfig{Type: "redis", RedisAddr: mr.Addr()}},
		{name: "redis without addr", cfg: config.StorageConfig{Type: "redis"}, wantErr: true},
		{name: "unknown", cfg: config.StorageConfig{Type: "floppy"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewKVStoreFromConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewKVStoreFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if got != nil {
					t.Error("NewKVStoreFromConfig() should return nil on error")
				}
				return
			}
			if got == nil {
				t.Fatal("NewKVStoreFromConfig() returned nil")
			}
			got.Close()
		})
	}
}

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir:  "/home/user/.local/share/examtrack",
		LogDir:   "/home/user/.local/share/examtrack/log",
		LogLevel: "debug",
		Storage: StorageConfig{
			Type:        "redis",
			RedisAddr:   "localhost:6379",
			RedisDB:     2,
			RedisPrefix: "examtrack:",
		},
		Attachments: AttachmentsConfig{MaxSize: 2048},
		StudyTips:   StudyTipsConfig{Provider: "gemini", Model: "gemini-2.5-flash", APIKeyEnv: "GEMINI_KEY"},
		Encryption: EncryptionConfig{
			PublicKeyPath:  "/home/user/.local/share/examtrack/keys/examtrack.pub",
			PrivateKeyPath: "/home/user/.local/share/examtrack/keys/examtrack.key",
		},
		Vaults: []VaultConfig{
			{Type: "s3", Name: "cloud", S3Bucket: "exam-backups", S3Region: "ap-south-1"},
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", got.LogLevel, "debug")
	}
	if got.Storage.Type != "redis" || got.Storage.RedisAddr != "localhost:6379" || got.Storage.RedisDB != 2 {
		t.Errorf("Storage = %+v, want %+v", got.Storage, original.Storage)
	}
	if got.Attachments.MaxSize != 2048 {
		t.Errorf("Attachments.MaxSize = %d, want %d", got.Attachments.MaxSize, 2048)
	}
	if got.StudyTips.APIKeyEnv != "GEMINI_KEY" {
		t.Errorf("StudyTips.APIKeyEnv = %q, want %q", got.StudyTips.APIKeyEnv, "GEMINI_KEY")
	}
	if got.Encryption.PrivateKeyPath != original.Encryption.PrivateKeyPath {
		t.Errorf("Encryption.PrivateKeyPath = %q, want %q", got.Encryption.PrivateKeyPath, original.Encryption.PrivateKeyPath)
	}
	if len(got.Vaults) != 1 {
		t.Fatalf("len(Vaults) = %d, want 1", len(got.Vaults))
	}
	if got.Vaults[0].S3Bucket != "exam-backups" {
		t.Errorf("Vault.S3Bucket = %q, want %q", got.Vaults[0].S3Bucket, "exam-backups")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/examtrack")

	if cfg.LogDir != filepath.Join("/data/examtrack", "log") {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if cfg.Storage.Type != "sqlite" || cfg.Storage.DataDir != filepath.Join("/data/examtrack", "data") {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Encryption.PublicKeyPath != filepath.Join("/data/examtrack", "keys", "examtrack.pub") {
		t.Errorf("Encryption.PublicKeyPath = %q", cfg.Encryption.PublicKeyPath)
	}
	if len(cfg.Vaults) != 1 || cfg.Vaults[0].Type != "filesystem" {
		t.Errorf("Vaults = %+v, want one filesystem vault", cfg.Vaults)
	}
	if cfg.StudyTips.Model != DefaultStudyTipsModel {
		t.Errorf("StudyTips.Model = %q", cfg.StudyTips.Model)
	}
}

func TestConfig_AttachmentMaxSize(t *testing.T) {
	tests := []struct {
		name string
		size int64
		want int64
	}{
		{name: "configured", size: 512, want: 512},
		{name: "zero falls back", size: 0, want: DefaultMaxAttachmentSize},
		{name: "negative falls back", size: -1, want: DefaultMaxAttachmentSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Attachments: AttachmentsConfig{MaxSize: tt.size}}
			if got := cfg.AttachmentMaxSize(); got != tt.want {
				t.Errorf("AttachmentMaxSize() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Run("writes a readable config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "examtrack.toml")
		if err := Init(path, NewConfig("/data/examtrack")); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.BaseDir != "/data/examtrack" {
			t.Errorf("BaseDir = %q", got.BaseDir)
		}
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "examtrack.toml")
		if err := os.WriteFile(path, []byte("base_dir = \"x\"\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := Init(path, NewConfig("/data")); err == nil {
			t.Error("Init() expected error for existing file")
		}
	})
}

func TestReadFromFile_Missing(t *testing.T) {
	if _, err := ReadFromFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("ReadFromFile() expected error for missing file")
	}
}

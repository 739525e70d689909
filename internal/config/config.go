package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for examtrack.
type Config struct {
	BaseDir     string            `toml:"base_dir"`
	LogDir      string            `toml:"log_dir"`
	LogLevel    string            `toml:"log_level"` // debug, info (default), warn, error
	Storage     StorageConfig     `toml:"storage"`
	Attachments AttachmentsConfig `toml:"attachments"`
	StudyTips   StudyTipsConfig   `toml:"study_tips"`
	Encryption  EncryptionConfig  `toml:"encryption"`
	Vaults      []VaultConfig     `toml:"vaults"`
}

// StorageConfig selects the key-value store that holds the exam collection.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StorageConfig struct {
	Type    string `toml:"type"`               // "sqlite", "memory" or "redis"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite

	// Redis-specific fields (only used when Type == "redis")
	RedisAddr     string `toml:"redis_addr,omitempty"`
	RedisPassword string `toml:"redis_password,omitempty"`
	RedisDB       int    `toml:"redis_db,omitempty"`
	RedisPrefix   string `toml:"redis_prefix,omitempty"`
}

// AttachmentsConfig limits what can be attached to an exam.
type AttachmentsConfig struct {
	MaxSize int64 `toml:"max_size"` // max bytes per file; must be positive, defaults to 10MB
}

// StudyTipsConfig configures the text-generation service.
type StudyTipsConfig struct {
	Provider  string `toml:"provider"`           // "gemini" (default) or "none"
	Model     string `toml:"model"`              // defaults to gemini-2.5-flash
	BaseURL   string `toml:"base_url,omitempty"` // override for testing or proxies
	APIKeyEnv string `toml:"api_key_env"`        // environment variable holding the key, defaults to API_KEY
}

// EncryptionConfig holds paths to the age key pair used for snapshot encryption.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default) or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// VaultConfig represents configuration for a snapshot vault.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type VaultConfig struct {
	Type string `toml:"type"` // "memory", "filesystem", "s3" or "minio"
	Name string `toml:"name"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSVaultRoot string `toml:"fs_vault_root,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`          // S3-compatible services only
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`     // optional; default credential chain otherwise
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"` // optional

	// MinIO-specific fields (only used when Type == "minio")
	MinioEndpoint  string `toml:"minio_endpoint,omitempty"`
	MinioBucket    string `toml:"minio_bucket,omitempty"`
	MinioAccessKey string `toml:"minio_access_key,omitempty"`
	MinioSecretKey string `toml:"minio_secret_key,omitempty"`
	MinioUseSSL    bool   `toml:"minio_use_ssl,omitempty"`
}

const (
	DefaultMaxAttachmentSize = 10 << 20
	DefaultStudyTipsModel    = "gemini-2.5-flash"
	DefaultAPIKeyEnv         = "API_KEY"
)

// NewConfig creates a new Config rooted at baseDir with default settings:
// SQLite storage, age keys under keys/, and a filesystem vault under vault/.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir:  baseDir,
		LogDir:   filepath.Join(baseDir, "log"),
		LogLevel: "info",
		Storage: StorageConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "data"),
		},
		Attachments: AttachmentsConfig{MaxSize: DefaultMaxAttachmentSize},
		StudyTips: StudyTipsConfig{
			Provider:  "gemini",
			Model:     DefaultStudyTipsModel,
			APIKeyEnv: DefaultAPIKeyEnv,
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "examtrack.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "examtrack.key"),
		},
		Vaults: []VaultConfig{
			{Type: "filesystem", Name: "local", FSVaultRoot: filepath.Join(baseDir, "vault")},
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to path. It refuses to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

// AttachmentMaxSize returns the configured per-file limit or the default.
func (c *Config) AttachmentMaxSize() int64 {
	if c.Attachments.MaxSize <= 0 {
		return DefaultMaxAttachmentSize
	}
	return c.Attachments.MaxSize
}

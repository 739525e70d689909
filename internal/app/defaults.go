package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// GetDefaults returns default paths, checking environment variables first:
//   - EXAMTRACK_CONFIG_PATH: config file (default ~/.config/examtrack.toml)
//   - EXAMTRACK_HOME: data directory (default ~/.local/share/examtrack)
func GetDefaults() (map[string]string, error) {
	configPath, err := envOrHome("EXAMTRACK_CONFIG_PATH", ".config", "examtrack.toml")
	if err != nil {
		return nil, err
	}
	baseDir, err := envOrHome("EXAMTRACK_HOME", ".local", "share", "examtrack")
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

func envOrHome(env string, rel ...string) (string, error) {
	if path := os.Getenv(env); path != "" {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(append([]string{homeDir}, rel...)...), nil
}

// LoadDotEnv loads variables from a .env file without overriding ones that
// are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

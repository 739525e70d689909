package vault

import (
	"context"
	"fmt"
	"testing"

	"examtrack/internal/config"
)

func TestNewVaultFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.VaultConfig
		want    string
		wantErr bool
	}{
		{name: "memory", cfg: config.VaultConfig{Type: "memory", Name: "m"}, want: "*vault.MemoryVault"},
		{name: "filesystem", cfg: config.VaultConfig{Type: "filesystem", Name: "local"}, want: "*vault.FileSystemVault"},
		{name: "filesystem without root", cfg: config.VaultConfig{Type: "filesystem"}, wantErr: true},
		{
			name: "s3 with static credentials",
			cfg: config.VaultConfig{
				Type: "s3", Name: "cloud", S3Bucket: "exam-backups", S3Region: "ap-south-1",
				S3AccessKeyID: "AKIDEXAMPLE", S3SecretAccessKey: "secret",
			},
			want: "*vault.S3Vault",
		},
		{name: "s3 without bucket", cfg: config.VaultConfig{Type: "s3"}, wantErr: true},
		{name: "minio without endpoint", cfg: config.VaultConfig{Type: "minio", MinioBucket: "b"}, wantErr: true},
		{name: "unknown", cfg: config.VaultConfig{Type: "ftp"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cfg.Type == "filesystem" && !tt.wantErr {
				tt.cfg.FSVaultRoot = t.TempDir()
			}
			got, err := NewVaultFromConfig(context.Background(), tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewVaultFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if typeName(got) != tt.want {
				t.Errorf("NewVaultFromConfig() type = %s, want %s", typeName(got), tt.want)
			}
		})
	}
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}

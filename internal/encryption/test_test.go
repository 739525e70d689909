package encryption

import (
	"bytes"
	"errors"
	"testing"

	"examtrack/internal/config"
)

func TestTestEncryptor_RoundTrip(t *testing.T) {
	e := NewTestEncryptor()
	if err := e.Setup("s3cret"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if !e.IsConfigured() {
		t.Fatal("IsConfigured() = false after Setup")
	}

	input := []byte(`[{"id":"a"}]`)
	var sealed bytes.Buffer
	if err := e.Encrypt(bytes.NewReader(input), &sealed); err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if bytes.Equal(sealed.Bytes(), input) {
		t.Error("output equals input")
	}

	dc, err := e.Unlock("s3cret")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	var plain bytes.Buffer
	if err := dc.Decrypt(&sealed, &plain); err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if !bytes.Equal(plain.Bytes(), input) {
		t.Errorf("Decrypt() = %q, want %q", plain.Bytes(), input)
	}
}

func TestTestEncryptor_RejectsForeignData(t *testing.T) {
	dc, _ := NewTestEncryptor().Unlock("")
	var out bytes.Buffer
	for _, in := range []string{"plain json, not sealed", "abc", ""} {
		if err := dc.Decrypt(bytes.NewReader([]byte(in)), &out); !errors.Is(err, ErrNotSealed) {
			t.Errorf("Decrypt(%q) error = %v, want ErrNotSealed", in, err)
		}
	}
}

func TestTestEncryptor_PassphraseRules(t *testing.T) {
	e := NewTestEncryptor()
	if _, err := e.Unlock("anything"); err != nil {
		t.Fatalf("Unlock() before Setup error = %v", err)
	}
	if err := e.Setup(""); err == nil {
		t.Error("Setup(\"\") expected error")
	}
	if err := e.Setup("correct"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := e.Setup("again"); !errors.Is(err, ErrKeysExist) {
		t.Errorf("second Setup() error = %v, want ErrKeysExist", err)
	}
	if _, err := e.Unlock("wrong"); err == nil {
		t.Error("Unlock() with wrong passphrase expected error")
	}
	if _, err := e.Unlock("correct"); err != nil {
		t.Errorf("Unlock() error = %v", err)
	}
}

func TestNewEncryptorFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.EncryptionConfig
		wantErr bool
	}{
		{name: "age", cfg: config.EncryptionConfig{Type: "age", PublicKeyPath: "a.pub", PrivateKeyPath: "a.key"}},
		{name: "default is age", cfg: config.EncryptionConfig{PublicKeyPath: "a.pub", PrivateKeyPath: "a.key"}},
		{name: "age without paths", cfg: config.EncryptionConfig{Type: "age"}, wantErr: true},
		{name: "test", cfg: config.EncryptionConfig{Type: "test"}},
		{name: "unknown", cfg: config.EncryptionConfig{Type: "rot13"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewEncryptorFromConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewEncryptorFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got == nil {
				t.Error("NewEncryptorFromConfig() returned nil")
			}
		})
	}
}

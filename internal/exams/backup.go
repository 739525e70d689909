package exams

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"examtrack/internal/model"
)

const snapshotTimeFormat = "20060102T150405Z"

// Backups copies encrypted snapshots of the collection to a vault and
// restores them.
type Backups struct {
	store     *Store
	vault     Vault
	encryptor Encryptor
	logger    Logger
	clock     Clock
}

func NewBackups(store *Store, vault Vault, encryptor Encryptor, logger Logger, clock Clock) *Backups {
	return &Backups{store: store, vault: vault, encryptor: encryptor, logger: logger, clock: clock}
}

// Backup encrypts the current collection and stores it under a name derived
// from the current time. It returns that name.
func (b *Backups) Backup(ctx context.Context) (string, error) {
	if !b.encryptor.IsConfigured() {
		return "", fmt.Errorf("encryption keys are not set up (run `examtrack keys init`)")
	}

	exams := b.store.Exams()
	plain, err := json.Marshal(exams)
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}

	var sealed bytes.Buffer
	if err := b.encryptor.Encrypt(bytes.NewReader(plain), &sealed); err != nil {
		return "", fmt.Errorf("encrypting snapshot: %w", err)
	}

	name := "exams-" + b.clock.Now().UTC().Format(snapshotTimeFormat) + ".json.age"
	if err := b.vault.PutSnapshot(ctx, name, &sealed, int64(sealed.Len())); err != nil {
		return "", fmt.Errorf("uploading snapshot: %w", err)
	}

	b.logger.Info("snapshot stored", "name", name, "exams", len(exams))
	return name, nil
}

// List returns the stored snapshot names, oldest first.
func (b *Backups) List(ctx context.Context) ([]string, error) {
	names, err := b.vault.ListSnapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Restore replaces the collection with the snapshot stored under name.
// It returns the number of restored exams.
func (b *Backups) Restore(ctx context.Context, name, passphrase string) (int, error) {
	dc, err := b.encryptor.Unlock(passphrase)
	if err != nil {
		return 0, fmt.Errorf("unlocking private key: %w", err)
	}

	var sealed bytes.Buffer
	if err := b.vault.GetSnapshot(ctx, name, &sealed); err != nil {
		return 0, fmt.Errorf("downloading snapshot: %w", err)
	}

	var plain bytes.Buffer
	if err := dc.Decrypt(&sealed, &plain); err != nil {
		return 0, fmt.Errorf("decrypting snapshot: %w", err)
	}

	var exams []model.Exam
	if err := json.Unmarshal(plain.Bytes(), &exams); err != nil {
		return 0, fmt.Errorf("decoding snapshot: %w", err)
	}

	if err := b.store.Replace(exams); err != nil {
		return 0, err
	}

	b.logger.Info("snapshot restored", "name", name, "exams", len(exams))
	return len(exams), nil
}

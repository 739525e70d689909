package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"examtrack/internal/attachment"
	"examtrack/internal/config"
	"examtrack/internal/encryption"
	"examtrack/internal/exams"
	"examtrack/internal/model"
	"examtrack/internal/storage"
	"examtrack/internal/studytips"
	"examtrack/internal/transfer"
	"examtrack/internal/vault"
)

// ExamApp is the application layer between the CLI and the exam store.
// It constructs all dependencies from config, exposes operations that take
// raw CLI values, and releases storage and the log file on Close.
type ExamApp struct {
	cfg       *config.Config
	kv        exams.KVStore
	store     *exams.Store
	settings  *exams.Settings
	timeline  *exams.TimelineCache
	importer  *transfer.Importer
	tips      studytips.Generator
	encryptor exams.Encryptor
	logger    exams.Logger
	clock     exams.Clock
	logFile   *os.File

	// created on first use; remote vaults connect when constructed
	backups *exams.Backups
}

// Deps overrides collaborators that NewExamApp would otherwise build from
// config. Zero fields are built as usual.
type Deps struct {
	KV        exams.KVStore
	Vault     exams.Vault
	Encryptor exams.Encryptor
	Tips      studytips.Generator
	Logger    exams.Logger
	Clock     exams.Clock
	IDs       exams.IDGenerator
}

// NewExamApp creates a fully wired ExamApp from cfg. operation names the CLI
// command being run and tags every log line. The caller must call Close.
func NewExamApp(cfg *config.Config, operation string) (*ExamApp, error) {
	return NewExamAppWith(cfg, operation, Deps{})
}

// NewExamAppWith is NewExamApp with some collaborators supplied by the caller.
func NewExamAppWith(cfg *config.Config, operation string, deps Deps) (*ExamApp, error) {
	a := &ExamApp{cfg: cfg, clock: deps.Clock, logger: deps.Logger}
	if a.clock == nil {
		a.clock = exams.RealClock{}
	}
	ids := deps.IDs
	if ids == nil {
		ids = exams.UUIDGenerator{}
	}

	if a.logger == nil {
		opID := operation + "-" + time.Now().UTC().Format("20060102T150405Z")
		logger, logFile, err := newLogger(cfg.LogDir, opID, parseLevel(cfg.LogLevel))
		if err != nil {
			return nil, fmt.Errorf("creating logger: %w", err)
		}
		a.logger = &slogAdapter{l: logger}
		a.logFile = logFile
	}

	a.kv = deps.KV
	if a.kv == nil {
		kv, err := storage.NewKVStoreFromConfig(cfg.Storage)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("creating storage: %w", err)
		}
		a.kv = kv
	}

	a.encryptor = deps.Encryptor
	if a.encryptor == nil {
		enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("creating encryptor: %w", err)
		}
		a.encryptor = enc
	}

	a.tips = deps.Tips
	if a.tips == nil {
		gen, err := studytips.NewGeneratorFromConfig(cfg.StudyTips, os.LookupEnv)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("creating study tips generator: %w", err)
		}
		a.tips = gen
	}

	codec := attachment.NewCodec(cfg.AttachmentMaxSize())
	a.store = exams.NewStore(a.kv, codec, exams.NewLogNotifier(a.logger), a.logger, a.clock, ids)
	if err := a.store.Initialize(); err != nil {
		a.Close()
		return nil, err
	}

	a.settings = exams.NewSettings(a.kv, a.logger)
	a.timeline = exams.NewTimelineCache(a.store)
	a.importer = transfer.NewImporter(a.clock, ids)
	if deps.Vault != nil {
		a.backups = exams.NewBackups(a.store, deps.Vault, a.encryptor, a.logger, a.clock)
	}
	return a, nil
}

// Close releases storage and the log file.
func (a *ExamApp) Close() error {
	var firstErr error
	if a.kv != nil {
		if err := a.kv.Close(); err != nil {
			firstErr = fmt.Errorf("closing storage: %w", err)
		}
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

// Exams returns the whole collection in insertion order.
func (a *ExamApp) Exams() []model.Exam {
	return a.store.Exams()
}

// Get resolves id, which may be a unique prefix of a full id.
func (a *ExamApp) Get(id string) (model.Exam, error) {
	full, err := a.resolveID(id)
	if err != nil {
		return model.Exam{}, err
	}
	exam, ok := a.store.Get(full)
	if !ok {
		return model.Exam{}, fmt.Errorf("%s: %w", id, exams.ErrNotFound)
	}
	return exam, nil
}

func (a *ExamApp) resolveID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("exam id is required")
	}
	if _, ok := a.store.Get(id); ok {
		return id, nil
	}

	var matches []string
	for _, e := range a.store.Exams() {
		if strings.HasPrefix(e.ID, id) {
			matches = append(matches, e.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s: %w", id, exams.ErrNotFound)
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("id prefix %q is ambiguous (%d exams match)", id, len(matches))
}

// AddExam creates an exam from draft, attaching the files at paths.
func (a *ExamApp) AddExam(ctx context.Context, draft model.Draft, paths []string) (model.Exam, error) {
	return a.store.Create(ctx, draft, attachment.OSFiles(paths))
}

// EditRequest describes an edit from the command line. Edit is applied to
// the exam's current draft; attachments named in Remove are dropped and the
// files in Add are appended.
type EditRequest struct {
	Edit   func(*model.Draft) error
	Add    []string
	Remove []string
}

func (a *ExamApp) EditExam(ctx context.Context, id string, req EditRequest) (model.Exam, error) {
	exam, err := a.Get(id)
	if err != nil {
		return model.Exam{}, err
	}

	draft := model.DraftFrom(exam)
	if req.Edit != nil {
		if err := req.Edit(&draft); err != nil {
			return model.Exam{}, err
		}
	}

	remove := make(map[string]bool, len(req.Remove))
	for _, name := range req.Remove {
		remove[name] = true
	}
	var inputs []exams.AttachmentInput
	for _, att := range exam.Attachments {
		if remove[att.Name] {
			delete(remove, att.Name)
			continue
		}
		inputs = append(inputs, exams.Keep(att))
	}
	for _, name := range req.Remove {
		if remove[name] {
			return model.Exam{}, fmt.Errorf("exam %s has no attachment named %q", exam.ExamName, name)
		}
	}
	for _, f := range attachment.OSFiles(req.Add) {
		inputs = append(inputs, exams.NewFile(f))
	}

	return a.store.Update(ctx, exam.ID, draft, inputs)
}

// SetStatus changes an exam's status; status is matched case-insensitively.
func (a *ExamApp) SetStatus(ctx context.Context, id, status string) (model.Exam, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return model.Exam{}, err
	}
	full, err := a.resolveID(id)
	if err != nil {
		return model.Exam{}, err
	}
	return a.store.SetStatus(ctx, full, st)
}

// ParseStatus matches s against the known statuses, ignoring case.
func ParseStatus(s string) (model.Status, error) {
	for _, st := range model.Statuses {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// ParseCategory matches s against the known categories, ignoring case.
func ParseCategory(s string) (model.Category, error) {
	for _, c := range model.Categories {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

func (a *ExamApp) DeleteExam(id string) (model.Exam, error) {
	exam, err := a.Get(id)
	if err != nil {
		return model.Exam{}, err
	}
	return exam, a.store.Delete(exam.ID)
}

func (a *ExamApp) ClearAll() error {
	return a.store.ClearAll()
}

// List returns the exams on a dashboard tab that match query.
func (a *ExamApp) List(tab, query string) ([]model.Exam, error) {
	bucket, err := exams.ParseBucket(tab)
	if err != nil {
		return nil, err
	}
	return exams.Filter(a.store.Exams(), bucket, query), nil
}

// Timeline returns every milestone in date order.
func (a *ExamApp) Timeline() []model.TimelineEvent {
	return a.timeline.Events()
}

// Upcoming returns the next limit milestones from today on.
func (a *ExamApp) Upcoming(limit int) []model.TimelineEvent {
	return exams.UpcomingEvents(a.timeline.Events(), model.DateOf(a.clock.Now()), limit)
}

// Month is one rendered calendar month.
type Month struct {
	Year   int
	Month  time.Month
	Weeks  [][7]int
	Events map[int][]model.TimelineEvent
}

func (a *ExamApp) Calendar(year int, month time.Month) Month {
	return Month{
		Year:   year,
		Month:  month,
		Weeks:  exams.MonthGrid(year, month),
		Events: exams.BucketByDay(a.store.Exams(), year, month),
	}
}

func (a *ExamApp) Documents() []exams.Document {
	return exams.Documents(a.store.Exams())
}

// ExtractDocuments writes the attachments of an exam into dir. If name is
// non-empty only that attachment is written. Attachments sharing a name are
// written as "name (2).ext", "name (3).ext" and so on. It returns the
// written paths.
func (a *ExamApp) ExtractDocuments(id, name, dir string) ([]string, error) {
	exam, err := a.Get(id)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	var written []string
	used := make(map[string]bool)
	for _, att := range exam.Attachments {
		if name != "" && att.Name != name {
			continue
		}
		data, err := attachment.Decode(att)
		if err != nil {
			return written, err
		}
		dest := filepath.Join(dir, uniqueName(used, filepath.Base(att.Name)))
		if err := os.WriteFile(dest, data, 0644); err != nil {
			return written, fmt.Errorf("writing %s: %w", dest, err)
		}
		written = append(written, dest)
	}
	if name != "" && len(written) == 0 {
		return nil, fmt.Errorf("exam %s has no attachment named %q", exam.ExamName, name)
	}
	return written, nil
}

// uniqueName returns base, or base with a " (n)" suffix before the extension
// if base is already in used. The returned name is added to used.
func uniqueName(used map[string]bool, base string) string {
	name := base
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for n := 2; used[name]; n++ {
		name = fmt.Sprintf("%s (%d)%s", stem, n, ext)
	}
	used[name] = true
	return name
}

// Import reads the file at path and appends its accepted records. format may
// be empty to infer it from the extension.
func (a *ExamApp) Import(path, format string) (transfer.Result, error) {
	f, err := resolveFormat(path, format)
	if err != nil {
		return transfer.Result{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		return transfer.Result{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	res, err := a.importer.Import(file, f, a.hasExam)
	if err != nil {
		return transfer.Result{}, err
	}
	for _, rj := range res.Rejected {
		a.logger.Warn("import row rejected", "file", path, "row", rj.Row, "reason", rj.Reason)
	}
	if err := a.store.ImportMany(res.Accepted); err != nil {
		return transfer.Result{}, err
	}
	return res, nil
}

func (a *ExamApp) hasExam(id string) bool {
	_, ok := a.store.Get(id)
	return ok
}

// Export writes the collection to w. format may be empty only when path names
// a file with a known extension.
func (a *ExamApp) Export(w io.Writer, path, format string) error {
	f, err := resolveFormat(path, format)
	if err != nil {
		return err
	}
	return transfer.Export(w, f, a.store.Exams())
}

func resolveFormat(path, format string) (transfer.Format, error) {
	if format != "" {
		return transfer.ParseFormat(format)
	}
	return transfer.FormatFromPath(path)
}

func (a *ExamApp) Theme() (exams.Theme, error) {
	return a.settings.Theme()
}

func (a *ExamApp) SetTheme(s string) (exams.Theme, error) {
	t, err := exams.ParseTheme(s)
	if err != nil {
		return "", err
	}
	return t, a.settings.SetTheme(t)
}

// StreamTips streams study tips for the exam with the given id.
func (a *ExamApp) StreamTips(ctx context.Context, id string, onChunk func(string) error) error {
	exam, err := a.Get(id)
	if err != nil {
		return err
	}
	if err := a.tips.StreamTips(ctx, exam.ExamName, exam.Category, onChunk); err != nil {
		var svcErr *studytips.ServiceError
		if errors.As(err, &svcErr) {
			a.logger.Error("study tips failed", "exam", exam.ExamName, "error", err)
		}
		return err
	}
	return nil
}

// InitKeys generates the snapshot key pair.
func (a *ExamApp) InitKeys(passphrase string) error {
	return a.encryptor.Setup(passphrase)
}

func (a *ExamApp) backupService(ctx context.Context) (*exams.Backups, error) {
	if a.backups != nil {
		return a.backups, nil
	}
	if len(a.cfg.Vaults) == 0 {
		return nil, fmt.Errorf("no vaults configured")
	}
	v, err := vault.NewVaultFromConfig(ctx, a.cfg.Vaults[0])
	if err != nil {
		return nil, fmt.Errorf("creating vault: %w", err)
	}
	if err := v.ValidateSetup(ctx); err != nil {
		return nil, fmt.Errorf("vault %s: %w", a.cfg.Vaults[0].Name, err)
	}
	a.backups = exams.NewBackups(a.store, v, a.encryptor, a.logger, a.clock)
	return a.backups, nil
}

// Backup stores an encrypted snapshot and returns its name.
func (a *ExamApp) Backup(ctx context.Context) (string, error) {
	b, err := a.backupService(ctx)
	if err != nil {
		return "", err
	}
	return b.Backup(ctx)
}

func (a *ExamApp) Snapshots(ctx context.Context) ([]string, error) {
	b, err := a.backupService(ctx)
	if err != nil {
		return nil, err
	}
	return b.List(ctx)
}

// Restore replaces the collection with a snapshot. An empty name means the
// newest snapshot.
func (a *ExamApp) Restore(ctx context.Context, name, passphrase string) (string, int, error) {
	b, err := a.backupService(ctx)
	if err != nil {
		return "", 0, err
	}
	if name == "" {
		names, err := b.List(ctx)
		if err != nil {
			return "", 0, err
		}
		if len(names) == 0 {
			return "", 0, fmt.Errorf("no snapshots in vault")
		}
		name = names[len(names)-1]
	}
	n, err := b.Restore(ctx, name, passphrase)
	return name, n, err
}

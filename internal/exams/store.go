package exams

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"examtrack/internal/model"
)

// Store owns the exam collection. It loads the collection once from the
// KVStore, keeps it in memory, and writes the whole collection back after
// every successful mutation. Store is safe for concurrent use; attachment
// encoding runs outside the lock so slow files never block readers.
type Store struct {
	kv       KVStore
	encoder  Encoder
	notifier Notifier
	logger   Logger
	clock    Clock
	idgen    IDGenerator
	validate *validator.Validate

	mu      sync.RWMutex
	exams   []model.Exam
	version uint64
	loading bool
}

// NewStore creates a Store. Initialize must be called before use.
func NewStore(kv KVStore, encoder Encoder, notifier Notifier, logger Logger, clock Clock, idgen IDGenerator) *Store {
	return &Store{
		kv:       kv,
		encoder:  encoder,
		notifier: notifier,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
		validate: validator.New(),
		exams:    []model.Exam{},
		loading:  true,
	}
}

// Initialize loads the collection from storage. An absent payload yields an
// empty collection. A payload that cannot be parsed is logged, copied aside
// under "<key>.corrupt", and the store starts empty. Only a failure to read
// from storage is returned.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.loading = false }()

	s.exams = []model.Exam{}

	data, ok, err := s.kv.Get(ExamsKey)
	if err != nil {
		return fmt.Errorf("loading exams: %w", err)
	}
	if !ok {
		s.logger.Debug("no stored exams")
		return nil
	}

	var loaded []model.Exam
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.logger.Error("failed to load exams from storage", "error", err)
		if err := s.kv.Set(ExamsKey+".corrupt", data); err != nil {
			s.logger.Warn("failed to keep corrupt payload", "error", err)
		}
		return nil
	}
	if loaded != nil {
		s.exams = loaded
	}
	s.logger.Debug("exams loaded", "count", len(s.exams))
	return nil
}

// Loading reports whether Initialize has not completed yet.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Version increases by one on every successful mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Exams returns a copy of the collection in insertion order.
func (s *Store) Exams() []model.Exam {
	exams, _ := s.view()
	return exams
}

func (s *Store) view() ([]model.Exam, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.exams), s.version
}

// Get returns the exam with the given id. ok is false if there is none.
func (s *Store) Get(id string) (model.Exam, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.exams[i].Clone(), true
	}
	return model.Exam{}, false
}

// Create validates the draft, encodes files concurrently, and appends a new
// exam with status Upcoming. Nothing is mutated if validation or encoding fails.
func (s *Store) Create(ctx context.Context, draft model.Draft, files []File) (model.Exam, error) {
	draft.Status = ""
	if err := s.validateDraft(&draft); err != nil {
		return model.Exam{}, err
	}

	attachments, err := s.encodeAll(ctx, filesToInputs(files))
	if err != nil {
		return model.Exam{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	exam := model.Exam{
		ID:        s.freshID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyDraft(&exam, draft)
	exam.Status = model.StatusUpcoming
	exam.Attachments = attachments

	next := append(cloneAll(s.exams), exam)
	if err := s.commit("create", next); err != nil {
		return model.Exam{}, err
	}

	s.logger.Info("exam created", "id", exam.ID, "exam", exam.ExamName, "attachments", len(attachments))
	s.notifier.Schedule(exam)
	return exam.Clone(), nil
}

// Update replaces every editable field and the status of the exam with the
// draft's values. New files in inputs are encoded; existing attachments pass
// through. The id and createdAt are preserved and updatedAt always moves forward.
func (s *Store) Update(ctx context.Context, id string, draft model.Draft, inputs []AttachmentInput) (model.Exam, error) {
	if err := s.validateDraft(&draft); err != nil {
		return model.Exam{}, err
	}
	if !draft.Status.Valid() {
		return model.Exam{}, &ValidationError{Field: "status", Rule: "required"}
	}
	if _, ok := s.Get(id); !ok {
		return model.Exam{}, fmt.Errorf("updating %s: %w", id, ErrNotFound)
	}

	attachments, err := s.encodeAll(ctx, inputs)
	if err != nil {
		return model.Exam{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The exam may have been deleted while files were being encoded.
	i := s.indexOf(id)
	if i < 0 {
		return model.Exam{}, fmt.Errorf("updating %s: %w", id, ErrNotFound)
	}

	next := cloneAll(s.exams)
	exam := next[i]
	applyDraft(&exam, draft)
	exam.Attachments = attachments
	exam.UpdatedAt = laterThan(s.clock.Now(), exam.UpdatedAt)
	next[i] = exam

	if err := s.commit("update", next); err != nil {
		return model.Exam{}, err
	}

	s.logger.Info("exam updated", "id", id, "exam", exam.ExamName)
	s.notifier.Reschedule(exam)
	return exam.Clone(), nil
}

// SetStatus changes only the status of an exam, keeping everything else.
func (s *Store) SetStatus(ctx context.Context, id string, status model.Status) (model.Exam, error) {
	exam, ok := s.Get(id)
	if !ok {
		return model.Exam{}, fmt.Errorf("updating %s: %w", id, ErrNotFound)
	}
	draft := model.DraftFrom(exam)
	draft.Status = status
	return s.Update(ctx, id, draft, KeepAll(exam.Attachments))
}

// Delete removes the exam with the given id. If there is none the collection
// is left untouched and ErrNotFound is returned.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("deleting %s: %w", id, ErrNotFound)
	}

	next := make([]model.Exam, 0, len(s.exams)-1)
	next = append(next, s.exams[:i]...)
	next = append(next, s.exams[i+1:]...)
	if err := s.commit("delete", next); err != nil {
		return err
	}

	s.logger.Info("exam deleted", "id", id)
	return nil
}

// ImportMany appends externally built records verbatim. Records are not
// validated and ids are not checked for collisions.
func (s *Store) ImportMany(exams []model.Exam) error {
	if len(exams) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := append(cloneAll(s.exams), cloneAll(exams)...)
	if err := s.commit("import", next); err != nil {
		return err
	}

	s.logger.Info("exams imported", "count", len(exams))
	return nil
}

// Replace swaps the whole collection for exams.
func (s *Store) Replace(exams []model.Exam) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commit("replace", cloneAll(exams)); err != nil {
		return err
	}

	s.logger.Info("exams replaced", "count", len(exams))
	return nil
}

// ClearAll empties the collection.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commit("clear", []model.Exam{}); err != nil {
		return err
	}

	s.logger.Info("all exams cleared")
	return nil
}

// commit persists next and, only if that succeeds, makes it the collection.
// Callers must hold the write lock.
func (s *Store) commit(op string, next []model.Exam) error {
	data, err := json.Marshal(next)
	if err != nil {
		return &StorageError{Op: op, Err: err}
	}
	if err := s.kv.Set(ExamsKey, data); err != nil {
		s.logger.Error("failed to save exams to storage", "op", op, "error", err)
		return &StorageError{Op: op, Err: err}
	}
	s.exams = next
	s.version++
	return nil
}

// encodeAll encodes every new file concurrently. The result has the same
// order as inputs regardless of which file finishes first.
func (s *Store) encodeAll(ctx context.Context, inputs []AttachmentInput) ([]model.Attachment, error) {
	out := make([]model.Attachment, len(inputs))
	g, gctx := errgroup.WithContext(ctx)

	for i, in := range inputs {
		if in.File == nil {
			out[i] = in.Existing
			continue
		}
		g.Go(func() error {
			att, err := s.encoder.Encode(gctx, in.File)
			if err != nil {
				var ioErr *IOError
				if errors.As(err, &ioErr) {
					return err
				}
				return &IOError{Name: in.File.Name(), Err: err}
			}
			out[i] = att
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) validateDraft(draft *model.Draft) error {
	draft.ExamName = strings.TrimSpace(draft.ExamName)

	err := s.validate.Struct(draft)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &ValidationError{Field: lowerFirst(fieldErrs[0].Field()), Rule: fieldErrs[0].Tag()}
	}
	return fmt.Errorf("validating draft: %w", err)
}

// freshID returns an id not used by any exam in the collection. Callers must
// hold the lock.
func (s *Store) freshID() string {
	for {
		id := s.idgen.New()
		if s.indexOf(id) < 0 {
			return id
		}
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.exams {
		if s.exams[i].ID == id {
			return i
		}
	}
	return -1
}

func applyDraft(exam *model.Exam, d model.Draft) {
	exam.ExamName = d.ExamName
	exam.Category = d.Category
	exam.ApplicationNo = d.ApplicationNo
	exam.RegistrationNo = d.RegistrationNo
	exam.ApplyDate = d.ApplyDate
	exam.LastDate = d.LastDate
	exam.AdmitCardDate = d.AdmitCardDate
	exam.PrelimsDate = d.PrelimsDate
	exam.MainsDate = d.MainsDate
	exam.ResultDate = d.ResultDate
	exam.Notes = d.Notes
	exam.Status = d.Status
	*exam = exam.Clone()
}

// laterThan returns now, or the smallest instant after prev if the clock has
// not moved past it.
func laterThan(now, prev time.Time) time.Time {
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Nanosecond)
}

func cloneAll(exams []model.Exam) []model.Exam {
	out := make([]model.Exam, len(exams))
	for i := range exams {
		out[i] = exams[i].Clone()
	}
	return out
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

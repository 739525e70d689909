package exams_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"examtrack/internal/attachment"
	"examtrack/internal/exams"
	"examtrack/internal/model"
	"examtrack/internal/testutil"
)

type recordingNotifier struct {
	mu          sync.Mutex
	scheduled   []string
	rescheduled []string
}

func (n *recordingNotifier) Schedule(e model.Exam) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.scheduled = append(n.scheduled, e.ID)
}

func (n *recordingNotifier) Reschedule(e model.Exam) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rescheduled = append(n.rescheduled, e.ID)
}

type storeFixture struct {
	store    *exams.Store
	kv       *testutil.FlakyKV
	clock    *testutil.StubClock
	notifier *recordingNotifier
}

func newStoreFixture(t *testing.T) *storeFixture {
	t.Helper()
	f := &storeFixture{
		kv:       testutil.NewFlakyKV(testutil.NewTestKV(), testutil.ErrDisk),
		clock:    testutil.FixedClock(),
		notifier: &recordingNotifier{},
	}
	f.store = f.open(t)
	return f
}

// open builds a fresh Store over the fixture's storage.
func (f *storeFixture) open(t *testing.T) *exams.Store {
	t.Helper()
	s := exams.NewStore(f.kv, attachment.NewCodec(1<<20), f.notifier, exams.NewNopLogger(), f.clock, testutil.NewStubIDGenerator())
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return s
}

func date(s string) *model.Date {
	d, err := model.DatePtr(s)
	if err != nil {
		panic(err)
	}
	return d
}

func bankPO() model.Draft {
	return model.Draft{
		ExamName:      "Bank PO",
		Category:      model.CategoryBank,
		ApplicationNo: "BP-2025-01",
		LastDate:      date("2025-03-01"),
		PrelimsDate:   date("2025-04-20"),
	}
}

func TestStore_Loading(t *testing.T) {
	s := exams.NewStore(testutil.NewTestKV(), attachment.NewCodec(1024), exams.NewLogNotifier(exams.NewNopLogger()),
		exams.NewNopLogger(), testutil.FixedClock(), testutil.NewStubIDGenerator())
	if !s.Loading() {
		t.Error("Loading() = false before Initialize")
	}
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if s.Loading() {
		t.Error("Loading() = true after Initialize")
	}
	if got := s.Exams(); got == nil || len(got) != 0 {
		t.Errorf("Exams() = %v, want empty collection", got)
	}
}

func TestStore_Create(t *testing.T) {
	f := newStoreFixture(t)

	draft := bankPO()
	draft.ExamName = "  Bank PO  "
	draft.Status = model.StatusCompleted

	exam, err := f.store.Create(context.Background(), draft, []exams.File{
		testutil.NewMemFile("admit.pdf", []byte("%PDF-1.4")),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if exam.ID != "exam-1" {
		t.Errorf("ID = %q", exam.ID)
	}
	if exam.ExamName != "Bank PO" {
		t.Errorf("ExamName = %q, want trimmed", exam.ExamName)
	}
	if exam.Status != model.StatusUpcoming {
		t.Errorf("Status = %q, new exams always start Upcoming", exam.Status)
	}
	now := f.clock.Now()
	if !exam.CreatedAt.Equal(now) || !exam.UpdatedAt.Equal(now) {
		t.Errorf("timestamps = %v/%v, want %v", exam.CreatedAt, exam.UpdatedAt, now)
	}
	if len(exam.Attachments) != 1 || exam.Attachments[0].Content != "data:application/pdf;base64,JVBERi0xLjQ=" {
		t.Errorf("Attachments = %+v", exam.Attachments)
	}
	if got, ok := f.store.Get("exam-1"); !ok || got.ApplicationNo != "BP-2025-01" {
		t.Errorf("Get() = %+v, %v", got, ok)
	}
	if f.store.Version() != 1 {
		t.Errorf("Version() = %d, want 1", f.store.Version())
	}
	if len(f.notifier.scheduled) != 1 {
		t.Errorf("notifier scheduled %v", f.notifier.scheduled)
	}
}

func TestStore_CreateKeepsAttachmentOrder(t *testing.T) {
	f := newStoreFixture(t)

	files := []exams.File{
		testutil.NewSlowFile("first.txt", []byte("1"), 60*time.Millisecond),
		testutil.NewSlowFile("second.txt", []byte("2"), 30*time.Millisecond),
		testutil.NewMemFile("third.txt", []byte("3")),
	}
	exam, err := f.store.Create(context.Background(), bankPO(), files)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	want := []string{"first.txt", "second.txt", "third.txt"}
	if len(exam.Attachments) != len(want) {
		t.Fatalf("len(Attachments) = %d", len(exam.Attachments))
	}
	for i, name := range want {
		if exam.Attachments[i].Name != name {
			t.Errorf("Attachments[%d] = %s, want %s", i, exam.Attachments[i].Name, name)
		}
	}
}

func TestStore_CreateRejectsInvalidDraft(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*model.Draft)
		wantField string
	}{
		{name: "blank name", mutate: func(d *model.Draft) { d.ExamName = "   " }, wantField: "examName"},
		{name: "missing category", mutate: func(d *model.Draft) { d.Category = "" }, wantField: "category"},
		{name: "unknown category", mutate: func(d *model.Draft) { d.Category = "Defence" }, wantField: "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newStoreFixture(t)
			draft := bankPO()
			tt.mutate(&draft)

			_, err := f.store.Create(context.Background(), draft, nil)
			var vErr *exams.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("Create() error = %v, want *ValidationError", err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", vErr.Field, tt.wantField)
			}
			if len(f.store.Exams()) != 0 || f.store.Version() != 0 {
				t.Error("collection mutated by a rejected draft")
			}
			if _, ok, _ := f.kv.Get(exams.ExamsKey); ok {
				t.Error("storage written for a rejected draft")
			}
		})
	}
}

func TestStore_CreateFailsOnUnreadableFile(t *testing.T) {
	f := newStoreFixture(t)

	_, err := f.store.Create(context.Background(), bankPO(), []exams.File{
		testutil.NewMemFile("ok.txt", []byte("fine")),
		testutil.NewBrokenFile("bad.pdf", testutil.ErrDisk),
	})
	var ioErr *exams.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("Create() error = %v, want *IOError", err)
	}
	if !errors.Is(err, testutil.ErrDisk) {
		t.Errorf("IOError does not carry the cause: %v", err)
	}
	if len(f.store.Exams()) != 0 {
		t.Error("exam appended despite encode failure")
	}
}

func TestStore_Update(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()

	created, err := f.store.Create(ctx, bankPO(), []exams.File{testutil.NewMemFile("a.txt", []byte("a"))})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	draft := model.DraftFrom(created)
	draft.ExamName = "Bank PO (revised)"
	draft.LastDate = nil
	draft.MainsDate = date("2025-07-15")
	draft.Status = model.StatusOngoing

	// The clock has not moved; updatedAt must still advance.
	updated, err := f.store.Update(ctx, created.ID, draft, []exams.AttachmentInput{
		exams.NewFile(testutil.NewMemFile("b.txt", []byte("b"))),
		exams.Keep(created.Attachments[0]),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.ID != created.ID || !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("identity changed: %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want after %v", updated.UpdatedAt, created.UpdatedAt)
	}
	if updated.ExamName != "Bank PO (revised)" || updated.LastDate != nil || updated.MainsDate.Value() != date("2025-07-15").Value() {
		t.Errorf("fields not replaced: %+v", updated)
	}
	if updated.Status != model.StatusOngoing {
		t.Errorf("Status = %q", updated.Status)
	}
	if len(updated.Attachments) != 2 || updated.Attachments[0].Name != "b.txt" || updated.Attachments[1].Name != "a.txt" {
		t.Errorf("Attachments = %+v", updated.Attachments)
	}
	if len(f.notifier.rescheduled) != 1 {
		t.Errorf("notifier rescheduled %v", f.notifier.rescheduled)
	}
}

func TestStore_UpdateErrors(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	created, _ := f.store.Create(ctx, bankPO(), nil)

	if _, err := f.store.Update(ctx, "missing", model.DraftFrom(created), nil); !errors.Is(err, exams.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}

	draft := model.DraftFrom(created)
	draft.Status = ""
	var vErr *exams.ValidationError
	if _, err := f.store.Update(ctx, created.ID, draft, nil); !errors.As(err, &vErr) || vErr.Field != "status" {
		t.Errorf("Update(no status) error = %v, want status ValidationError", err)
	}

	if f.store.Version() != 1 {
		t.Errorf("Version() = %d after failed updates, want 1", f.store.Version())
	}
}

func TestStore_SetStatus(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	created, _ := f.store.Create(ctx, bankPO(), []exams.File{testutil.NewMemFile("a.txt", []byte("a"))})

	got, err := f.store.SetStatus(ctx, created.ID, model.StatusCompleted)
	if err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if got.Status != model.StatusCompleted || got.ApplicationNo != created.ApplicationNo || len(got.Attachments) != 1 {
		t.Errorf("SetStatus() = %+v", got)
	}
}

func TestStore_Delete(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	a, _ := f.store.Create(ctx, bankPO(), nil)
	b, _ := f.store.Create(ctx, model.Draft{ExamName: "SSC CGL", Category: model.CategorySSC}, nil)

	if err := f.store.Delete(a.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	all := f.store.Exams()
	if len(all) != 1 || all[0].ID != b.ID {
		t.Errorf("Exams() after delete = %+v", all)
	}

	version := f.store.Version()
	if err := f.store.Delete("missing"); !errors.Is(err, exams.ErrNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrNotFound", err)
	}
	if f.store.Version() != version || len(f.store.Exams()) != 1 {
		t.Error("Delete(missing) changed the collection")
	}
}

func TestStore_ImportManyAndClearAll(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	f.store.Create(ctx, bankPO(), nil)

	if err := f.store.ImportMany(nil); err != nil {
		t.Fatalf("ImportMany(nil) error = %v", err)
	}
	if f.store.Version() != 1 {
		t.Errorf("empty import bumped the version")
	}

	// Imported records are appended as-is, even ones a draft would reject.
	imported := []model.Exam{
		{ID: "exam-1", ExamName: "", Category: "Unknown", Status: "Paused"},
		{ID: "x", ExamName: "Railway NTPC", Category: model.CategoryRailway, Status: model.StatusUpcoming},
	}
	if err := f.store.ImportMany(imported); err != nil {
		t.Fatalf("ImportMany() error = %v", err)
	}
	all := f.store.Exams()
	if len(all) != 3 || all[1].Category != "Unknown" || all[2].ID != "x" {
		t.Errorf("Exams() after import = %+v", all)
	}

	if err := f.store.ClearAll(); err != nil {
		t.Fatalf("ClearAll() error = %v", err)
	}
	if len(f.store.Exams()) != 0 {
		t.Error("ClearAll() left exams behind")
	}
	if len(f.open(t).Exams()) != 0 {
		t.Error("ClearAll() not persisted")
	}
}

func TestStore_PersistsAcrossRestart(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()

	f.store.Create(ctx, bankPO(), []exams.File{testutil.NewMemFile("admit.pdf", []byte("%PDF"))})
	f.store.Create(ctx, model.Draft{ExamName: "UPSC CSE", Category: model.CategoryUPSC, ResultDate: date("2025-06-10")}, nil)
	want := f.store.Exams()

	got := f.open(t).Exams()
	if len(got) != len(want) {
		t.Fatalf("reloaded %d exams, want %d", len(got), len(want))
	}
	for i := range want {
		w, g := want[i], got[i]
		if g.ID != w.ID || g.ExamName != w.ExamName || g.Status != w.Status ||
			!g.CreatedAt.Equal(w.CreatedAt) || g.ResultDate.Value() != w.ResultDate.Value() ||
			len(g.Attachments) != len(w.Attachments) {
			t.Errorf("exam %d reloaded as %+v, want %+v", i, g, w)
		}
	}
}

func TestStore_StorageFailureRollsBack(t *testing.T) {
	f := newStoreFixture(t)
	ctx := context.Background()
	first, _ := f.store.Create(ctx, bankPO(), nil)

	f.kv.SetFailing(true)
	_, err := f.store.Create(ctx, model.Draft{ExamName: "SSC CGL", Category: model.CategorySSC}, nil)
	var sErr *exams.StorageError
	if !errors.As(err, &sErr) || !errors.Is(err, testutil.ErrDisk) {
		t.Fatalf("Create() error = %v, want StorageError wrapping ErrDisk", err)
	}
	if err := f.store.Delete(first.ID); !errors.As(err, &sErr) {
		t.Errorf("Delete() error = %v, want StorageError", err)
	}
	if all := f.store.Exams(); len(all) != 1 || all[0].ID != first.ID {
		t.Errorf("in-memory collection diverged from storage: %+v", all)
	}

	f.kv.SetFailing(false)
	if _, err := f.store.Create(ctx, model.Draft{ExamName: "SSC CGL", Category: model.CategorySSC}, nil); err != nil {
		t.Fatalf("Create() after recovery error = %v", err)
	}
	if len(f.open(t).Exams()) != 2 {
		t.Error("recovered write not persisted")
	}
}

func TestStore_CorruptPayload(t *testing.T) {
	kv := testutil.NewTestKV()
	if err := kv.Set(exams.ExamsKey, []byte(`[{"id":"a","examName":`)); err != nil {
		t.Fatal(err)
	}

	s := exams.NewStore(kv, attachment.NewCodec(1024), exams.NewLogNotifier(exams.NewNopLogger()),
		exams.NewNopLogger(), testutil.FixedClock(), testutil.NewStubIDGenerator())
	if err := s.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v, corrupt data should be tolerated", err)
	}
	if len(s.Exams()) != 0 {
		t.Errorf("Exams() = %+v, want empty", s.Exams())
	}
	if _, ok, _ := kv.Get(exams.ExamsKey + ".corrupt"); !ok {
		t.Error("corrupt payload was not kept aside")
	}
}

func TestStore_ReturnedExamsAreCopies(t *testing.T) {
	f := newStoreFixture(t)
	created, _ := f.store.Create(context.Background(), bankPO(), []exams.File{testutil.NewMemFile("a.txt", []byte("a"))})

	created.LastDate.Day = 28
	created.Attachments[0].Name = "changed"

	got, _ := f.store.Get(created.ID)
	if got.LastDate.Day != 1 || got.Attachments[0].Name != "a.txt" {
		t.Errorf("caller mutation leaked into the store: %+v", got)
	}
}

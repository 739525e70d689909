package testutil

import (
	"bytes"
	"errors"
	"io"
	"time"
)

// MemFile is an in-memory exams.File.
type MemFile struct {
	name  string
	data  []byte
	delay time.Duration
	err   error
}

func NewMemFile(name string, data []byte) *MemFile {
	return &MemFile{name: name, data: data}
}

// NewSlowFile returns a file whose Open blocks for delay first, to shuffle
// completion order in concurrent encodes.
func NewSlowFile(name string, data []byte, delay time.Duration) *MemFile {
	return &MemFile{name: name, data: data, delay: delay}
}

// NewBrokenFile returns a file whose reads fail with err.
func NewBrokenFile(name string, err error) *MemFile {
	return &MemFile{name: name, err: err}
}

func (f *MemFile) Name() string { return f.name }

func (f *MemFile) Open() (io.ReadCloser, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return io.NopCloser(&failingReader{err: f.err}), nil
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

type failingReader struct {
	err error
}

func (r *failingReader) Read([]byte) (int, error) { return 0, r.err }

// ErrDisk is a canned I/O failure.
var ErrDisk = errors.New("disk on fire")

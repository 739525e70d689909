package attachment

import (
	"io"
	"os"

	"examtrack/internal/exams"
)

// OSFile is a file on the local filesystem.
type OSFile struct {
	path string
}

var _ exams.File = (*OSFile)(nil)

func NewOSFile(path string) *OSFile {
	return &OSFile{path: path}
}

func (f *OSFile) Name() string { return f.path }

func (f *OSFile) Open() (io.ReadCloser, error) { return os.Open(f.path) }

// OSFiles wraps each path as an exams.File.
func OSFiles(paths []string) []exams.File {
	files := make([]exams.File, len(paths))
	for i, p := range paths {
		files[i] = NewOSFile(p)
	}
	return files
}

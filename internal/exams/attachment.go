package exams

import (
	"context"
	"io"

	"examtrack/internal/model"
)

// File is a user-supplied document that has not been encoded yet.
type File interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// Encoder turns a File into a persistable attachment. Implementations must
// either return a complete attachment or an error, never a partial result.
type Encoder interface {
	Encode(ctx context.Context, f File) (model.Attachment, error)
}

// AttachmentInput is one element of an update's attachment list: either a
// new file to encode or an attachment that is already stored.
type AttachmentInput struct {
	File     File
	Existing model.Attachment
}

// NewFile wraps a file that still has to be encoded.
func NewFile(f File) AttachmentInput { return AttachmentInput{File: f} }

// Keep wraps an attachment that is passed through unchanged.
func Keep(a model.Attachment) AttachmentInput { return AttachmentInput{Existing: a} }

// KeepAll wraps every attachment of an exam, in order.
func KeepAll(atts []model.Attachment) []AttachmentInput {
	inputs := make([]AttachmentInput, len(atts))
	for i, a := range atts {
		inputs[i] = Keep(a)
	}
	return inputs
}

func filesToInputs(files []File) []AttachmentInput {
	inputs := make([]AttachmentInput, len(files))
	for i, f := range files {
		inputs[i] = NewFile(f)
	}
	return inputs
}

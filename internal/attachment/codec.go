package attachment

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"examtrack/internal/exams"
	"examtrack/internal/model"
)

// ErrTooLarge is returned when a file exceeds the codec's size limit.
var ErrTooLarge = errors.New("file exceeds attachment size limit")

// Codec embeds files as base64 data URLs.
type Codec struct {
	maxSize int64
}

var _ exams.Encoder = (*Codec)(nil)

// NewCodec returns a Codec that rejects files larger than maxSize bytes.
func NewCodec(maxSize int64) *Codec {
	return &Codec{maxSize: maxSize}
}

// Encode reads all of f and returns it as an attachment. Any failure is an
// *exams.IOError and no attachment is produced.
func (c *Codec) Encode(ctx context.Context, f exams.File) (model.Attachment, error) {
	name := filepath.Base(f.Name())
	if err := ctx.Err(); err != nil {
		return model.Attachment{}, &exams.IOError{Name: name, Err: err}
	}

	rc, err := f.Open()
	if err != nil {
		return model.Attachment{}, &exams.IOError{Name: name, Err: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, c.maxSize+1))
	if err != nil {
		return model.Attachment{}, &exams.IOError{Name: name, Err: err}
	}
	if int64(len(data)) > c.maxSize {
		return model.Attachment{}, &exams.IOError{Name: name, Err: fmt.Errorf("%w (%d bytes)", ErrTooLarge, c.maxSize)}
	}

	mimeType := detectType(name, data)
	return model.Attachment{
		Name:     name,
		MimeType: mimeType,
		Content:  DataURL(mimeType, data),
	}, nil
}

// detectType prefers the extension, as browsers do for uploads, and sniffs
// the content when the extension is unknown.
func detectType(name string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		if mediaType, _, err := mime.ParseMediaType(t); err == nil {
			return mediaType
		}
		return t
	}
	return mimetype.Detect(data).String()
}

// DataURL builds "data:<mimeType>;base64,<payload>".
func DataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Decode returns the bytes embedded in an attachment's data URL.
func Decode(att model.Attachment) ([]byte, error) {
	rest, ok := strings.CutPrefix(att.Content, "data:")
	if !ok {
		return nil, fmt.Errorf("attachment %s: content is not a data URL", att.Name)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("attachment %s: data URL has no payload", att.Name)
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("attachment %s: only base64 data URLs are supported", att.Name)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("attachment %s: decoding payload: %w", att.Name, err)
	}
	return data, nil
}

package transfer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"examtrack/internal/exams"
	"examtrack/internal/model"
)

// Rejection explains why one record of an import file was not accepted.
// Row is 1-based and counts records, not lines.
type Rejection struct {
	Row    int
	Reason string
}

// Result splits an import into the records ready for the store and the ones
// that were turned away.
type Result struct {
	Accepted []model.Exam
	Rejected []Rejection
}

// record is the validation view of an imported exam.
type record struct {
	ExamName    string             `json:"examName" validate:"required"`
	Category    model.Category     `json:"category" validate:"required,oneof=Bank SSC UPSC PSC Railway Others"`
	Status      model.Status       `json:"status" validate:"omitempty,oneof=Upcoming Ongoing Completed Expired"`
	Attachments []model.Attachment `json:"attachments" validate:"dive"`
}

// Importer parses import files and prepares their records for
// exams.Store.ImportMany.
type Importer struct {
	clock    exams.Clock
	idgen    exams.IDGenerator
	validate *validator.Validate
}

func NewImporter(clock exams.Clock, idgen exams.IDGenerator) *Importer {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Importer{clock: clock, idgen: idgen, validate: v}
}

// Import reads r in the given format. A file that cannot be parsed returns
// ErrImportData; otherwise each record is accepted or rejected on its own.
// Accepted records missing timestamps or status get the current time and
// Upcoming. A record gets a fresh id when it has none, when taken reports
// its id as already in use, or when an earlier record of the file has it.
// taken may be nil.
func (im *Importer) Import(r io.Reader, format Format, taken func(id string) bool) (Result, error) {
	var (
		parsed []model.Exam
		res    Result
		err    error
	)
	switch format {
	case FormatCSV:
		parsed, res.Rejected, err = readCSV(r)
	case FormatJSON:
		parsed, err = readJSON(r)
	case FormatYAML:
		parsed, err = readYAML(r)
	default:
		return Result{}, fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return Result{}, err
	}

	now := im.clock.Now()
	used := make(map[string]bool, len(parsed))
	inUse := func(id string) bool {
		return id == "" || used[id] || (taken != nil && taken(id))
	}
	rejected := make(map[int]bool, len(res.Rejected))
	for _, rj := range res.Rejected {
		rejected[rj.Row] = true
	}

	for i, e := range parsed {
		row := i + 1
		if rejected[row] {
			continue
		}
		if err := im.check(e); err != nil {
			res.Rejected = append(res.Rejected, Rejection{Row: row, Reason: err.Error()})
			continue
		}
		e = im.fill(e, now)
		for inUse(e.ID) {
			e.ID = im.idgen.New()
		}
		used[e.ID] = true
		res.Accepted = append(res.Accepted, e)
	}
	sort.Slice(res.Rejected, func(i, j int) bool { return res.Rejected[i].Row < res.Rejected[j].Row })
	return res, nil
}

func (im *Importer) check(e model.Exam) error {
	err := im.validate.Struct(record{
		ExamName:    strings.TrimSpace(e.ExamName),
		Category:    e.Category,
		Status:      e.Status,
		Attachments: e.Attachments,
	})
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &exams.ValidationError{Field: fieldErrs[0].Field(), Rule: fieldErrs[0].Tag()}
	}
	return err
}

func (im *Importer) fill(e model.Exam, now time.Time) model.Exam {
	e = e.Clone()
	e.ExamName = strings.TrimSpace(e.ExamName)
	if e.Status == "" {
		e.Status = model.StatusUpcoming
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = e.CreatedAt
	}
	if e.Attachments == nil {
		e.Attachments = []model.Attachment{}
	}
	return e
}

func readJSON(r io.Reader) ([]model.Exam, error) {
	var out []model.Exam
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportData, err)
	}
	return out, nil
}

func readYAML(r io.Reader) ([]model.Exam, error) {
	var out []model.Exam
	if err := yaml.NewDecoder(r).Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrImportData, err)
	}
	return out, nil
}

// readCSV maps rows onto exams by header name. Unknown columns are ignored,
// and "undefined", which older exports wrote for unset fields, reads as empty.
// A row whose dates or timestamps do not parse is rejected; a file whose
// structure is broken fails as a whole.
func readCSV(r io.Reader) ([]model.Exam, []Rejection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("reading csv: %w", err)
	}

	cr := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrImportData, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: missing header row", ErrImportData)
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[strings.TrimSpace(name)] = i
	}
	if _, ok := col["examName"]; !ok {
		return nil, nil, fmt.Errorf("%w: header has no examName column", ErrImportData)
	}

	var (
		out      []model.Exam
		rejected []Rejection
	)
	for i, row := range rows[1:] {
		get := func(name string) string {
			j, ok := col[name]
			if !ok || strings.TrimSpace(row[j]) == "undefined" {
				return ""
			}
			return row[j]
		}
		e, err := examFromRow(get)
		if err != nil {
			rejected = append(rejected, Rejection{Row: i + 1, Reason: err.Error()})
		}
		out = append(out, e)
	}
	return out, rejected, nil
}

func examFromRow(get func(string) string) (model.Exam, error) {
	e := model.Exam{
		ID:             strings.TrimSpace(get("id")),
		ExamName:       get("examName"),
		Category:       model.Category(strings.TrimSpace(get("category"))),
		ApplicationNo:  get("applicationNo"),
		RegistrationNo: get("registrationNo"),
		Notes:          get("notes"),
		Status:         model.Status(strings.TrimSpace(get("status"))),
		Attachments:    []model.Attachment{},
	}

	dates := []struct {
		name string
		dst  **model.Date
	}{
		{"applyDate", &e.ApplyDate},
		{"lastDate", &e.LastDate},
		{"admitCardDate", &e.AdmitCardDate},
		{"prelimsDate", &e.PrelimsDate},
		{"mainsDate", &e.MainsDate},
		{"resultDate", &e.ResultDate},
	}
	for _, d := range dates {
		v, err := model.DatePtr(get(d.name))
		if err != nil {
			return e, fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = v
	}

	for name, dst := range map[string]*time.Time{"createdAt": &e.CreatedAt, "updatedAt": &e.UpdatedAt} {
		v := strings.TrimSpace(get(name))
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return e, fmt.Errorf("%s: invalid timestamp %q", name, v)
		}
		*dst = t
	}
	return e, nil
}

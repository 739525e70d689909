package transfer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"examtrack/internal/model"
)

// csvColumns are the scalar fields of an exam in export order. Attachments
// are never written to CSV.
var csvColumns = []string{
	"id", "examName", "category", "applicationNo", "registrationNo",
	"applyDate", "lastDate", "admitCardDate", "prelimsDate", "mainsDate", "resultDate",
	"notes", "status", "createdAt", "updatedAt",
}

// Export writes exams to w in the given format.
func Export(w io.Writer, format Format, exams []model.Exam) error {
	switch format {
	case FormatCSV:
		return ExportCSV(w, exams)
	case FormatJSON:
		return ExportJSON(w, exams)
	case FormatYAML:
		return ExportYAML(w, exams)
	}
	return fmt.Errorf("unknown format %q", format)
}

// ExportCSV writes a header row and one row per exam. Every value is
// double-quoted, with embedded quotes doubled.
func ExportCSV(w io.Writer, exams []model.Exam) error {
	bw := bufio.NewWriter(w)
	writeRow := func(values []string) {
		for i, v := range values {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteByte('"')
			bw.WriteString(strings.ReplaceAll(v, `"`, `""`))
			bw.WriteByte('"')
		}
		bw.WriteString("\n")
	}

	writeRow(csvColumns)
	for _, e := range exams {
		writeRow(csvValues(e))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

func csvValues(e model.Exam) []string {
	return []string{
		e.ID,
		e.ExamName,
		string(e.Category),
		e.ApplicationNo,
		e.RegistrationNo,
		e.ApplyDate.Value().String(),
		e.LastDate.Value().String(),
		e.AdmitCardDate.Value().String(),
		e.PrelimsDate.Value().String(),
		e.MainsDate.Value().String(),
		e.ResultDate.Value().String(),
		e.Notes,
		string(e.Status),
		formatTime(e.CreatedAt),
		formatTime(e.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// ExportJSON writes the full records, attachments included.
func ExportJSON(w io.Writer, exams []model.Exam) error {
	if exams == nil {
		exams = []model.Exam{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(exams); err != nil {
		return fmt.Errorf("writing json: %w", err)
	}
	return nil
}

// ExportYAML writes the full records, attachments included.
func ExportYAML(w io.Writer, exams []model.Exam) error {
	if exams == nil {
		exams = []model.Exam{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(exams); err != nil {
		return fmt.Errorf("writing yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("writing yaml: %w", err)
	}
	return nil
}

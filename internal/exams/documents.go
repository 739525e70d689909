package exams

import "examtrack/internal/model"

// Document is an attachment listed together with the exam that owns it.
type Document struct {
	model.Attachment
	ExamID   string
	ExamName string
}

// Documents flattens the attachments of every exam, in collection order.
func Documents(exams []model.Exam) []Document {
	var docs []Document
	for _, exam := range exams {
		for _, att := range exam.Attachments {
			docs = append(docs, Document{Attachment: att, ExamID: exam.ID, ExamName: exam.ExamName})
		}
	}
	return docs
}

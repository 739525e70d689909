package exams

import (
	"fmt"
	"strings"

	"examtrack/internal/model"
)

// Bucket is a dashboard tab.
type Bucket string

const (
	BucketUpcoming  Bucket = "Upcoming"
	BucketOngoing   Bucket = "Ongoing"
	BucketCompleted Bucket = "Completed"
)

// ParseBucket accepts a tab name in any case.
func ParseBucket(s string) (Bucket, error) {
	for _, b := range []Bucket{BucketUpcoming, BucketOngoing, BucketCompleted} {
		if strings.EqualFold(s, string(b)) {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown tab %q (want upcoming, ongoing or completed)", s)
}

// Classify maps an exam's stored status to its tab. Status is never derived
// from dates. An exam with an unknown status (possible after an unchecked
// import) belongs to no tab.
func Classify(exam model.Exam) Bucket {
	switch exam.Status {
	case model.StatusUpcoming:
		return BucketUpcoming
	case model.StatusOngoing:
		return BucketOngoing
	case model.StatusCompleted, model.StatusExpired:
		return BucketCompleted
	}
	return ""
}

// Filter keeps the exams in bucket whose name, application number or
// registration number contains query, ignoring case. An empty query keeps
// every exam in the bucket.
func Filter(exams []model.Exam, bucket Bucket, query string) []model.Exam {
	q := strings.ToLower(query)
	var out []model.Exam
	for _, exam := range exams {
		if Classify(exam) != bucket {
			continue
		}
		if q != "" && !matches(exam, q) {
			continue
		}
		out = append(out, exam)
	}
	return out
}

func matches(exam model.Exam, lowerQuery string) bool {
	for _, field := range []string{exam.ExamName, exam.ApplicationNo, exam.RegistrationNo} {
		if strings.Contains(strings.ToLower(field), lowerQuery) {
			return true
		}
	}
	return false
}

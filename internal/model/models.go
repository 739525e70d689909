package model

import "time"

// Category is the exam family an exam belongs to.
type Category string

const (
	CategoryBank    Category = "Bank"
	CategorySSC     Category = "SSC"
	CategoryUPSC    Category = "UPSC"
	CategoryPSC     Category = "PSC"
	CategoryRailway Category = "Railway"
	CategoryOthers  Category = "Others"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryBank, CategorySSC, CategoryUPSC, CategoryPSC, CategoryRailway, CategoryOthers}

// Valid reports whether c is one of the enumerated categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Status is the manually maintained lifecycle state of an exam.
type Status string

const (
	StatusUpcoming  Status = "Upcoming"
	StatusOngoing   Status = "Ongoing"
	StatusCompleted Status = "Completed"
	StatusExpired   Status = "Expired"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusUpcoming, StatusOngoing, StatusCompleted, StatusExpired}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Attachment is a document embedded inline with the exam that owns it.
// Content is a data URL ("data:<mime>;base64,<payload>").
type Attachment struct {
	Name     string `json:"name" yaml:"name" validate:"required"`
	MimeType string `json:"mimeType" yaml:"mimeType" validate:"required"`
	Content  string `json:"content" yaml:"content" validate:"startswith=data:"`
}

// Exam is the persisted record describing one exam application.
type Exam struct {
	ID             string       `json:"id" yaml:"id"`
	ExamName       string       `json:"examName" yaml:"examName"`
	Category       Category     `json:"category" yaml:"category"`
	ApplicationNo  string       `json:"applicationNo,omitempty" yaml:"applicationNo,omitempty"`
	RegistrationNo string       `json:"registrationNo,omitempty" yaml:"registrationNo,omitempty"`
	ApplyDate      *Date        `json:"applyDate,omitempty" yaml:"applyDate,omitempty"`
	LastDate       *Date        `json:"lastDate,omitempty" yaml:"lastDate,omitempty"`
	AdmitCardDate  *Date        `json:"admitCardDate,omitempty" yaml:"admitCardDate,omitempty"`
	PrelimsDate    *Date        `json:"prelimsDate,omitempty" yaml:"prelimsDate,omitempty"`
	MainsDate      *Date        `json:"mainsDate,omitempty" yaml:"mainsDate,omitempty"`
	ResultDate     *Date        `json:"resultDate,omitempty" yaml:"resultDate,omitempty"`
	Notes          string       `json:"notes,omitempty" yaml:"notes,omitempty"`
	Attachments    []Attachment `json:"attachments" yaml:"attachments"`
	Status         Status       `json:"status" yaml:"status"`
	CreatedAt      time.Time    `json:"createdAt" yaml:"createdAt"`
	UpdatedAt      time.Time    `json:"updatedAt" yaml:"updatedAt"`
}

// Clone returns a copy of e that shares no mutable state with it.
func (e Exam) Clone() Exam {
	c := e
	c.ApplyDate = e.ApplyDate.clone()
	c.LastDate = e.LastDate.clone()
	c.AdmitCardDate = e.AdmitCardDate.clone()
	c.PrelimsDate = e.PrelimsDate.clone()
	c.MainsDate = e.MainsDate.clone()
	c.ResultDate = e.ResultDate.clone()
	if e.Attachments != nil {
		c.Attachments = append([]Attachment(nil), e.Attachments...)
	}
	return c
}

// Draft holds the user-editable fields of an exam. Create ignores Status;
// Update replaces every field of the stored exam with the draft's values.
type Draft struct {
	ExamName       string   `validate:"required"`
	Category       Category `validate:"required,oneof=Bank SSC UPSC PSC Railway Others"`
	ApplicationNo  string
	RegistrationNo string
	ApplyDate      *Date
	LastDate       *Date
	AdmitCardDate  *Date
	PrelimsDate    *Date
	MainsDate      *Date
	ResultDate     *Date
	Notes          string
	Status         Status `validate:"omitempty,oneof=Upcoming Ongoing Completed Expired"`
}

// DraftFrom extracts the editable fields of e.
func DraftFrom(e Exam) Draft {
	c := e.Clone()
	return Draft{
		ExamName:       c.ExamName,
		Category:       c.Category,
		ApplicationNo:  c.ApplicationNo,
		RegistrationNo: c.RegistrationNo,
		ApplyDate:      c.ApplyDate,
		LastDate:       c.LastDate,
		AdmitCardDate:  c.AdmitCardDate,
		PrelimsDate:    c.PrelimsDate,
		MainsDate:      c.MainsDate,
		ResultDate:     c.ResultDate,
		Notes:          c.Notes,
		Status:         c.Status,
	}
}

// EventType labels a timeline event with the milestone it came from.
type EventType string

const (
	EventLastDate  EventType = "Last Date"
	EventAdmitCard EventType = "Admit Card"
	EventPrelims   EventType = "Prelims"
	EventMains     EventType = "Mains"
	EventResult    EventType = "Result"
)

// TimelineEvent is one populated milestone date of one exam. It is derived
// from the collection on demand and never stored.
type TimelineEvent struct {
	ExamID   string
	ExamName string
	Type     EventType
	Date     Date
}

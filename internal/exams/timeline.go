package exams

import (
	"sort"
	"sync"

	"examtrack/internal/model"
)

// milestones lists the date fields that produce timeline events, in the
// order they appear for one exam. The application date is not a milestone.
var milestones = []struct {
	typ  model.EventType
	date func(*model.Exam) *model.Date
}{
	{model.EventLastDate, func(e *model.Exam) *model.Date { return e.LastDate }},
	{model.EventAdmitCard, func(e *model.Exam) *model.Date { return e.AdmitCardDate }},
	{model.EventPrelims, func(e *model.Exam) *model.Date { return e.PrelimsDate }},
	{model.EventMains, func(e *model.Exam) *model.Date { return e.MainsDate }},
	{model.EventResult, func(e *model.Exam) *model.Date { return e.ResultDate }},
}

// EventsFor returns one event per populated milestone of exam, in field order.
func EventsFor(exam model.Exam) []model.TimelineEvent {
	var events []model.TimelineEvent
	for _, m := range milestones {
		d := m.date(&exam)
		if d == nil || d.IsZero() {
			continue
		}
		events = append(events, model.TimelineEvent{
			ExamID:   exam.ID,
			ExamName: exam.ExamName,
			Type:     m.typ,
			Date:     *d,
		})
	}
	return events
}

// Project flattens every exam's milestones into one stream sorted by date.
// Events on the same date keep collection order, then field order.
func Project(exams []model.Exam) []model.TimelineEvent {
	var events []model.TimelineEvent
	for _, exam := range exams {
		events = append(events, EventsFor(exam)...)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events
}

// UpcomingEvents returns at most limit events dated today or later. events
// must already be sorted. A limit of zero or less means no limit.
func UpcomingEvents(events []model.TimelineEvent, today model.Date, limit int) []model.TimelineEvent {
	var out []model.TimelineEvent
	for _, ev := range events {
		if ev.Date.Before(today) {
			continue
		}
		out = append(out, ev)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// TimelineCache memoizes Project for a Store, keyed by the store's version.
type TimelineCache struct {
	store *Store

	mu      sync.Mutex
	valid   bool
	version uint64
	events  []model.TimelineEvent
}

func NewTimelineCache(store *Store) *TimelineCache {
	return &TimelineCache{store: store}
}

// Events returns the projected timeline, recomputing it only when the store
// has been mutated since the last call.
func (c *TimelineCache) Events() []model.TimelineEvent {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.version == c.store.Version() {
		return append([]model.TimelineEvent(nil), c.events...)
	}

	exams, version := c.store.view()
	c.events = Project(exams)
	c.version = version
	c.valid = true
	return append([]model.TimelineEvent(nil), c.events...)
}

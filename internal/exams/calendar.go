package exams

import (
	"time"

	"examtrack/internal/model"
)

// BucketByDay groups the milestone events of exams that fall in the given
// month by day of month. Days without events have no entry.
func BucketByDay(exams []model.Exam, year int, month time.Month) map[int][]model.TimelineEvent {
	buckets := make(map[int][]model.TimelineEvent)
	for _, exam := range exams {
		for _, ev := range EventsFor(exam) {
			if ev.Date.Year != year || ev.Date.Month != month {
				continue
			}
			buckets[ev.Date.Day] = append(buckets[ev.Date.Day], ev)
		}
	}
	return buckets
}

// DaysInMonth returns the number of days in month. Day zero of the next month
// normalizes to the last day of this one, December included.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekday returns the weekday of the first day of month.
func FirstWeekday(year int, month time.Month) time.Weekday {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday()
}

// MonthGrid lays the month out in Sunday-first weeks. Cells outside the
// month are zero.
func MonthGrid(year int, month time.Month) [][7]int {
	var weeks [][7]int
	var week [7]int

	col := int(FirstWeekday(year, month))
	for day := 1; day <= DaysInMonth(year, month); day++ {
		week[col] = day
		col++
		if col == 7 {
			weeks = append(weeks, week)
			week = [7]int{}
			col = 0
		}
	}
	if col != 0 {
		weeks = append(weeks, week)
	}
	return weeks
}

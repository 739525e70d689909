package testutil

import (
	"strconv"
	"sync"
	"time"
)

// Today is the instant FixedClock starts at. Countdown and "upcoming" tests
// place exam dates relative to it, so it sits mid-morning UTC on a weekday
// away from any month boundary.
var Today = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

// StubClock is the exams.Clock used by tests. It only moves when a test
// calls Advance or AdvanceDays.
type StubClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock returns a StubClock set to Today.
func FixedClock() *StubClock {
	return NewStubClock(Today)
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// AdvanceDays moves the clock by whole calendar days, keeping the time of day.
func (c *StubClock) AdvanceDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.AddDate(0, 0, n)
}

// StubIDGenerator hands out exam ids in creation order: exam-1, exam-2, and
// so on. Tests refer to records by these ids directly.
type StubIDGenerator struct {
	mu   sync.Mutex
	next int
}

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return "exam-" + strconv.Itoa(g.next)
}

package chore

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DateLayout is the calendar-date format used for due dates.
const DateLayout = "2006-01-02"

// Calendar decides what "today" is for the household. All due dates are
// calendar dates in its location.
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

func NewCalendar(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	return &Calendar{loc: loc, now: time.Now}
}

// WithClock replaces the time source.
func (c *Calendar) WithClock(now func() time.Time) *Calendar {
	return &Calendar{loc: c.loc, now: now}
}

func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Today returns the current date in the calendar's location.
func (c *Calendar) Today() string {
	return c.now().In(c.loc).Format(DateLayout)
}

// Normalize turns a user supplied date into YYYY-MM-DD. An empty value means
// today. Anything dateparse understands is accepted.
func (c *Calendar) Normalize(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return c.Today(), nil
	}
	if t, err := time.ParseInLocation(DateLayout, s, c.loc); err == nil {
		return t.Format(DateLayout), nil
	}
	t, err := dateparse.ParseIn(s, c.loc)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", s, err)
	}
	return t.In(c.loc).Format(DateLayout), nil
}

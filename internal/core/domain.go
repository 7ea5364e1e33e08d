package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// GridCells is the fixed size of a month grid: 6 weeks of 7 days.
const GridCells = 42

type (
	Difficulty string

	Date struct {
		time.Time
	}

	StudySession struct {
		ID         string
		Subject    string
		StartTime  string // e.g. "9:00 AM"
		Duration   string // e.g. "90 min"
		Difficulty Difficulty
		ExamTag    string // empty when the session is not tied to an exam
		Completed  bool
	}

	DayCell struct {
		Day          int
		CurrentMonth bool
		IsToday      bool
		Sessions     []StudySession
	}

	Completion struct {
		ID          int64
		SessionID   string
		Date        Date
		Subject     string
		CompletedAt time.Time
	}
)

var (
	ErrInvalidMonth    = errors.New("invalid month")
	ErrInvalidDay      = errors.New("invalid day")
	ErrInvalidSession  = errors.New("invalid session id")
	ErrSessionNotFound = errors.New("session not found on that day")
)

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	default:
		return false
	}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month (1-12)
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

func (c Completion) Validate() error {
	if err := c.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.SessionID) == "" {
		return ErrInvalidSession
	}
	return nil
}

// FindSession returns the session with the given id, if present.
func (c DayCell) FindSession(id string) (StudySession, bool) {
	for _, s := range c.Sessions {
		if s.ID == id {
			return s, true
		}
	}
	return StudySession{}, false
}

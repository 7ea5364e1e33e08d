package core

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	knownSubjects  = []string{"Physics", "Chemistry", "Mathematics", "Biology"}
	knownExamTypes = []string{"JEE Mains", "JEE Advanced", "NEET", "MHT-CET"}
)

// Subjects returns the subjects a plan may contain.
func Subjects() []string {
	return append([]string(nil), knownSubjects...)
}

// ExamTypes returns the exams a plan may target.
func ExamTypes() []string {
	return append([]string(nil), knownExamTypes...)
}

const (
	planSessionMinutes = 90
	planBreakMinutes   = 30
	planDayStartMinute = 9 * 60
)

var (
	ErrNoSubjects         = errors.New("at least one subject is required")
	ErrUnknownSubject     = errors.New("unknown subject")
	ErrDuplicateSubject   = errors.New("duplicate subject")
	ErrInvalidHours       = errors.New("hours per day must be between 1 and 12 in steps of 0.5")
	ErrInvalidTargetScore = errors.New("target score must be between 1 and 100")
	ErrUnknownExam        = errors.New("unknown exam type")
	ErrMissingExamDate    = errors.New("exam date is required")
)

// StudyPlan captures the preferences entered in the plan generator.
type StudyPlan struct {
	ID           string
	Subjects     []string
	WeakSubjects []string
	HoursPerDay  float64
	TargetScore  int
	ExamType     string
	ExamDate     Date
	CreatedAt    time.Time
}

func (p StudyPlan) Validate() error {
	if len(p.Subjects) == 0 {
		return ErrNoSubjects
	}
	seen := make(map[string]bool, len(p.Subjects))
	for _, s := range p.Subjects {
		if !contains(knownSubjects, s) {
			return fmt.Errorf("%w: %q", ErrUnknownSubject, s)
		}
		if seen[s] {
			return fmt.Errorf("%w: %q", ErrDuplicateSubject, s)
		}
		seen[s] = true
	}
	for _, s := range p.WeakSubjects {
		if !contains(knownSubjects, s) {
			return fmt.Errorf("%w: %q", ErrUnknownSubject, s)
		}
	}
	if p.HoursPerDay < 1 || p.HoursPerDay > 12 || math.Mod(p.HoursPerDay*2, 1) != 0 {
		return ErrInvalidHours
	}
	if p.TargetScore < 1 || p.TargetScore > 100 {
		return ErrInvalidTargetScore
	}
	if !contains(knownExamTypes, p.ExamType) {
		return fmt.Errorf("%w: %q", ErrUnknownExam, p.ExamType)
	}
	if p.ExamDate.IsZero() {
		return ErrMissingExamDate
	}
	return nil
}

// IsWeak reports whether subject was flagged as needing more focus.
func (p StudyPlan) IsWeak(subject string) bool {
	return contains(p.WeakSubjects, subject)
}

// PlanSessions schedules the daily hours of a StudyPlan as back-to-back blocks
// with a break between them, rotating through the plan's subjects by day number.
type PlanSessions struct {
	Plan StudyPlan
}

func (ps PlanSessions) SessionsFor(q SessionQuery) []StudySession {
	p := ps.Plan
	if len(p.Subjects) == 0 || p.HoursPerDay <= 0 {
		return nil
	}
	day := q.Date()
	if !p.ExamDate.IsZero() && day.After(p.ExamDate.Time) {
		return nil
	}

	remaining := int(math.Round(p.HoursPerDay * 60))
	start := planDayStartMinute
	var out []StudySession
	for slot := 1; remaining > 0; slot++ {
		minutes := planSessionMinutes
		if remaining < minutes {
			minutes = remaining
		}
		subject := p.Subjects[(q.Day+slot-1)%len(p.Subjects)]
		difficulty := Medium
		if p.IsWeak(subject) {
			difficulty = Hard
		}
		out = append(out, StudySession{
			ID:         fmt.Sprintf("plan-%d-%d", q.Day, slot),
			Subject:    subject,
			StartTime:  clockLabel(start),
			Duration:   fmt.Sprintf("%d min", minutes),
			Difficulty: difficulty,
			ExamTag:    p.ExamType,
		})
		remaining -= minutes
		start += minutes + planBreakMinutes
	}
	return out
}

// clockLabel renders minutes since midnight as "9:00 AM".
func clockLabel(minutes int) string {
	minutes %= 24 * 60
	h, m := minutes/60, minutes%60
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, m, suffix)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

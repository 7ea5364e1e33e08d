package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Streak      AchievementType = "streak"
	Mastery     AchievementType = "mastery"
	Milestone   AchievementType = "milestone"
	Improvement AchievementType = "improvement"
)

type (
	AchievementType string

	Achievement struct {
		ID          string
		Title       string
		Description string
		EarnedOn    Date
		IsNew       bool
		Type        AchievementType
	}
)

var ErrUnknownAchievementType = errors.New("unknown achievement type")

func (t AchievementType) Valid() bool {
	switch t {
	case Streak, Mastery, Milestone, Improvement:
		return true
	default:
		return false
	}
}

// FilterAchievements keeps achievements of the given type in their original order.
// An empty filter or "all" keeps everything.
func FilterAchievements(list []Achievement, filter string) ([]Achievement, error) {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" || filter == "all" {
		return append([]Achievement(nil), list...), nil
	}
	t := AchievementType(filter)
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAchievementType, filter)
	}
	out := make([]Achievement, 0, len(list))
	for _, a := range list {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out, nil
}

// DefaultAchievements is the catalogue shown to a new student.
func DefaultAchievements() []Achievement {
	return []Achievement{
		{ID: "achievement-1", Title: "7-Day Study Streak", Description: "You studied for 7 consecutive days!", EarnedOn: NewDate(2023, 5, 15), IsNew: true, Type: Streak},
		{ID: "achievement-2", Title: "Calculus Master", Description: "You completed all calculus modules with a score above 90%!", EarnedOn: NewDate(2023, 5, 10), Type: Mastery},
		{ID: "achievement-3", Title: "50 Hours of Learning", Description: "You've spent over 50 hours studying this month!", EarnedOn: NewDate(2023, 5, 8), Type: Milestone},
		{ID: "achievement-4", Title: "Physics Improvement", Description: "Your physics scores improved by 25% over the last month!", EarnedOn: NewDate(2023, 5, 5), Type: Improvement},
		{ID: "achievement-5", Title: "10 Topics Mastered", Description: "You've mastered 10 different study topics!", EarnedOn: NewDate(2023, 5, 1), Type: Milestone},
		{ID: "achievement-6", Title: "Goal Crusher", Description: "You completed all your weekly study goals!", EarnedOn: NewDate(2023, 4, 28), Type: Milestone},
	}
}

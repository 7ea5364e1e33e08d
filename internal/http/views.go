package http

import (
	"time"

	"studyplan/internal/core"
)

var weekdayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// JSON shapes of the API. Core types stay free of encoding tags.
type (
	sessionJSON struct {
		ID         string `json:"id"`
		Subject    string `json:"subject"`
		StartTime  string `json:"start_time"`
		Duration   string `json:"duration"`
		Difficulty string `json:"difficulty"`
		ExamTag    string `json:"exam_tag,omitempty"`
		Completed  bool   `json:"completed"`
	}

	dayCellJSON struct {
		Day          int           `json:"day"`
		Date         string        `json:"date,omitempty"`
		CurrentMonth bool          `json:"current_month"`
		IsToday      bool          `json:"is_today"`
		Sessions     []sessionJSON `json:"sessions"`
	}

	monthJSON struct {
		Year  int `json:"year"`
		Month int `json:"month"`
	}

	subjectCountJSON struct {
		Subject   string `json:"subject"`
		Planned   int    `json:"planned"`
		Completed int    `json:"completed"`
	}

	summaryJSON struct {
		Planned        int                `json:"planned"`
		Completed      int                `json:"completed"`
		CompletionRate int                `json:"completion_rate"`
		BySubject      []subjectCountJSON `json:"by_subject"`
	}

	calendarJSON struct {
		Year    int           `json:"year"`
		Month   int           `json:"month"`
		Label   string        `json:"label"`
		Today   string        `json:"today"`
		Prev    monthJSON     `json:"prev"`
		Next    monthJSON     `json:"next"`
		Cells   []dayCellJSON `json:"cells"`
		Summary summaryJSON   `json:"summary"`
	}

	completionJSON struct {
		ID          int64  `json:"id"`
		SessionID   string `json:"session_id"`
		Date        string `json:"date"`
		Subject     string `json:"subject"`
		CompletedAt string `json:"completed_at"`
	}

	planJSON struct {
		ID           string   `json:"id"`
		Subjects     []string `json:"subjects"`
		WeakSubjects []string `json:"weak_subjects"`
		HoursPerDay  float64  `json:"hours_per_day"`
		TargetScore  int      `json:"target_score"`
		ExamType     string   `json:"exam_type"`
		ExamDate     string   `json:"exam_date"`
		CreatedAt    string   `json:"created_at"`
	}

	achievementJSON struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		EarnedOn    string `json:"earned_on"`
		IsNew       bool   `json:"is_new"`
		Type        string `json:"type"`
	}
)

func toSessionJSON(s core.StudySession) sessionJSON {
	return sessionJSON{
		ID:         s.ID,
		Subject:    s.Subject,
		StartTime:  s.StartTime,
		Duration:   s.Duration,
		Difficulty: string(s.Difficulty),
		ExamTag:    s.ExamTag,
		Completed:  s.Completed,
	}
}

func toCalendarJSON(ref core.MonthRef, cells []core.DayCell, today time.Time) calendarJSON {
	prev, next := ref.Prev(), ref.Next()
	out := calendarJSON{
		Year:    ref.Year,
		Month:   ref.Month(),
		Label:   ref.Label(),
		Today:   core.DateOf(today).String(),
		Prev:    monthJSON{Year: prev.Year, Month: prev.Month()},
		Next:    monthJSON{Year: next.Year, Month: next.Month()},
		Cells:   make([]dayCellJSON, len(cells)),
		Summary: toSummaryJSON(core.SummarizeGrid(ref, cells)),
	}
	for i, c := range cells {
		cell := dayCellJSON{
			Day:          c.Day,
			CurrentMonth: c.CurrentMonth,
			IsToday:      c.IsToday,
			Sessions:     make([]sessionJSON, len(c.Sessions)),
		}
		if c.CurrentMonth {
			cell.Date = core.NewDate(ref.Year, ref.Month(), c.Day).String()
		}
		for j, s := range c.Sessions {
			cell.Sessions[j] = toSessionJSON(s)
		}
		out.Cells[i] = cell
	}
	return out
}

func toSummaryJSON(s core.MonthSummary) summaryJSON {
	out := summaryJSON{
		Planned:        s.Planned,
		Completed:      s.Completed,
		CompletionRate: s.CompletionRate,
		BySubject:      make([]subjectCountJSON, len(s.BySubject)),
	}
	for i, b := range s.BySubject {
		out.BySubject[i] = subjectCountJSON{Subject: b.Subject, Planned: b.Planned, Completed: b.Completed}
	}
	return out
}

func toCompletionJSON(c core.Completion) completionJSON {
	return completionJSON{
		ID:          c.ID,
		SessionID:   c.SessionID,
		Date:        c.Date.String(),
		Subject:     c.Subject,
		CompletedAt: c.CompletedAt.UTC().Format(time.RFC3339),
	}
}

func toPlanJSON(p core.StudyPlan) planJSON {
	weak := p.WeakSubjects
	if weak == nil {
		weak = []string{}
	}
	return planJSON{
		ID:           p.ID,
		Subjects:     p.Subjects,
		WeakSubjects: weak,
		HoursPerDay:  p.HoursPerDay,
		TargetScore:  p.TargetScore,
		ExamType:     p.ExamType,
		ExamDate:     p.ExamDate.String(),
		CreatedAt:    p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toAchievementJSON(a core.Achievement) achievementJSON {
	return achievementJSON{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		EarnedOn:    a.EarnedOn.String(),
		IsNew:       a.IsNew,
		Type:        string(a.Type),
	}
}

// Template view models.
type (
	cellView struct {
		core.DayCell
		Date        string
		CanComplete bool
	}

	// sessionItemView is what the session_item partial renders.
	sessionItemView struct {
		Session     core.StudySession
		Date        string
		CanComplete bool
	}

	calendarView struct {
		Label    string
		Year     int
		Month    int
		SelfURL  string
		PrevURL  string
		NextURL  string
		TodayURL string
		Weekdays []string
		Weeks    [][]cellView
		Summary  core.MonthSummary
	}
)

// newCalendarView splits the 42 cells into 6 weeks. Only sessions of past or
// current current-month days can be completed.
func newCalendarView(ref core.MonthRef, cells []core.DayCell, today time.Time) calendarView {
	todayDate := core.DateOf(today)
	v := calendarView{
		Label:    ref.Label(),
		Year:     ref.Year,
		Month:    ref.Month(),
		SelfURL:  calendarURL(ref),
		PrevURL:  calendarURL(ref.Prev()),
		NextURL:  calendarURL(ref.Next()),
		TodayURL: calendarURL(core.MonthRefOf(today)),
		Weekdays: weekdayNames,
		Summary:  core.SummarizeGrid(ref, cells),
	}
	for week := 0; week < len(cells)/7; week++ {
		row := make([]cellView, 7)
		for d := 0; d < 7; d++ {
			c := cells[week*7+d]
			cv := cellView{DayCell: c}
			if c.CurrentMonth {
				date := core.NewDate(ref.Year, ref.Month(), c.Day)
				cv.Date = date.String()
				cv.CanComplete = !date.After(todayDate.Time)
			}
			row[d] = cv
		}
		v.Weeks = append(v.Weeks, row)
	}
	return v
}

func newSessionItem(s core.StudySession, date string, canComplete bool) sessionItemView {
	return sessionItemView{Session: s, Date: date, CanComplete: canComplete}
}

package core

import "fmt"

// PatternSessions schedules a fixed PCMB rotation derived from the day number:
// even days get Physics and Mathematics, every third day Chemistry and every
// fourth day Biology. Biology sessions before today in today's month count as done.
type PatternSessions struct{}

func (PatternSessions) SessionsFor(q SessionQuery) []StudySession {
	d := q.Day
	var out []StudySession

	if d%2 == 0 {
		out = append(out,
			StudySession{
				ID:         sessionID(d, 1),
				Subject:    "Physics",
				StartTime:  "9:00 AM",
				Duration:   "90 min",
				Difficulty: Medium,
				ExamTag:    "JEE Mains",
			},
			StudySession{
				ID:         sessionID(d, 2),
				Subject:    "Mathematics",
				StartTime:  "11:30 AM",
				Duration:   "90 min",
				Difficulty: Hard,
				ExamTag:    "JEE Mains",
			},
		)
	}

	if d%3 == 0 {
		out = append(out, StudySession{
			ID:         sessionID(d, 3),
			Subject:    "Chemistry",
			StartTime:  "2:00 PM",
			Duration:   "60 min",
			Difficulty: Medium,
			ExamTag:    "JEE Mains",
		})
	}

	if d%4 == 0 {
		out = append(out, StudySession{
			ID:         sessionID(d, 4),
			Subject:    "Biology",
			StartTime:  "4:30 PM",
			Duration:   "75 min",
			Difficulty: Easy,
			ExamTag:    "NEET",
			Completed:  q.InTodaysMonth() && d < q.Today.Day(),
		})
	}

	return out
}

func sessionID(day, slot int) string {
	return fmt.Sprintf("event-%d-%d", day, slot)
}

// CompletionOverlay marks sessions from Base as completed when Done holds
// their (date, session id) pair. Base results are copied, never mutated.
type CompletionOverlay struct {
	Base SessionSource
	Done map[CompletionKey]bool
}

// CompletionKey identifies a completed session on a calendar day.
type CompletionKey struct {
	Date      string // YYYY-MM-DD
	SessionID string
}

// NewCompletionOverlay indexes completions for quick lookup.
func NewCompletionOverlay(base SessionSource, completions []Completion) CompletionOverlay {
	done := make(map[CompletionKey]bool, len(completions))
	for _, c := range completions {
		done[CompletionKey{Date: c.Date.String(), SessionID: c.SessionID}] = true
	}
	return CompletionOverlay{Base: base, Done: done}
}

func (o CompletionOverlay) SessionsFor(q SessionQuery) []StudySession {
	if o.Base == nil {
		return nil
	}
	base := o.Base.SessionsFor(q)
	if len(base) == 0 || len(o.Done) == 0 {
		return base
	}
	date := q.Date().String()
	out := make([]StudySession, len(base))
	copy(out, base)
	for i := range out {
		if o.Done[CompletionKey{Date: date, SessionID: out[i].ID}] {
			out[i].Completed = true
		}
	}
	return out
}

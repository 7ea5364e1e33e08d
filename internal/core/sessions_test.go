package core

import (
	"testing"
	"time"
)

func subjects(sessions []StudySession) []string {
	out := make([]string, len(sessions))
	for i, s := range sessions {
		out[i] = s.Subject
	}
	return out
}

func TestPatternSessions(t *testing.T) {
	today := date(2024, time.February, 15)
	src := PatternSessions{}

	tests := []struct {
		name string
		day  int
		want []string
	}{
		{name: "day 7 is empty", day: 7, want: nil},
		{name: "day 1 is empty", day: 1, want: nil},
		{name: "even day", day: 2, want: []string{"Physics", "Mathematics"}},
		{name: "third day", day: 9, want: []string{"Chemistry"}},
		{name: "even and third", day: 6, want: []string{"Physics", "Mathematics", "Chemistry"}},
		{name: "fourth day", day: 4, want: []string{"Physics", "Mathematics", "Biology"}},
		{name: "day 12 gets all four", day: 12, want: []string{"Physics", "Mathematics", "Chemistry", "Biology"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := subjects(src.SessionsFor(SessionQuery{Year: 2024, Month: time.February, Day: tt.day, Today: today}))
			if len(got) != len(tt.want) {
				t.Fatalf("SessionsFor(%d) = %v, want %v", tt.day, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("SessionsFor(%d) = %v, want %v", tt.day, got, tt.want)
				}
			}
		})
	}
}

func TestPatternSessions_Details(t *testing.T) {
	q := SessionQuery{Year: 2024, Month: time.February, Day: 12, Today: date(2024, time.February, 15)}
	got := PatternSessions{}.SessionsFor(q)
	want := []StudySession{
		{ID: "event-12-1", Subject: "Physics", StartTime: "9:00 AM", Duration: "90 min", Difficulty: Medium, ExamTag: "JEE Mains"},
		{ID: "event-12-2", Subject: "Mathematics", StartTime: "11:30 AM", Duration: "90 min", Difficulty: Hard, ExamTag: "JEE Mains"},
		{ID: "event-12-3", Subject: "Chemistry", StartTime: "2:00 PM", Duration: "60 min", Difficulty: Medium, ExamTag: "JEE Mains"},
		{ID: "event-12-4", Subject: "Biology", StartTime: "4:30 PM", Duration: "75 min", Difficulty: Easy, ExamTag: "NEET", Completed: true},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d sessions, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("session %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestPatternSessions_BiologyCompletion(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month time.Month
		day   int
		today time.Time
		want  bool
	}{
		{"before today in this month", 2024, time.February, 8, date(2024, time.February, 15), true},
		{"today itself", 2024, time.February, 8, date(2024, time.February, 8), false},
		{"after today", 2024, time.February, 20, date(2024, time.February, 15), false},
		{"other month", 2024, time.January, 8, date(2024, time.February, 15), false},
		{"same month other year", 2023, time.February, 8, date(2024, time.February, 15), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PatternSessions{}.SessionsFor(SessionQuery{Year: tt.year, Month: tt.month, Day: tt.day, Today: tt.today})
			bio := got[len(got)-1]
			if bio.Subject != "Biology" {
				t.Fatalf("expected Biology last, got %v", subjects(got))
			}
			if bio.Completed != tt.want {
				t.Errorf("Completed = %v, want %v", bio.Completed, tt.want)
			}
		})
	}
}

func TestCompletionOverlay(t *testing.T) {
	today := date(2024, time.February, 15)
	overlay := NewCompletionOverlay(PatternSessions{}, []Completion{
		{SessionID: "event-12-1", Date: NewDate(2024, 2, 12)},
		{SessionID: "event-12-2", Date: NewDate(2024, 3, 12)}, // other month
	})

	got := overlay.SessionsFor(SessionQuery{Year: 2024, Month: time.February, Day: 12, Today: today})
	if !got[0].Completed {
		t.Errorf("expected stored completion to mark Physics done")
	}
	if got[1].Completed {
		t.Errorf("completion from another month must not leak")
	}

	// The base source output must be left untouched.
	base := PatternSessions{}.SessionsFor(SessionQuery{Year: 2024, Month: time.February, Day: 12, Today: today})
	if base[0].Completed {
		t.Errorf("overlay mutated base sessions")
	}

	if (CompletionOverlay{}).SessionsFor(SessionQuery{Day: 2}) != nil {
		t.Errorf("nil base should yield no sessions")
	}
}

func TestCompletionOverlay_WithGridBuilder(t *testing.T) {
	overlay := NewCompletionOverlay(PatternSessions{}, []Completion{
		{SessionID: "event-2-2", Date: NewDate(2024, 2, 2)},
	})
	cells, err := GridBuilder{Sessions: overlay}.Build(2024, 1, date(2024, time.February, 15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 1 Feb 2024 sits at index 4.
	day2 := cells[5]
	if day2.Day != 2 || !day2.CurrentMonth {
		t.Fatalf("unexpected cell %+v", day2)
	}
	s, ok := day2.FindSession("event-2-2")
	if !ok || !s.Completed {
		t.Fatalf("expected event-2-2 completed, got %+v (found=%v)", s, ok)
	}
	if _, ok := day2.FindSession("event-2-9"); ok {
		t.Fatalf("unexpected session found")
	}
}

package core

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func countCurrent(cells []DayCell) int {
	n := 0
	for _, c := range cells {
		if c.CurrentMonth {
			n++
		}
	}
	return n
}

func countToday(cells []DayCell) int {
	n := 0
	for _, c := range cells {
		if c.IsToday {
			n++
		}
	}
	return n
}

func TestBuildMonthGrid_AllMonthsHave42Cells(t *testing.T) {
	today := date(2024, time.February, 15)
	for _, year := range []int{1900, 1999, 2000, 2023, 2024, 2100} {
		for m := 0; m < 12; m++ {
			cells, err := BuildMonthGrid(year, m, today)
			if err != nil {
				t.Fatalf("BuildMonthGrid(%d, %d) error: %v", year, m, err)
			}
			if len(cells) != GridCells {
				t.Fatalf("BuildMonthGrid(%d, %d) = %d cells, want %d", year, m, len(cells), GridCells)
			}
			want, _ := DaysInMonth(year, m)
			if got := countCurrent(cells); got != want {
				t.Errorf("BuildMonthGrid(%d, %d) current cells = %d, want %d", year, m, got, want)
			}
			// Current-month days are contiguous and numbered 1..n.
			first := -1
			for i, c := range cells {
				if c.CurrentMonth {
					if first < 0 {
						first = i
					}
					if c.Day != i-first+1 {
						t.Fatalf("BuildMonthGrid(%d, %d) cell %d numbered %d", year, m, i, c.Day)
					}
				} else if len(c.Sessions) != 0 {
					t.Fatalf("adjacent-month cell %d carries sessions", i)
				}
			}
			wantFirst := int(time.Date(year, time.Month(m+1), 1, 0, 0, 0, 0, time.UTC).Weekday())
			if first != wantFirst {
				t.Errorf("BuildMonthGrid(%d, %d) first day at %d, want %d", year, m, first, wantFirst)
			}
		}
	}
}

func TestBuildMonthGrid_LeapFebruary(t *testing.T) {
	cells, err := BuildMonthGrid(2024, 1, date(2024, time.February, 15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := countCurrent(cells); got != 29 {
		t.Fatalf("current cells = %d, want 29", got)
	}
	// 1 Feb 2024 is a Thursday: Jan 28-31 lead the grid.
	wantLead := []int{28, 29, 30, 31}
	for i, d := range wantLead {
		if cells[i].CurrentMonth || cells[i].Day != d {
			t.Fatalf("cell %d = %+v, want trailing January %d", i, cells[i], d)
		}
	}
	if countToday(cells) != 1 {
		t.Fatalf("expected exactly one today cell, got %d", countToday(cells))
	}
	today, ok := TodayCell(cells)
	if !ok || today.Day != 15 || !today.CurrentMonth {
		t.Fatalf("today cell = %+v", today)
	}
	// 4 + 29 = 33, so March 1-9 close the grid.
	last := cells[GridCells-1]
	if last.CurrentMonth || last.Day != 9 {
		t.Fatalf("last cell = %+v, want next-month 9", last)
	}
}

func TestBuildMonthGrid_NonLeapFebruaryWithoutToday(t *testing.T) {
	cells, err := BuildMonthGrid(2023, 1, date(2023, time.March, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := countCurrent(cells); got != 28 {
		t.Fatalf("current cells = %d, want 28", got)
	}
	if n := countToday(cells); n != 0 {
		t.Fatalf("expected no today cell, got %d", n)
	}
}

func TestBuildMonthGrid_TodayInOtherYearIsNotMarked(t *testing.T) {
	cells, err := BuildMonthGrid(2023, 1, date(2024, time.February, 15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := countToday(cells); n != 0 {
		t.Fatalf("expected no today cell, got %d", n)
	}
}

func TestBuildMonthGrid_YearRollover(t *testing.T) {
	today := date(2020, time.June, 1)

	// January 2024 starts on Monday: one trailing day, 31 December 2023.
	jan, err := BuildMonthGrid(2024, 0, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if jan[0].CurrentMonth || jan[0].Day != 31 || !jan[1].CurrentMonth {
		t.Fatalf("unexpected January lead: %+v %+v", jan[0], jan[1])
	}

	// December 2023 starts on Friday: 26-30 November lead, 1-6 January close.
	dec, err := BuildMonthGrid(2023, 11, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, d := range []int{26, 27, 28, 29, 30} {
		if dec[i].Day != d || dec[i].CurrentMonth {
			t.Fatalf("December cell %d = %+v, want trailing %d", i, dec[i], d)
		}
	}
	for i := 0; i < 6; i++ {
		c := dec[36+i]
		if c.CurrentMonth || c.Day != i+1 {
			t.Fatalf("December cell %d = %+v, want leading %d", 36+i, c, i+1)
		}
	}
}

func TestBuildMonthGrid_MonthStartingOnSunday(t *testing.T) {
	// September 2024 starts on Sunday: no trailing days at all.
	cells, err := BuildMonthGrid(2024, 8, date(2024, time.September, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cells[0].CurrentMonth || cells[0].Day != 1 {
		t.Fatalf("first cell = %+v, want 1 September", cells[0])
	}
	if !cells[29].IsToday {
		t.Fatalf("expected 30 September to be today")
	}
	if cells[30].CurrentMonth || cells[30].Day != 1 {
		t.Fatalf("cell 30 = %+v, want leading 1 October", cells[30])
	}
}

func TestBuildMonthGrid_InvalidMonth(t *testing.T) {
	for _, m := range []int{-1, 12, 99} {
		cells, err := BuildMonthGrid(2024, m, date(2024, time.January, 1))
		if !errors.Is(err, ErrInvalidMonth) {
			t.Fatalf("month %d: expected ErrInvalidMonth, got %v", m, err)
		}
		if cells != nil {
			t.Fatalf("month %d: expected no cells", m)
		}
	}
	_, err := BuildMonthGrid(2024, 12, time.Now())
	if err == nil || err.Error() != "invalid month: 12 (must be 0-11)" {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestBuildMonthGrid_Idempotent(t *testing.T) {
	today := date(2024, time.February, 15)
	a, err := BuildMonthGrid(2024, 1, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := BuildMonthGrid(2024, 1, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("rebuilding the same month produced different grids")
	}
}

func TestGridBuilder_NilSourceHasNoSessions(t *testing.T) {
	cells, err := GridBuilder{}.Build(2024, 1, date(2024, time.February, 15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, c := range cells {
		if len(c.Sessions) != 0 {
			t.Fatalf("cell %d has sessions without a source", i)
		}
	}
}

func TestGridBuilder_SourceSeesOnlyCurrentMonth(t *testing.T) {
	var queried []int
	src := SessionSourceFunc(func(q SessionQuery) []StudySession {
		if q.Year != 2024 || q.Month != time.March {
			t.Fatalf("unexpected query %+v", q)
		}
		queried = append(queried, q.Day)
		return nil
	})
	if _, err := (GridBuilder{Sessions: src}).Build(2024, 2, date(2024, time.March, 3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(queried) != 31 || queried[0] != 1 || queried[30] != 31 {
		t.Fatalf("source queried for %v", queried)
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year, month, want int
	}{
		{2024, 1, 29},
		{2023, 1, 28},
		{1900, 1, 28},
		{2000, 1, 29},
		{2024, 0, 31},
		{2024, 3, 30},
		{2024, 11, 31},
	}
	for _, tt := range tests {
		got, err := DaysInMonth(tt.year, tt.month)
		if err != nil {
			t.Fatalf("DaysInMonth(%d, %d) error: %v", tt.year, tt.month, err)
		}
		if got != tt.want {
			t.Errorf("DaysInMonth(%d, %d) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
	if _, err := DaysInMonth(2024, 12); !errors.Is(err, ErrInvalidMonth) {
		t.Errorf("expected ErrInvalidMonth, got %v", err)
	}
}

func TestIsLeapYear(t *testing.T) {
	tests := map[int]bool{1900: false, 2000: true, 2023: false, 2024: true, 2100: false, 2400: true}
	for year, want := range tests {
		if got := IsLeapYear(year); got != want {
			t.Errorf("IsLeapYear(%d) = %v, want %v", year, got, want)
		}
	}
}

func TestMonthRefNavigation(t *testing.T) {
	jan := MonthRef{Year: 2024, MonthIndex: 0}
	if got := jan.Prev(); got != (MonthRef{Year: 2023, MonthIndex: 11}) {
		t.Errorf("Prev() = %+v", got)
	}
	dec := MonthRef{Year: 2023, MonthIndex: 11}
	if got := dec.Next(); got != jan {
		t.Errorf("Next() = %+v", got)
	}
	if got := jan.Next().Prev(); got != jan {
		t.Errorf("Next().Prev() = %+v", got)
	}
	if got := (MonthRef{Year: 2024, MonthIndex: 1}).Label(); got != "February 2024" {
		t.Errorf("Label() = %q", got)
	}
	if _, err := NewMonthRef(2024, 13); !errors.Is(err, ErrInvalidMonth) {
		t.Errorf("expected ErrInvalidMonth, got %v", err)
	}
	ref, err := NewMonthRef(2024, 2)
	if err != nil || ref.MonthIndex != 1 || ref.Month() != 2 {
		t.Errorf("NewMonthRef(2024, 2) = %+v, %v", ref, err)
	}
	if got := MonthRefOf(date(2024, time.July, 4)); got != (MonthRef{Year: 2024, MonthIndex: 6}) {
		t.Errorf("MonthRefOf() = %+v", got)
	}
}

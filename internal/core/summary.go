package core

import "sort"

// SubjectCount is the number of sessions planned and done for one subject.
type SubjectCount struct {
	Subject   string
	Planned   int
	Completed int
}

// MonthSummary is a compact summary of a built month grid.
type MonthSummary struct {
	Year           int
	Month          int // 1-12
	Planned        int
	Completed      int
	CompletionRate int // percent, 0-100
	BySubject      []SubjectCount
}

// SummarizeGrid counts the sessions of the current-month cells of a grid.
// Subjects are sorted by planned sessions, then name.
func SummarizeGrid(ref MonthRef, cells []DayCell) MonthSummary {
	sum := MonthSummary{Year: ref.Year, Month: ref.Month()}
	idx := map[string]int{}
	for _, c := range cells {
		if !c.CurrentMonth {
			continue
		}
		for _, s := range c.Sessions {
			i, ok := idx[s.Subject]
			if !ok {
				i = len(sum.BySubject)
				idx[s.Subject] = i
				sum.BySubject = append(sum.BySubject, SubjectCount{Subject: s.Subject})
			}
			sum.BySubject[i].Planned++
			sum.Planned++
			if s.Completed {
				sum.BySubject[i].Completed++
				sum.Completed++
			}
		}
	}
	if sum.Planned > 0 {
		sum.CompletionRate = (sum.Completed*100 + sum.Planned/2) / sum.Planned
	}
	sort.SliceStable(sum.BySubject, func(i, j int) bool {
		a, b := sum.BySubject[i], sum.BySubject[j]
		if a.Planned != b.Planned {
			return a.Planned > b.Planned
		}
		return a.Subject < b.Subject
	})
	return sum
}

// TodayCell returns the cell flagged as today, if the grid contains it.
func TodayCell(cells []DayCell) (DayCell, bool) {
	for _, c := range cells {
		if c.IsToday {
			return c, true
		}
	}
	return DayCell{}, false
}

package core

import (
	"fmt"
	"time"
)

// SessionQuery identifies one current-month day for a SessionSource.
type SessionQuery struct {
	Year  int
	Month time.Month
	Day   int
	Today time.Time
}

// Date returns the queried day as a Date.
func (q SessionQuery) Date() Date {
	return NewDate(q.Year, int(q.Month), q.Day)
}

// InTodaysMonth reports whether the queried day lies in the same month and year as Today.
func (q SessionQuery) InTodaysMonth() bool {
	y, m, _ := q.Today.Date()
	return y == q.Year && m == q.Month
}

// SessionSource produces the study sessions scheduled on a day of the displayed month.
// Implementations must be deterministic for a given query.
type SessionSource interface {
	SessionsFor(q SessionQuery) []StudySession
}

// SessionSourceFunc adapts a plain function to SessionSource.
type SessionSourceFunc func(q SessionQuery) []StudySession

func (f SessionSourceFunc) SessionsFor(q SessionQuery) []StudySession {
	return f(q)
}

// GridBuilder builds 42-cell month grids. A nil Sessions source yields empty days.
type GridBuilder struct {
	Sessions SessionSource
}

// BuildMonthGrid builds the grid for monthIndex (0 = January) of year using the
// default pattern sessions.
func BuildMonthGrid(year, monthIndex int, today time.Time) ([]DayCell, error) {
	return GridBuilder{Sessions: PatternSessions{}}.Build(year, monthIndex, today)
}

// Build returns exactly GridCells cells: the trailing days of the previous month,
// every day of the target month and the leading days of the next month.
func (b GridBuilder) Build(year, monthIndex int, today time.Time) ([]DayCell, error) {
	if err := validateMonthIndex(monthIndex); err != nil {
		return nil, err
	}

	month := time.Month(monthIndex + 1)
	firstWeekday := int(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday())
	prev := MonthRef{Year: year, MonthIndex: monthIndex}.Prev()
	daysInPrev := daysIn(prev.Year, prev.MonthIndex)
	daysInMonth := daysIn(year, monthIndex)

	cells := make([]DayCell, 0, GridCells)
	for d := daysInPrev - firstWeekday + 1; d <= daysInPrev; d++ {
		cells = append(cells, DayCell{Day: d})
	}

	ty, tm, td := today.Date()
	for d := 1; d <= daysInMonth; d++ {
		cell := DayCell{
			Day:          d,
			CurrentMonth: true,
			IsToday:      ty == year && tm == month && td == d,
		}
		if b.Sessions != nil {
			cell.Sessions = b.Sessions.SessionsFor(SessionQuery{Year: year, Month: month, Day: d, Today: today})
		}
		cells = append(cells, cell)
	}

	for d := 1; len(cells) < GridCells; d++ {
		cells = append(cells, DayCell{Day: d})
	}
	return cells, nil
}

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in monthIndex (0 = January) of year.
func DaysInMonth(year, monthIndex int) (int, error) {
	if err := validateMonthIndex(monthIndex); err != nil {
		return 0, err
	}
	return daysIn(year, monthIndex), nil
}

func daysIn(year, monthIndex int) int {
	switch time.Month(monthIndex + 1) {
	case time.February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

func validateMonthIndex(monthIndex int) error {
	if monthIndex < 0 || monthIndex > 11 {
		return fmt.Errorf("%w: %d (must be 0-11)", ErrInvalidMonth, monthIndex)
	}
	return nil
}

// MonthRef is a displayed month, as navigated by previous/next.
type MonthRef struct {
	Year       int
	MonthIndex int // 0 = January
}

// MonthRefOf returns the month containing t.
func MonthRefOf(t time.Time) MonthRef {
	return MonthRef{Year: t.Year(), MonthIndex: int(t.Month()) - 1}
}

// NewMonthRef builds a MonthRef from a 1-12 month number.
func NewMonthRef(year, month int) (MonthRef, error) {
	ref := MonthRef{Year: year, MonthIndex: month - 1}
	if err := validateMonthIndex(ref.MonthIndex); err != nil {
		return MonthRef{}, err
	}
	return ref, nil
}

func (m MonthRef) Prev() MonthRef {
	if m.MonthIndex == 0 {
		return MonthRef{Year: m.Year - 1, MonthIndex: 11}
	}
	return MonthRef{Year: m.Year, MonthIndex: m.MonthIndex - 1}
}

func (m MonthRef) Next() MonthRef {
	if m.MonthIndex == 11 {
		return MonthRef{Year: m.Year + 1, MonthIndex: 0}
	}
	return MonthRef{Year: m.Year, MonthIndex: m.MonthIndex + 1}
}

// Month returns the 1-12 month number.
func (m MonthRef) Month() int {
	return m.MonthIndex + 1
}

// Label renders the month as "February 2024".
func (m MonthRef) Label() string {
	return fmt.Sprintf("%s %d", time.Month(m.MonthIndex+1), m.Year)
}

package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (datatypes.Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return datatypes.Date{}, ErrInvalidDate
	}
	return datatypes.Date(t), nil
}

// ParseClock parses an HH:MM wall-clock time.
func ParseClock(s string) (datatypes.Time, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, ErrInvalidTime
	}
	return datatypes.NewTime(t.Hour(), t.Minute(), 0, 0), nil
}

func FormatDate(d datatypes.Date) string {
	return time.Time(d).Format(dateLayout)
}

func FormatClock(t datatypes.Time) string {
	d := time.Duration(t)
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute))
}

func sameDate(a, b datatypes.Date) bool {
	return FormatDate(a) == FormatDate(b)
}

// At combines a date and a wall-clock time in loc.
func At(d datatypes.Date, t datatypes.Time, loc *time.Location) time.Time {
	y, m, day := time.Time(d).Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc).Add(time.Duration(t))
}

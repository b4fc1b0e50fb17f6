// Package time contains calendar helpers shared by the quota, classifier and report code
package time

import "time"

// DayLayout is the yyyy-mm-dd calendar day format
const DayLayout = "2006-01-02"

// Day renders t as a calendar day in loc
func Day(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// DMY renders t in loc as dd.MM.yyyy
func DMY(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("02.01.2006")
}

// ParseDay parses a yyyy-mm-dd day at midnight in loc
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DayLayout, s, loc)
}

// StartOfDay truncates t to midnight in loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

package usecase

import "time"

// IsRecent decides whether a timestamp belongs in the report for reportDay.
// Dates are compared as calendar days in loc. A missing timestamp only passes
// when the section does not insist on today. There is no upper bound: items
// dated after the report day are accepted.
func IsRecent(ts *time.Time, reportDay time.Time, loc *time.Location, onlyToday bool, fallbackDays int) bool {
	if ts == nil {
		return !onlyToday
	}
	if loc == nil {
		loc = time.UTC
	}

	day := calendarDay(*ts, loc)
	report := calendarDay(reportDay, loc)
	if onlyToday {
		return day.Equal(report)
	}
	return !day.Before(report.AddDate(0, 0, -max(fallbackDays, 0)))
}

// calendarDay truncates t to local midnight. UTC-anchored values keep
// comparisons immune to DST-length days.
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

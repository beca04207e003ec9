package domain

import "time"

// StartOfDay truncates t to midnight of its calendar day in the local zone.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(time.Local).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// SameDay checks if two times fall on the same local calendar day.
func SameDay(t1, t2 time.Time) bool {
	y1, m1, d1 := t1.In(time.Local).Date()
	y2, m2, d2 := t2.In(time.Local).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// DayKey returns a comparable key for the local calendar day of t.
func DayKey(t time.Time) string {
	return t.In(time.Local).Format(time.DateOnly)
}

// AddDays shifts a day by n calendar days, keeping it at midnight across DST changes.
func AddDays(day time.Time, n int) time.Time {
	return StartOfDay(day).AddDate(0, 0, n)
}

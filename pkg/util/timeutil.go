package util

import "time"

// NowUTC returns the current wall-clock time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// MinuteBucket truncates a timestamp to minute resolution in UTC.
func MinuteBucket(t time.Time) string {
	return t.UTC().Format("200601021504")
}

// DayBucket truncates a timestamp to a daily bucket in UTC.
func DayBucket(t time.Time) string {
	return t.UTC().Format("20060102")
}

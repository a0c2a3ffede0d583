package cache

import "time"

// TimeUntilNextHour returns the duration until the next occurrence of
// the given hour (UTC). Used to expire cached reads right after the
// nightly ingest refreshes the store.
func TimeUntilNextHour(hour int) time.Duration {
	now := time.Now().UTC()

	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	if !now.Before(next) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}

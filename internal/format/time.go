package format

import (
	"fmt"
	"time"
)

const (
	day   = 24 * time.Hour
	month = 30 * day
	year  = 365 * day
)

// Elapsed is how long ago tsMillis was relative to now. Future timestamps count as zero.
func Elapsed(tsMillis int64, now time.Time) time.Duration {
	d := now.Sub(time.UnixMilli(tsMillis))
	if d < 0 {
		return 0
	}
	return d
}

// TimeAgo renders the age of tsMillis as "42s ago", "3m ago", "5h ago" and so on.
// now is passed in on every call; nothing here keeps a clock.
func TimeAgo(tsMillis int64, now time.Time) string {
	d := Elapsed(tsMillis, now)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", d/time.Second)
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", d/time.Minute)
	case d < day:
		return fmt.Sprintf("%dh ago", d/time.Hour)
	case d < month:
		return fmt.Sprintf("%dd ago", d/day)
	case d < year:
		return fmt.Sprintf("%dmo ago", d/month)
	default:
		return fmt.Sprintf("%dy ago", d/year)
	}
}

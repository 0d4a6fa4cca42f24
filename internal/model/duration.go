package model

import (
	"fmt"
	"time"
)

// NoTimeMarker is shown where a player has no recorded time
const NoTimeMarker = "-"

// FormatDuration renders an elapsed time for display.
// Times under a minute read "9.8s", longer ones "1:05.3".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	tenths := int64(d / (100 * time.Millisecond))
	if d < time.Minute {
		return fmt.Sprintf("%d.%ds", tenths/10, tenths%10)
	}
	minutes := tenths / 600
	rem := tenths % 600
	return fmt.Sprintf("%d:%02d.%d", minutes, rem/10, rem%10)
}

// BestTime is a best-effort time that may not exist yet
type BestTime struct {
	Duration time.Duration
	Recorded bool
}

// RecordedTime wraps a duration as a present BestTime
func RecordedTime(d time.Duration) BestTime {
	return BestTime{Duration: d, Recorded: true}
}

// String returns the formatted time, or NoTimeMarker if absent
func (b BestTime) String() string {
	if !b.Recorded {
		return NoTimeMarker
	}
	return FormatDuration(b.Duration)
}

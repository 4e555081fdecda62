package utils

import (
	"fmt"
	"time"
)

// TimestampFormat is the console timestamp layout used across commands.
const TimestampFormat = "2006-01-02 15:04:05"

// FormatElapsed formats a duration as HH:MM:SS for elapsed-time reports.
func FormatElapsed(d time.Duration) string {
	seconds := int(d.Round(time.Second).Seconds())
	if seconds < 0 {
		seconds = 0
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60

	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds%60)
}

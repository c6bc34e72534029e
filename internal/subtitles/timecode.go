package subtitles

import "fmt"

// FormatTimestamp converts a millisecond offset to the ASS timestamp form
// H:MM:SS.CC. Hours are unbounded with no leading zero; minutes and seconds
// are zero-padded to two digits; centiseconds are floored.
func FormatTimestamp(ms int) string {
	if ms < 0 {
		ms = 0
	}

	totalSeconds := ms / 1000
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	centiseconds := (ms % 1000) / 10

	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, seconds, centiseconds)
}

// Package format provides human-readable formatting utilities.
package format

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// =============================================================================
// MEDIA DURATION FORMATTING
// =============================================================================

// maxDurationMillis caps the hour field at five digits so the longest
// rendering, "99999:59:59.999", stays within the 16-byte metadata field
// including its terminator.
const maxDurationMillis = (99999*3600+59*60+59)*1000 + 999

// MediaDuration formats a duration in milliseconds as "H:MM:SS", the form
// used in delivery metadata. When withMillis is set the sub-second fraction
// is appended as ".mmm". Non-positive durations (live or unbounded media)
// format as the empty string; durations past the five-digit hour range are
// clamped to it.
//
// Example: MediaDuration(5000, false) => "0:00:05"
func MediaDuration(millis int64, withMillis bool) string {
	if millis <= 0 {
		return ""
	}
	if millis > maxDurationMillis {
		millis = maxDurationMillis
	}

	secs := millis / 1000
	frac := millis % 1000

	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60

	if withMillis {
		return fmt.Sprintf("%d:%02d:%02d.%03d", h, m, s, frac)
	}
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// =============================================================================
// RESOLUTION FORMATTING
// =============================================================================

// Resolution formats a width/height pair as "WxH". Either dimension being
// zero or negative yields the empty string: metadata carries no resolution
// for audio-only media.
//
// Example: Resolution(1920, 1080) => "1920x1080"
func Resolution(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", width, height)
}

// =============================================================================
// FILE SIZE FORMATTING
// =============================================================================

// Bytes formats a byte count into human-readable form.
// Example: Bytes(1536) => "1.5 KB"
func Bytes(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}

	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	sizes := []string{"KB", "MB", "GB", "TB", "PB"}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), sizes[exp])
}

// =============================================================================
// NUMBER FORMATTING
// =============================================================================

var printer = message.NewPrinter(language.English)

// Number formats a number with thousand separators.
// Example: Number(15000000) => "15,000,000"
func Number(n int64) string {
	return printer.Sprintf("%d", n)
}

// Package bytesize provides human-readable byte size parsing and formatting
// using binary (1024) units.
package bytesize

import (
	"fmt"
	"strconv"
	"strings"
)

// Size represents a byte size as int64.
type Size int64

// Common size constants using binary (1024) base.
const (
	B  Size = 1
	KB Size = 1024
	MB Size = 1024 * KB
	GB Size = 1024 * MB
	TB Size = 1024 * GB
)

// unitMultipliers maps lowercase unit names to their byte multiplier.
var unitMultipliers = map[string]Size{
	"":    B,
	"b":   B,
	"k":   KB,
	"kb":  KB,
	"kib": KB,
	"m":   MB,
	"mb":  MB,
	"mib": MB,
	"g":   GB,
	"gb":  GB,
	"gib": GB,
	"t":   TB,
	"tb":  TB,
	"tib": TB,
}

// Parse parses a human-readable byte size string such as "10MB", "1.5 GB"
// or "5242880". A bare number is taken as bytes.
func Parse(s string) (Size, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("bytesize: empty string")
	}

	// Split the numeric prefix from the unit suffix.
	split := len(s)
	for i, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			split = i
			break
		}
	}

	numPart := strings.TrimSpace(s[:split])
	unitPart := strings.ToLower(strings.TrimSpace(s[split:]))
	if numPart == "" {
		return 0, fmt.Errorf("bytesize: invalid size %q", s)
	}

	mult, ok := unitMultipliers[unitPart]
	if !ok {
		return 0, fmt.Errorf("bytesize: unknown unit %q", unitPart)
	}

	if !strings.Contains(numPart, ".") {
		n, err := strconv.ParseInt(numPart, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bytesize: invalid number %q: %w", numPart, err)
		}
		return Size(n) * mult, nil
	}

	f, err := strconv.ParseFloat(numPart, 64)
	if err != nil {
		return 0, fmt.Errorf("bytesize: invalid number %q: %w", numPart, err)
	}
	return Size(f * float64(mult)), nil
}

// String returns a human-readable representation using the largest unit
// that divides the size cleanly enough to keep one decimal place.
func (s Size) String() string {
	switch {
	case s >= TB:
		return formatUnit(s, TB, "TB")
	case s >= GB:
		return formatUnit(s, GB, "GB")
	case s >= MB:
		return formatUnit(s, MB, "MB")
	case s >= KB:
		return formatUnit(s, KB, "KB")
	default:
		return fmt.Sprintf("%dB", int64(s))
	}
}

func formatUnit(s, unit Size, suffix string) string {
	if s%unit == 0 {
		return fmt.Sprintf("%d%s", int64(s/unit), suffix)
	}
	return fmt.Sprintf("%.1f%s", float64(s)/float64(unit), suffix)
}

// Int64 returns the size in bytes.
func (s Size) Int64() int64 {
	return int64(s)
}

/*
Package format provides convenience functions for formatting and parsing
durations and sizes.
*/
package format

import (
	"time"
)

var (
	TimeFormatSeconds string = "02 Jan 2006 15:04:05 MST"
)

// Bytes is a size in bytes which may be used as a flag.Value. It accepts the
// same syntax as ParseBytes.
type Bytes uint64

// Duration is similar to the time.Duration.String method from the standard
// library but is more readable and shows only 3 digits of precision when
// duration is less than 1 minute.
func Duration(duration time.Duration) string {
	return formatDuration(duration)
}

// FormatBytes returns a string with the number of bytes specified converted
// into a human-friendly format with a binary multiplier (i.e. GiB).
func FormatBytes(bytes uint64) string {
	return formatBytes(bytes)
}

// GetMultiplier will return the preferred base-2 multiplier (i.e. Ki, Mi, Gi)
// and right shift number for the specified value.
func GetMultiplier(value uint64) (uint, string) {
	return getMultiplier(value)
}

// ParseBytes parses a size such as "512MiB", "4GiB", "10G" or "1048576".
// Both "Gi"/"GiB" and "G"/"GB" are treated as binary multipliers, since sizes
// here describe disks and partitions.
func ParseBytes(value string) (uint64, error) {
	return parseBytes(value)
}

func (b *Bytes) Set(value string) error {
	return b.set(value)
}

func (b Bytes) String() string {
	return FormatBytes(uint64(b))
}

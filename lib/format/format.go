package format

import (
	"fmt"
	"time"
)

func formatDuration(duration time.Duration) string {
	if ns := duration.Nanoseconds(); ns < 1000 {
		return fmt.Sprintf("%dns", ns)
	} else if us := float64(duration) / float64(time.Microsecond); us < 1000 {
		return fmt.Sprintf("%.3gµs", us)
	} else if ms := float64(duration) / float64(time.Millisecond); ms < 1000 {
		return fmt.Sprintf("%.3gms", ms)
	} else if s := float64(duration) / float64(time.Second); s < 60 {
		return fmt.Sprintf("%.3gs", s)
	}
	duration -= duration % time.Second
	day := time.Hour * 24
	if duration < day {
		return duration.String()
	}
	days := duration / day
	duration %= day
	return fmt.Sprintf("%dd%s", days, duration)
}

func formatBytes(bytes uint64) string {
	shift, multiplier := getMultiplier(bytes)
	if shift > 0 && bytes&(1<<shift-1) != 0 {
		return fmt.Sprintf("%.1f %sB",
			float64(bytes)/float64(uint64(1)<<shift), multiplier)
	}
	return fmt.Sprintf("%d %sB", bytes>>shift, multiplier)
}

func getMultiplier(value uint64) (uint, string) {
	if value>>40 > 100 || (value>>40 >= 1 && value&(1<<40-1) == 0) {
		return 40, "Ti"
	} else if value>>30 > 0 {
		return 30, "Gi"
	} else if value>>20 > 0 {
		return 20, "Mi"
	} else if value>>10 > 0 {
		return 10, "Ki"
	}
	return 0, ""
}

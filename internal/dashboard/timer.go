package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// TimerElementID is the element the live timer text goes into
const TimerElementID = "live-timer"

// NotStarted is shown while the study start lies in the future
const NotStarted = "Not started"

// FormatElapsed renders the time since start as "[Nd ][Hh ]Mm". Hours are
// shown once a day has passed even when zero.
func FormatElapsed(start, now time.Time) string {
	diff := now.Sub(start)
	if diff < 0 {
		return NotStarted
	}

	days := int(diff / (24 * time.Hour))
	hours := int(diff%(24*time.Hour)) / int(time.Hour)
	minutes := int(diff%time.Hour) / int(time.Minute)

	var b strings.Builder
	if days > 0 {
		fmt.Fprintf(&b, "%dd ", days)
	}
	if hours > 0 || days > 0 {
		fmt.Fprintf(&b, "%dh ", hours)
	}
	fmt.Fprintf(&b, "%dm", minutes)
	return b.String()
}

// ParseStart parses the configured study start. An empty value means no
// start is known.
func ParseStart(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// TimerText is the live timer caption for a possibly unknown start
func TimerText(start time.Time, known bool, now time.Time) string {
	if !known {
		return NotStarted
	}
	return FormatElapsed(start, now)
}

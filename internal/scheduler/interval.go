package scheduler

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Interval is a half-open [Start, End) range of minutes within one day.
type Interval struct {
	Start int
	End   int
}

// Window is the working-hours range of a master on one date, in minutes.
type Window struct {
	StartMin int
	EndMin   int
}

// ToMinutes converts "HH:MM" to minutes since midnight. Input is trusted:
// a malformed value yields an unspecified number, never a panic.
func ToMinutes(hhmm string) int {
	h, m, _ := strings.Cut(hhmm, ":")
	hours, _ := strconv.Atoi(h)
	mins, _ := strconv.Atoi(m)
	return hours*60 + mins
}

// FormatMinutes converts minutes since midnight to zero-padded "HH:MM".
func FormatMinutes(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// DateTime joins a YYYY-MM-DD date and an HH:MM time into YYYY-MM-DDTHH:MM:00.
func DateTime(date, hhmm string) string {
	return date + "T" + hhmm + ":00"
}

// MinuteOfDay returns the time-of-day part of t in minutes.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// Package validation checks user-supplied habit names and clock times.
package validation

import (
	"regexp"
	"strings"

	"github.com/akozlov/habitbot/internal/constants"
)

var clockRe = regexp.MustCompile(`^(?:[01]\d|2[0-3]):[0-5]\d$`)

// HabitName trims the given name and reports whether the result is long
// enough to be accepted. The trimmed form is returned either way.
func HabitName(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	return trimmed, len([]rune(trimmed)) >= constants.MinHabitNameLen
}

// ClockTime reports whether s is a valid zero-padded HH:MM time of day,
// hours 00-23 and minutes 00-59. "9:30" and "24:00" are rejected.
func ClockTime(s string) bool {
	return clockRe.MatchString(s)
}

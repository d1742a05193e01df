// Package streak computes consecutive-day completion streaks.
package streak

import (
	"time"

	"github.com/akozlov/habitbot/internal/constants"
)

// Compute returns the streak a habit holds after being completed on today,
// given its current streak and the date it was last completed (YYYY-MM-DD,
// empty if never).
//
//   - lastDone == today: the completion is a same-day repeat; the streak is
//     returned unchanged. Callers must check this case themselves before
//     incrementing the completion count.
//   - lastDone == yesterday: the streak continues, current + 1.
//   - anything else (a gap of two or more days, never completed, an
//     unparseable date, or a last-done date in the future from clock skew):
//     the streak restarts at 1.
func Compute(current int, lastDone string, today time.Time) int {
	if lastDone == "" {
		return 1
	}

	last, err := time.ParseInLocation(constants.DateFormat, lastDone, today.Location())
	if err != nil {
		return 1
	}

	day := today.Format(constants.DateFormat)
	switch {
	case lastDone == day:
		return current
	case last.AddDate(0, 0, 1).Format(constants.DateFormat) == day:
		return current + 1
	default:
		return 1
	}
}

// DoneToday reports whether a habit last completed on lastDone was already
// completed on the calendar day of today.
func DoneToday(lastDone string, today time.Time) bool {
	return lastDone != "" && lastDone == today.Format(constants.DateFormat)
}

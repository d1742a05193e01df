package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/akozlov/habitbot/internal/constants"
)

// Weekday numbers days Monday=0 through Sunday=6, the numbering stored in
// reminder day-sets. It differs from time.Weekday, which starts at Sunday;
// use WeekdayOf to convert from the clock.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// WeekdayOf returns the Weekday for the given instant.
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// DaySet describes the weekdays on which a reminder is active: either every
// day (All) or an explicit set of weekdays.
type DaySet struct {
	All  bool
	Days []Weekday
}

// AllDays returns the day-set covering every weekday.
func AllDays() DaySet {
	return DaySet{All: true}
}

// Weekdays returns the Monday-to-Friday day-set.
func Weekdays() DaySet {
	return DaySet{Days: []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}}
}

// Weekend returns the Saturday-and-Sunday day-set.
func Weekend() DaySet {
	return DaySet{Days: []Weekday{Saturday, Sunday}}
}

// DueOn reports whether a reminder with this day-set fires on the given weekday.
func (d DaySet) DueOn(w Weekday) bool {
	if d.All {
		return true
	}
	for _, day := range d.Days {
		if day == w {
			return true
		}
	}
	return false
}

// String renders the day-set in its stored form: "all" or a comma-separated
// list of weekday numbers such as "0,1,2,3,4".
func (d DaySet) String() string {
	if d.All {
		return constants.DaySetAll
	}
	parts := make([]string, 0, len(d.Days))
	for _, day := range d.Days {
		parts = append(parts, strconv.Itoa(int(day)))
	}
	return strings.Join(parts, ",")
}

// ParseDaySet parses the stored day-set form produced by String.
func ParseDaySet(s string) (DaySet, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == constants.DaySetAll {
		return AllDays(), nil
	}

	var days []Weekday
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			return DaySet{}, fmt.Errorf("invalid day-set %q", s)
		}
		days = append(days, Weekday(n))
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return DaySet{Days: days}, nil
}

// ReminderSetting holds a user's reminder configuration. There is at most one
// setting per user; it is disabled rather than deleted.
type ReminderSetting struct {
	UserID  int64  `json:"user_id"`
	Enabled bool   `json:"enabled"`
	Time    string `json:"time"` // HH:MM
	Days    DaySet `json:"days"`
}

// DefaultReminderSetting returns the setting assumed for a user who has never
// configured reminders.
func DefaultReminderSetting(userID int64) ReminderSetting {
	return ReminderSetting{
		UserID:  userID,
		Enabled: false,
		Time:    constants.DefaultReminderTime,
		Days:    AllDays(),
	}
}

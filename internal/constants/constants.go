package constants

const (
	AppName            = "habitbot"
	DefaultKeyringUser = "database-connection"
	Version            = "v0.2.0"

	// DateFormat is the standard calendar-date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time-of-day format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// DefaultReminderTime is the reminder time assumed until a user configures one
	DefaultReminderTime = "20:00"

	// DaySetAll is the stored sentinel for "remind every day"
	DaySetAll = "all"

	// MinHabitNameLen is the minimum habit name length after trimming
	MinHabitNameLen = 2

	// WeekStatsDays is the size of the rolling window used by weekly stats
	WeekStatsDays = 7
)

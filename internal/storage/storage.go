// Package storage defines the persistence contract for habits and reminder
// settings, with interchangeable PostgreSQL and SQLite backends.
package storage

import (
	"errors"
	"strings"

	"github.com/akozlov/habitbot/internal/models"
)

// ErrNotFound is returned when a requested habit or reminder setting does not
// exist. A habit vanishing between listing and selection is an expected
// condition, not a fault; callers check for it with errors.Is.
var ErrNotFound = errors.New("not found")

// Provider is the full persistence contract.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Habits
	ListHabits(userID int64) ([]models.Habit, error)
	CreateHabit(userID int64, name string) (models.Habit, error)
	GetHabit(id string) (models.Habit, error)
	// CompleteHabit records a completion: the new count, the recomputed
	// streak, and the completion date (YYYY-MM-DD).
	CompleteHabit(id string, count, streak int, date string) error
	DeleteHabit(id string) error

	// Aggregates
	GetStats(userID int64) (models.Stats, error)
	GetWeekStats(userID int64, today string) (models.WeekStats, error)

	// Reminder settings (one row per user, upsert semantics)
	GetReminder(userID int64) (models.ReminderSetting, error)
	UpsertReminder(setting models.ReminderSetting) error
	// SetReminderEnabled toggles the flag, leaving time and days untouched.
	SetReminderEnabled(userID int64, enabled bool) error
	ListEnabledReminders() ([]models.ReminderSetting, error)
}

// IsPostgres reports whether the given location is a PostgreSQL connection
// string rather than a SQLite file path.
func IsPostgres(location string) bool {
	return strings.HasPrefix(location, "postgres://") ||
		strings.HasPrefix(location, "postgresql://") ||
		strings.Contains(location, "host=")
}

package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/akozlov/habitbot/internal/models"
	"github.com/akozlov/habitbot/internal/storage"
)

func (s *Store) GetReminder(userID int64) (models.ReminderSetting, error) {
	row := s.db.QueryRow(`
		SELECT user_id, reminders_enabled, reminder_time, reminder_days
		FROM user_settings WHERE user_id = $1`, userID)

	setting, err := scanReminder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ReminderSetting{}, storage.ErrNotFound
		}
		return models.ReminderSetting{}, err
	}
	return setting, nil
}

func (s *Store) UpsertReminder(setting models.ReminderSetting) error {
	_, err := s.db.Exec(`
		INSERT INTO user_settings (user_id, reminders_enabled, reminder_time, reminder_days)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			reminders_enabled = EXCLUDED.reminders_enabled,
			reminder_time = EXCLUDED.reminder_time,
			reminder_days = EXCLUDED.reminder_days`,
		setting.UserID, setting.Enabled, setting.Time, setting.Days.String())
	if err != nil {
		return fmt.Errorf("failed to upsert reminder setting: %w", err)
	}
	return nil
}

func (s *Store) SetReminderEnabled(userID int64, enabled bool) error {
	_, err := s.db.Exec(`
		INSERT INTO user_settings (user_id, reminders_enabled)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET reminders_enabled = EXCLUDED.reminders_enabled`,
		userID, enabled)
	if err != nil {
		return fmt.Errorf("failed to set reminder flag: %w", err)
	}
	return nil
}

func (s *Store) ListEnabledReminders() ([]models.ReminderSetting, error) {
	rows, err := s.db.Query(`
		SELECT user_id, reminders_enabled, reminder_time, reminder_days
		FROM user_settings WHERE reminders_enabled = TRUE`)
	if err != nil {
		return nil, fmt.Errorf("failed to list enabled reminders: %w", err)
	}
	defer rows.Close()

	var settings []models.ReminderSetting
	for rows.Next() {
		setting, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		settings = append(settings, setting)
	}
	return settings, rows.Err()
}

func scanReminder(row rowScanner) (models.ReminderSetting, error) {
	var setting models.ReminderSetting
	var days string

	if err := row.Scan(&setting.UserID, &setting.Enabled, &setting.Time, &days); err != nil {
		return models.ReminderSetting{}, err
	}

	parsed, err := models.ParseDaySet(days)
	if err != nil {
		return models.ReminderSetting{}, fmt.Errorf("corrupt reminder_days for user %d: %w", setting.UserID, err)
	}
	setting.Days = parsed
	return setting, nil
}

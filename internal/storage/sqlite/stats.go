package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/akozlov/habitbot/internal/constants"
	"github.com/akozlov/habitbot/internal/models"
)

func (s *Store) GetStats(userID int64) (models.Stats, error) {
	var stats models.Stats

	err := s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(count), 0), COALESCE(AVG(streak), 0)
		FROM habits WHERE user_id = ?`, userID).
		Scan(&stats.Habits, &stats.TotalDone, &stats.AvgStreak)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to compute stats: %w", err)
	}

	var best models.BestStreak
	err = s.db.QueryRow(`
		SELECT name, streak FROM habits
		WHERE user_id = ? ORDER BY streak DESC LIMIT 1`, userID).
		Scan(&best.Name, &best.Streak)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// no habits at all
	case err != nil:
		return models.Stats{}, fmt.Errorf("failed to find best streak: %w", err)
	case best.Streak > 0:
		stats.Best = &best
	}

	rows, err := s.db.Query(`
		SELECT name, count FROM habits
		WHERE user_id = ? ORDER BY count DESC LIMIT 3`, userID)
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to rank habits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hc models.HabitCount
		if err := rows.Scan(&hc.Name, &hc.Count); err != nil {
			return models.Stats{}, err
		}
		stats.TopByCount = append(stats.TopByCount, hc)
	}
	return stats, rows.Err()
}

func (s *Store) GetWeekStats(userID int64, today string) (models.WeekStats, error) {
	cutoff, err := weekCutoff(today)
	if err != nil {
		return models.WeekStats{}, err
	}

	var stats models.WeekStats
	err = s.db.QueryRow(`
		SELECT COUNT(*) FROM habits
		WHERE user_id = ? AND last_done IS NOT NULL AND last_done >= ?`,
		userID, cutoff).Scan(&stats.Done)
	if err != nil {
		return models.WeekStats{}, fmt.Errorf("failed to compute week stats: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT name, count FROM habits
		WHERE user_id = ? AND last_done IS NOT NULL AND last_done >= ?
		ORDER BY count DESC LIMIT 3`, userID, cutoff)
	if err != nil {
		return models.WeekStats{}, fmt.Errorf("failed to rank week habits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hc models.HabitCount
		if err := rows.Scan(&hc.Name, &hc.Count); err != nil {
			return models.WeekStats{}, err
		}
		stats.Top = append(stats.Top, hc)
	}
	return stats, rows.Err()
}

// weekCutoff returns the date seven days before today, in the stored
// YYYY-MM-DD form. Lexicographic comparison on that form is date order.
func weekCutoff(today string) (string, error) {
	t, err := time.Parse(constants.DateFormat, today)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", today, err)
	}
	return t.AddDate(0, 0, -constants.WeekStatsDays).Format(constants.DateFormat), nil
}

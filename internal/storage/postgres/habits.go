package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/akozlov/habitbot/internal/models"
	"github.com/akozlov/habitbot/internal/storage"
)

func (s *Store) ListHabits(userID int64) ([]models.Habit, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, name, count, streak, last_done
		FROM habits WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) CreateHabit(userID int64, name string) (models.Habit, error) {
	h := models.Habit{
		ID:     uuid.New().String(),
		UserID: userID,
		Name:   name,
	}
	_, err := s.db.Exec(`
		INSERT INTO habits (id, user_id, name, count, streak)
		VALUES ($1, $2, $3, 0, 0)`, h.ID, h.UserID, h.Name)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to create habit: %w", err)
	}
	return h, nil
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	row := s.db.QueryRow(`
		SELECT id, user_id, name, count, streak, last_done
		FROM habits WHERE id = $1`, id)

	h, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Habit{}, storage.ErrNotFound
		}
		return models.Habit{}, err
	}
	return h, nil
}

func (s *Store) CompleteHabit(id string, count, streak int, date string) error {
	res, err := s.db.Exec(`
		UPDATE habits SET count = $1, streak = $2, last_done = $3
		WHERE id = $4`, count, streak, date, id)
	if err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteHabit(id string) error {
	res, err := s.db.Exec("DELETE FROM habits WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var lastDone sql.NullString

	if err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Count, &h.Streak, &lastDone); err != nil {
		return models.Habit{}, err
	}
	if lastDone.Valid {
		h.LastDone = lastDone.String
	}
	return h, nil
}

// Package reminder evaluates which users are due a reminder and sends them
// their habit list, once per minute.
package reminder

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/akozlov/habitbot/internal/constants"
	"github.com/akozlov/habitbot/internal/logger"
	"github.com/akozlov/habitbot/internal/models"
	"github.com/akozlov/habitbot/internal/storage"
)

// Sender delivers one reminder message to a user.
type Sender interface {
	Send(userID int64, text string) error
}

// Scheduler ticks on every minute boundary and notifies users whose
// configured reminder time and day-set match the tick. A user fires only on
// the exact minute they configured, not on every minute of a matching day.
type Scheduler struct {
	store storage.Provider
	send  Sender
	loc   *time.Location
	cron  *cron.Cron
}

func New(store storage.Provider, send Sender, loc *time.Location) *Scheduler {
	return &Scheduler{
		store: store,
		send:  send,
		loc:   loc,
		cron:  cron.New(cron.WithLocation(loc)),
	}
}

// Start begins the minute schedule in the background.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("* * * * *", func() {
		s.Tick(time.Now().In(s.loc))
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminder tick: %w", err)
	}
	s.cron.Start()
	logger.Info("Reminder scheduler started", "timezone", s.loc.String())
	return nil
}

// Stop halts the schedule and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Tick runs one evaluation pass. The weekday and clock are captured once so
// every user in the pass sees the same instant. A failure for one user is
// logged and skipped; only a failure to list settings aborts the pass.
func (s *Scheduler) Tick(now time.Time) {
	weekday := models.WeekdayOf(now)
	clock := now.Format(constants.TimeFormat)

	settings, err := s.store.ListEnabledReminders()
	if err != nil {
		logger.Error("Reminder tick aborted: failed to list settings", "error", err)
		return
	}

	for _, setting := range settings {
		if !setting.Days.DueOn(weekday) || setting.Time != clock {
			continue
		}

		habits, err := s.store.ListHabits(setting.UserID)
		if err != nil {
			logger.Warn("Skipping reminder: failed to load habits", "user", setting.UserID, "error", err)
			continue
		}
		if len(habits) == 0 {
			continue
		}

		if err := s.send.Send(setting.UserID, reminderText(habits)); err != nil {
			logger.Warn("Reminder delivery failed", "user", setting.UserID, "error", err)
			continue
		}
		logger.Debug("Reminder sent", "user", setting.UserID, "habits", len(habits))
	}
}

func reminderText(habits []models.Habit) string {
	var b strings.Builder
	b.WriteString("⏰ Time for your habits!\n\n")
	for _, h := range habits {
		fmt.Fprintf(&b, "• %s\n", h.Name)
	}
	return b.String()
}

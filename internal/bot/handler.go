package bot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akozlov/habitbot/internal/constants"
	"github.com/akozlov/habitbot/internal/logger"
	"github.com/akozlov/habitbot/internal/models"
	"github.com/akozlov/habitbot/internal/storage"
	"github.com/akozlov/habitbot/internal/streak"
	"github.com/akozlov/habitbot/internal/validation"
)

// Choice data prefixes and values round-tripped through keyboards.
const (
	choiceDone          = "done:"
	choiceDelete        = "delete:"
	choiceConfirmDelete = "confirm_delete:"
	choiceCancelDelete  = "cancel_delete"
	choiceReminderOn    = "reminder_on"
	choiceReminderOff   = "reminder_off"
)

// Handler drives the per-user conversation state machine. Validation
// problems are answered with a re-prompt and never escape as errors; a habit
// that vanished mid-flow resets the user to idle; only store and delivery
// failures are returned to the caller, with the conversation state untouched
// so the user may retry.
type Handler struct {
	store    storage.Provider
	send     Sender
	loc      *time.Location
	sessions *sessions

	nowFunc func() time.Time
}

// New creates a Handler. All dates and weekdays are taken in loc.
func New(store storage.Provider, send Sender, loc *time.Location) *Handler {
	h := &Handler{
		store:    store,
		send:     send,
		loc:      loc,
		sessions: newSessions(),
	}
	h.nowFunc = func() time.Time { return time.Now().In(loc) }
	return h
}

func (h *Handler) now() time.Time {
	return h.nowFunc().In(h.loc)
}

// Handle processes one inbound event. Events for the same user are
// serialized on the user's session lock.
func (h *Handler) Handle(ev Event) error {
	sess := h.sessions.get(ev.UserID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	switch ev.Kind {
	case EventCommand:
		return h.handleCommand(ev, sess)
	case EventText:
		return h.handleText(ev, sess)
	case EventChoice:
		return h.handleChoice(ev, sess)
	default:
		return fmt.Errorf("unknown event kind %d", ev.Kind)
	}
}

// handleCommand starts flows. A new flow silently discards whatever flow was
// in progress for the user.
func (h *Handler) handleCommand(ev Event, sess *session) error {
	switch ev.Command {
	case "start":
		sess.st = idle()
		return h.send.Send(ev.UserID, msgStart)

	case "help":
		sess.st = idle()
		return h.send.Send(ev.UserID, msgHelp)

	case "cancel":
		if sess.st.kind == stateIdle {
			return h.send.Send(ev.UserID, msgNothingToCancel)
		}
		sess.st = idle()
		return h.send.Send(ev.UserID, msgCancelled)

	case "add":
		sess.st = state{kind: stateAwaitingHabitName}
		return h.send.Send(ev.UserID, msgPromptHabitName)

	case "list":
		habits, err := h.store.ListHabits(ev.UserID)
		if err != nil {
			return err
		}
		sess.st = idle()
		if len(habits) == 0 {
			return h.send.Send(ev.UserID, msgNoHabits)
		}
		return h.send.Send(ev.UserID, fmtHabitList(habits))

	case "done":
		return h.startHabitChoice(ev.UserID, sess, modeDone)

	case "delete":
		return h.startHabitChoice(ev.UserID, sess, modeDelete)

	case "stats":
		stats, err := h.store.GetStats(ev.UserID)
		if err != nil {
			return err
		}
		sess.st = idle()
		if stats.Habits == 0 {
			return h.send.Send(ev.UserID, msgStatsEmpty)
		}
		return h.send.Send(ev.UserID, fmtStats(stats))

	case "week_stats":
		today := h.now().Format(constants.DateFormat)
		stats, err := h.store.GetWeekStats(ev.UserID, today)
		if err != nil {
			return err
		}
		sess.st = idle()
		if stats.Done == 0 {
			return h.send.Send(ev.UserID, msgWeekStatsEmpty)
		}
		return h.send.Send(ev.UserID, fmtWeekStats(stats))

	case "reminder":
		setting, err := h.store.GetReminder(ev.UserID)
		if errors.Is(err, storage.ErrNotFound) {
			setting = models.DefaultReminderSetting(ev.UserID)
		} else if err != nil {
			return err
		}
		sess.st = idle()
		return h.send.SendChoices(ev.UserID, fmtReminderStatus(setting), []Choice{
			{Label: "✅ On", Data: choiceReminderOn},
			{Label: "❌ Off", Data: choiceReminderOff},
		})

	default:
		logger.Debug("Ignoring unknown command", "user", ev.UserID, "command", ev.Command)
		return nil
	}
}

func (h *Handler) startHabitChoice(userID int64, sess *session, mode choiceMode) error {
	habits, err := h.store.ListHabits(userID)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		sess.st = idle()
		return h.send.Send(userID, msgNoHabits)
	}

	prefix, prompt := choiceDone, msgChooseDone
	if mode == modeDelete {
		prefix, prompt = choiceDelete, msgChooseDelete
	}

	choices := make([]Choice, 0, len(habits))
	for _, habit := range habits {
		choices = append(choices, Choice{Label: habit.Name, Data: prefix + habit.ID})
	}

	sess.st = state{kind: stateAwaitingHabitChoice, mode: mode}
	return h.send.SendChoices(userID, prompt, choices)
}

// handleText routes free-text replies by conversation state. Text arriving
// in a state that expects a button press re-issues the state's prompt.
func (h *Handler) handleText(ev Event, sess *session) error {
	switch sess.st.kind {
	case stateAwaitingHabitName:
		name, ok := validation.HabitName(ev.Text)
		if !ok {
			return h.send.Send(ev.UserID, msgHabitNameTooShort)
		}
		if _, err := h.store.CreateHabit(ev.UserID, name); err != nil {
			return err
		}
		logger.Info("Habit added", "user", ev.UserID, "name", name)
		sess.st = idle()
		return h.send.Send(ev.UserID, fmtHabitAdded(name))

	case stateAwaitingReminderTime:
		clock := strings.TrimSpace(ev.Text)
		if !validation.ClockTime(clock) {
			return h.send.Send(ev.UserID, msgBadReminderTime)
		}
		sess.st = state{kind: stateAwaitingReminderDays, pendingTime: clock}
		return h.send.Send(ev.UserID, msgPromptReminderDays)

	case stateAwaitingReminderDays:
		var days models.DaySet
		switch strings.TrimSpace(ev.Text) {
		case "1":
			days = models.AllDays()
		case "2":
			days = models.Weekdays()
		case "3":
			days = models.Weekend()
		default:
			return h.send.Send(ev.UserID, msgBadReminderDays)
		}

		setting := models.ReminderSetting{
			UserID:  ev.UserID,
			Enabled: true,
			Time:    sess.st.pendingTime,
			Days:    days,
		}
		if err := h.store.UpsertReminder(setting); err != nil {
			return err
		}
		logger.Info("Reminders enabled", "user", ev.UserID, "time", setting.Time, "days", days.String())
		sess.st = idle()
		return h.send.Send(ev.UserID, fmtReminderEnabled(setting.Time, days))

	case stateAwaitingHabitChoice:
		return h.send.Send(ev.UserID, msgPressHabitButton)

	case stateAwaitingDeleteConfirm:
		return h.send.Send(ev.UserID, msgPressConfirm)

	default:
		// Free text outside any flow carries no meaning.
		return nil
	}
}

// handleChoice routes button presses. The reminder toggle buttons start
// their own flow from anywhere; everything else is only valid in the state
// that offered it.
func (h *Handler) handleChoice(ev Event, sess *session) error {
	switch {
	case ev.Choice == choiceReminderOn:
		sess.st = state{kind: stateAwaitingReminderTime}
		return h.send.Send(ev.UserID, msgPromptReminderTime)

	case ev.Choice == choiceReminderOff:
		if err := h.store.SetReminderEnabled(ev.UserID, false); err != nil {
			return err
		}
		sess.st = idle()
		return h.send.Send(ev.UserID, msgRemindersOff)

	case strings.HasPrefix(ev.Choice, choiceDone):
		if sess.st.kind != stateAwaitingHabitChoice || sess.st.mode != modeDone {
			return h.staleChoice(ev.UserID, sess)
		}
		return h.completeHabit(ev.UserID, strings.TrimPrefix(ev.Choice, choiceDone), sess)

	case strings.HasPrefix(ev.Choice, choiceDelete):
		if sess.st.kind != stateAwaitingHabitChoice || sess.st.mode != modeDelete {
			return h.staleChoice(ev.UserID, sess)
		}
		return h.confirmDelete(ev.UserID, strings.TrimPrefix(ev.Choice, choiceDelete), sess)

	case strings.HasPrefix(ev.Choice, choiceConfirmDelete):
		// Only the confirmation for the currently pending habit counts; a
		// press on an older confirm keyboard names a different id.
		if sess.st.kind != stateAwaitingDeleteConfirm ||
			strings.TrimPrefix(ev.Choice, choiceConfirmDelete) != sess.st.pendingHabit {
			return h.staleChoice(ev.UserID, sess)
		}
		return h.deleteHabit(ev.UserID, sess)

	case ev.Choice == choiceCancelDelete:
		if sess.st.kind != stateAwaitingDeleteConfirm {
			return h.staleChoice(ev.UserID, sess)
		}
		sess.st = idle()
		return h.send.Send(ev.UserID, msgDeleteCancelled)

	default:
		logger.Debug("Ignoring unknown choice", "user", ev.UserID, "choice", ev.Choice)
		return nil
	}
}

// staleChoice answers a button press that no longer matches the
// conversation, re-issuing the current prompt where there is one.
func (h *Handler) staleChoice(userID int64, sess *session) error {
	switch sess.st.kind {
	case stateAwaitingHabitChoice:
		return h.send.Send(userID, msgPressHabitButton)
	case stateAwaitingDeleteConfirm:
		return h.send.Send(userID, msgPressConfirm)
	default:
		return nil
	}
}

func (h *Handler) completeHabit(userID int64, habitID string, sess *session) error {
	habit, err := h.store.GetHabit(habitID)
	if errors.Is(err, storage.ErrNotFound) {
		sess.st = idle()
		return h.send.Send(userID, msgHabitGone)
	}
	if err != nil {
		return err
	}

	now := h.now()
	if streak.DoneToday(habit.LastDone, now) {
		// Same-day repeat: neither count nor streak moves.
		sess.st = idle()
		return h.send.Send(userID, fmtAlreadyDone(habit.Name, habit.Streak))
	}

	newStreak := streak.Compute(habit.Streak, habit.LastDone, now)
	today := now.Format(constants.DateFormat)
	err = h.store.CompleteHabit(habit.ID, habit.Count+1, newStreak, today)
	if errors.Is(err, storage.ErrNotFound) {
		sess.st = idle()
		return h.send.Send(userID, msgHabitGone)
	}
	if err != nil {
		return err
	}

	logger.Info("Habit completed", "user", userID, "habit", habit.ID, "streak", newStreak)
	sess.st = idle()
	return h.send.Send(userID, fmtHabitDone(habit.Name, newStreak, habit.Count+1))
}

func (h *Handler) confirmDelete(userID int64, habitID string, sess *session) error {
	habit, err := h.store.GetHabit(habitID)
	if errors.Is(err, storage.ErrNotFound) {
		sess.st = idle()
		return h.send.Send(userID, msgHabitGone)
	}
	if err != nil {
		return err
	}

	sess.st = state{kind: stateAwaitingDeleteConfirm, pendingHabit: habit.ID, pendingName: habit.Name}
	return h.send.SendChoices(userID, fmtConfirmDelete(habit.Name), []Choice{
		{Label: "✅ Yes", Data: choiceConfirmDelete + habit.ID},
		{Label: "❌ No", Data: choiceCancelDelete},
	})
}

func (h *Handler) deleteHabit(userID int64, sess *session) error {
	id, name := sess.st.pendingHabit, sess.st.pendingName

	err := h.store.DeleteHabit(id)
	if errors.Is(err, storage.ErrNotFound) {
		sess.st = idle()
		return h.send.Send(userID, msgHabitGone)
	}
	if err != nil {
		return err
	}

	logger.Info("Habit deleted", "user", userID, "habit", id)
	sess.st = idle()
	return h.send.Send(userID, fmtHabitDeleted(name))
}

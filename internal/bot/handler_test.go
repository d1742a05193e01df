package bot

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/akozlov/habitbot/internal/models"
	"github.com/akozlov/habitbot/internal/storage"
	"github.com/akozlov/habitbot/internal/storage/sqlite"
)

type sentMessage struct {
	userID  int64
	text    string
	choices []Choice
}

// fakeSender records outbound messages instead of delivering them.
type fakeSender struct {
	sent []sentMessage
}

func (f *fakeSender) Send(userID int64, text string) error {
	f.sent = append(f.sent, sentMessage{userID: userID, text: text})
	return nil
}

func (f *fakeSender) SendChoices(userID int64, text string, choices []Choice) error {
	f.sent = append(f.sent, sentMessage{userID: userID, text: text, choices: choices})
	return nil
}

func (f *fakeSender) last(t *testing.T) sentMessage {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatal("no messages sent")
	}
	return f.sent[len(f.sent)-1]
}

func setupTestHandler(t *testing.T) (*Handler, *fakeSender, storage.Provider) {
	t.Helper()

	store := sqlite.New(filepath.Join(t.TempDir(), "habitbot.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	sender := &fakeSender{}
	h := New(store, sender, time.UTC)
	h.nowFunc = func() time.Time {
		return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	}
	return h, sender, store
}

func command(userID int64, cmd string) Event {
	return Event{UserID: userID, Kind: EventCommand, Command: cmd}
}

func text(userID int64, s string) Event {
	return Event{UserID: userID, Kind: EventText, Text: s}
}

func choice(userID int64, data string) Event {
	return Event{UserID: userID, Kind: EventChoice, Choice: data}
}

func mustHandle(t *testing.T, h *Handler, ev Event) {
	t.Helper()
	if err := h.Handle(ev); err != nil {
		t.Fatalf("Handle(%+v) failed: %v", ev, err)
	}
}

func TestAddHabitFlow(t *testing.T) {
	h, sender, store := setupTestHandler(t)
	const user = int64(1)

	mustHandle(t, h, command(user, "add"))
	if got := sender.last(t).text; got != msgPromptHabitName {
		t.Errorf("got prompt %q", got)
	}

	// Too-short name re-prompts and keeps the flow open.
	mustHandle(t, h, text(user, "x"))
	if got := sender.last(t).text; got != msgHabitNameTooShort {
		t.Errorf("got %q, want short-name message", got)
	}

	mustHandle(t, h, text(user, "  Morning run  "))
	if got := sender.last(t).text; !strings.Contains(got, "Morning run") {
		t.Errorf("confirmation %q does not name the habit", got)
	}

	habits, err := store.ListHabits(user)
	if err != nil {
		t.Fatal(err)
	}
	if len(habits) != 1 || habits[0].Name != "Morning run" {
		t.Fatalf("unexpected habits %+v", habits)
	}

	// The flow is closed: further text is ignored.
	before := len(sender.sent)
	mustHandle(t, h, text(user, "another name"))
	if len(sender.sent) != before {
		t.Error("idle text produced a reply")
	}
}

func TestDoneWithNoHabits(t *testing.T) {
	h, sender, _ := setupTestHandler(t)

	mustHandle(t, h, command(1, "done"))
	if got := sender.last(t).text; got != msgNoHabits {
		t.Errorf("got %q, want no-habits message", got)
	}

	// The user stays idle, so a stray button press is silently dropped.
	before := len(sender.sent)
	mustHandle(t, h, choice(1, choiceDone+"some-id"))
	if len(sender.sent) != before {
		t.Error("stale choice produced a reply while idle")
	}
}

func TestDoneFlowAdvancesStreak(t *testing.T) {
	h, sender, store := setupTestHandler(t)
	const user = int64(1)

	habit, err := store.CreateHabit(user, "Read")
	if err != nil {
		t.Fatal(err)
	}
	// Completed yesterday with a running streak of 3.
	if err := store.CompleteHabit(habit.ID, 7, 3, "2025-03-09"); err != nil {
		t.Fatal(err)
	}

	mustHandle(t, h, command(user, "done"))
	msg := sender.last(t)
	if msg.text != msgChooseDone || len(msg.choices) != 1 {
		t.Fatalf("unexpected habit menu %+v", msg)
	}

	mustHandle(t, h, choice(user, msg.choices[0].Data))
	if got := sender.last(t).text; !strings.Contains(got, "Streak: 4") {
		t.Errorf("got %q, want streak 4", got)
	}

	got, err := store.GetHabit(habit.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Count != 8 || got.Streak != 4 || got.LastDone != "2025-03-10" {
		t.Errorf("completion not persisted, got %+v", got)
	}
}

func TestDoneTwiceSameDay(t *testing.T) {
	h, sender, store := setupTestHandler(t)
	const user = int64(1)

	habit, err := store.CreateHabit(user, "Read")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.CompleteHabit(habit.ID, 5, 2, "2025-03-10"); err != nil {
		t.Fatal(err)
	}

	mustHandle(t, h, command(user, "done"))
	menu := sender.last(t)
	mustHandle(t, h, choice(user, menu.choices[0].Data))
	if got := sender.last(t).text; !strings.Contains(got, "already") {
		t.Errorf("got %q, want already-done message", got)
	}

	got, err := store.GetHabit(habit.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Count != 5 || got.Streak != 2 {
		t.Errorf("same-day repeat changed counters: %+v", got)
	}
}

func TestDoneAfterGapResetsStreak(t *testing.T) {
	h, sender, store := setupTestHandler(t)
	const user = int64(1)

	habit, err := store.CreateHabit(user, "Read")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.CompleteHabit(habit.ID, 9, 6, "2025-03-05"); err != nil {
		t.Fatal(err)
	}

	mustHandle(t, h, command(user, "done"))
	menu := sender.last(t)
	mustHandle(t, h, choice(user, menu.choices[0].Data))
	if got := sender.last(t).text; !strings.Contains(got, "Streak: 1") {
		t.Errorf("got %q, want streak reset to 1", got)
	}
}

func TestDeleteFlow(t *testing.T) {
	h, sender, store := setupTestHandler(t)
	const user = int64(1)

	habit, err := store.CreateHabit(user, "Read")
	if err != nil {
		t.Fatal(err)
	}

	mustHandle(t, h, command(user, "delete"))
	menu := sender.last(t)
	if menu.text != msgChooseDelete {
		t.Fatalf("got %q, want delete menu", menu.text)
	}

	mustHandle(t, h, choice(user, menu.choices[0].Data))
	confirm := sender.last(t)
	if !strings.Contains(confirm.text, "Read") || len(confirm.choices) != 2 {
		t.Fatalf("unexpected confirmation %+v", confirm)
	}

	// Free text during confirmation re-prompts without deleting.
	mustHandle(t, h, text(user, "yes please"))
	if got := sender.last(t).text; got != msgPressConfirm {
		t.Errorf("got %q, want confirm re-prompt", got)
	}

	mustHandle(t, h, choice(user, choiceConfirmDelete+habit.ID))
	if got := sender.last(t).text; !strings.Contains(got, "deleted") {
		t.Errorf("got %q, want deletion notice", got)
	}
	if _, err := store.GetHabit(habit.ID); err == nil {
		t.Error("habit still present after confirmed delete")
	}
}

func TestDeleteCancelled(t *testing.T) {
	h, sender, store := setupTestHandler(t)
	const user = int64(1)

	habit, err := store.CreateHabit(user, "Read")
	if err != nil {
		t.Fatal(err)
	}

	mustHandle(t, h, command(user, "delete"))
	menu := sender.last(t)
	mustHandle(t, h, choice(user, menu.choices[0].Data))
	mustHandle(t, h, choice(user, choiceCancelDelete))

	if got := sender.last(t).text; got != msgDeleteCancelled {
		t.Errorf("got %q, want cancellation notice", got)
	}
	if _, err := store.GetHabit(habit.ID); err != nil {
		t.Errorf("habit lost despite cancelled delete: %v", err)
	}
}

func TestStaleDeleteConfirmation(t *testing.T) {
	h, sender, store := setupTestHandler(t)
	const user = int64(1)

	first, err := store.CreateHabit(user, "Read")
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.CreateHabit(user, "Swim")
	if err != nil {
		t.Fatal(err)
	}

	// Start a delete for the first habit, then abandon it for a second
	// delete flow. The first confirm keyboard is still on screen.
	mustHandle(t, h, command(user, "delete"))
	mustHandle(t, h, choice(user, choiceDelete+first.ID))
	mustHandle(t, h, command(user, "delete"))
	mustHandle(t, h, choice(user, choiceDelete+second.ID))

	// Confirming via the old keyboard must not delete anything.
	mustHandle(t, h, choice(user, choiceConfirmDelete+first.ID))
	if got := sender.last(t).text; got != msgPressConfirm {
		t.Errorf("got %q, want confirm re-prompt", got)
	}
	if _, err := store.GetHabit(first.ID); err != nil {
		t.Errorf("stale confirmation deleted the first habit: %v", err)
	}
	if _, err := store.GetHabit(second.ID); err != nil {
		t.Errorf("stale confirmation deleted the pending habit: %v", err)
	}

	// The pending flow still works with its own button.
	mustHandle(t, h, choice(user, choiceConfirmDelete+second.ID))
	if got := sender.last(t).text; !strings.Contains(got, "Swim") {
		t.Errorf("got %q, want deletion notice for the pending habit", got)
	}
	if _, err := store.GetHabit(second.ID); err == nil {
		t.Error("pending habit survived its own confirmation")
	}
}

func TestDoneChoiceForVanishedHabit(t *testing.T) {
	h, sender, store := setupTestHandler(t)
	const user = int64(1)

	habit, err := store.CreateHabit(user, "Read")
	if err != nil {
		t.Fatal(err)
	}

	mustHandle(t, h, command(user, "done"))
	menu := sender.last(t)

	// Habit disappears between the menu and the press.
	if err := store.DeleteHabit(habit.ID); err != nil {
		t.Fatal(err)
	}

	mustHandle(t, h, choice(user, menu.choices[0].Data))
	if got := sender.last(t).text; got != msgHabitGone {
		t.Errorf("got %q, want habit-gone message", got)
	}

	// Back to idle: commands work normally afterwards.
	mustHandle(t, h, command(user, "list"))
	if got := sender.last(t).text; got != msgNoHabits {
		t.Errorf("got %q, want empty list", got)
	}
}

func TestReminderConfigFlow(t *testing.T) {
	h, sender, store := setupTestHandler(t)
	const user = int64(1)

	mustHandle(t, h, command(user, "reminder"))
	status := sender.last(t)
	if !strings.Contains(status.text, "off") || len(status.choices) != 2 {
		t.Fatalf("unexpected status message %+v", status)
	}

	mustHandle(t, h, choice(user, choiceReminderOn))
	if got := sender.last(t).text; got != msgPromptReminderTime {
		t.Fatalf("got %q, want time prompt", got)
	}

	// Bad time re-prompts and stays in the flow.
	mustHandle(t, h, text(user, "25:99"))
	if got := sender.last(t).text; got != msgBadReminderTime {
		t.Errorf("got %q, want bad-time message", got)
	}

	mustHandle(t, h, text(user, "08:30"))
	if got := sender.last(t).text; got != msgPromptReminderDays {
		t.Fatalf("got %q, want days prompt", got)
	}

	// Bad choice re-prompts.
	mustHandle(t, h, text(user, "7"))
	if got := sender.last(t).text; got != msgBadReminderDays {
		t.Errorf("got %q, want bad-days message", got)
	}

	mustHandle(t, h, text(user, "2"))
	if got := sender.last(t).text; !strings.Contains(got, "08:30") || !strings.Contains(got, "weekdays") {
		t.Errorf("got %q, want enabled confirmation", got)
	}

	setting, err := store.GetReminder(user)
	if err != nil {
		t.Fatal(err)
	}
	if !setting.Enabled || setting.Time != "08:30" || setting.Days.String() != "0,1,2,3,4" {
		t.Errorf("unexpected stored setting %+v", setting)
	}
}

func TestReminderOff(t *testing.T) {
	h, sender, store := setupTestHandler(t)
	const user = int64(1)

	setting := models.ReminderSetting{UserID: user, Enabled: true, Time: "08:30", Days: models.AllDays()}
	if err := store.UpsertReminder(setting); err != nil {
		t.Fatal(err)
	}

	mustHandle(t, h, choice(user, choiceReminderOff))
	if got := sender.last(t).text; got != msgRemindersOff {
		t.Errorf("got %q, want reminders-off message", got)
	}

	got, err := store.GetReminder(user)
	if err != nil {
		t.Fatal(err)
	}
	if got.Enabled {
		t.Error("setting still enabled")
	}
	if got.Time != "08:30" {
		t.Errorf("disable clobbered time: %q", got.Time)
	}
}

func TestCancelCommand(t *testing.T) {
	h, sender, _ := setupTestHandler(t)
	const user = int64(1)

	mustHandle(t, h, command(user, "cancel"))
	if got := sender.last(t).text; got != msgNothingToCancel {
		t.Errorf("got %q, want nothing-to-cancel", got)
	}

	mustHandle(t, h, command(user, "add"))
	mustHandle(t, h, command(user, "cancel"))
	if got := sender.last(t).text; got != msgCancelled {
		t.Errorf("got %q, want cancelled", got)
	}

	// The abandoned flow no longer consumes text.
	before := len(sender.sent)
	mustHandle(t, h, text(user, "Morning run"))
	if len(sender.sent) != before {
		t.Error("cancelled flow still consumed text")
	}
}

func TestCommandInterruptsFlow(t *testing.T) {
	h, sender, store := setupTestHandler(t)
	const user = int64(1)

	mustHandle(t, h, command(user, "add"))
	mustHandle(t, h, command(user, "list"))
	if got := sender.last(t).text; got != msgNoHabits {
		t.Errorf("got %q, want empty list", got)
	}

	// The add flow was discarded.
	before := len(sender.sent)
	mustHandle(t, h, text(user, "Morning run"))
	if len(sender.sent) != before {
		t.Error("interrupted flow still consumed text")
	}
	habits, err := store.ListHabits(user)
	if err != nil {
		t.Fatal(err)
	}
	if len(habits) != 0 {
		t.Errorf("interrupted flow created a habit: %+v", habits)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	h, sender, store := setupTestHandler(t)

	mustHandle(t, h, command(1, "add"))
	mustHandle(t, h, command(2, "add"))

	// User 2's reply lands in user 2's flow only.
	mustHandle(t, h, text(2, "Swim"))
	if got := sender.last(t); got.userID != 2 || !strings.Contains(got.text, "Swim") {
		t.Fatalf("unexpected reply %+v", got)
	}

	mustHandle(t, h, text(1, "Read"))
	habits, err := store.ListHabits(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(habits) != 1 || habits[0].Name != "Read" {
		t.Errorf("user 1 flow disturbed: %+v", habits)
	}
}

func TestStatsCommands(t *testing.T) {
	h, sender, store := setupTestHandler(t)
	const user = int64(1)

	mustHandle(t, h, command(user, "stats"))
	if got := sender.last(t).text; got != msgStatsEmpty {
		t.Errorf("got %q, want empty stats", got)
	}
	mustHandle(t, h, command(user, "week_stats"))
	if got := sender.last(t).text; got != msgWeekStatsEmpty {
		t.Errorf("got %q, want empty week stats", got)
	}

	habit, err := store.CreateHabit(user, "Read")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.CompleteHabit(habit.ID, 3, 2, "2025-03-09"); err != nil {
		t.Fatal(err)
	}

	mustHandle(t, h, command(user, "stats"))
	if got := sender.last(t).text; !strings.Contains(got, "Read") {
		t.Errorf("stats %q does not mention the habit", got)
	}
	mustHandle(t, h, command(user, "week_stats"))
	if got := sender.last(t).text; !strings.Contains(got, "Read") {
		t.Errorf("week stats %q does not mention the habit", got)
	}
}

package bot

import (
	"fmt"
	"strings"

	"github.com/akozlov/habitbot/internal/models"
)

const (
	msgStart = "Hi there! 👋\n\n" +
		"I'm HabitBot, a habit tracker. I keep count of your habits, track\n" +
		"daily streaks and can remind you to keep them going.\n\n" +
		"Send /help to see what I can do."

	msgHelp = "Here's what I understand:\n\n" +
		"/add — add a habit\n" +
		"/list — list your habits\n" +
		"/done — mark a habit done today\n" +
		"/delete — delete a habit\n" +
		"/stats — overall statistics\n" +
		"/week_stats — last 7 days\n" +
		"/reminder — manage reminders\n" +
		"/cancel — abandon the current action"

	msgPromptHabitName   = "What habit would you like to track?"
	msgHabitNameTooShort = "That name is too short. Give it at least two characters and try again."
	msgNoHabits          = "❌ You don't have any habits yet. Add one with /add."
	msgChooseDone        = "✅ Which habit did you complete?"
	msgChooseDelete      = "🗑 Which habit should I delete?"
	msgPressHabitButton  = "❗️ Please pick a habit with one of the buttons."
	msgPressConfirm      = "❗️ Please answer with one of the buttons."
	msgHabitGone         = "That habit is already gone."
	msgDeleteCancelled   = "❌ Deletion cancelled."
	msgCancelled         = "Action cancelled."
	msgNothingToCancel   = "Nothing in progress."

	msgPromptReminderTime = "🕒 What time should I remind you? Send it as HH:MM, for example 08:30."
	msgBadReminderTime    = "❌ That doesn't look like a time. Send HH:MM, for example 08:30 or 21:45."
	msgPromptReminderDays = "📅 Which days?\n\n" +
		"1️⃣ Every day\n" +
		"2️⃣ Weekdays (Mon–Fri)\n" +
		"3️⃣ Weekends (Sat–Sun)\n\n" +
		"Send 1, 2 or 3:"
	msgBadReminderDays = "❌ Send 1, 2 or 3."
	msgRemindersOff    = "🔕 Reminders are off."

	msgStatsEmpty     = "You have no habits to report on yet."
	msgWeekStatsEmpty = "📅 No completions in the last 7 days.\nNo better time to start 💪"
)

func fmtHabitAdded(name string) string {
	return fmt.Sprintf("Habit “%s” added ✅", name)
}

func fmtHabitDeleted(name string) string {
	return fmt.Sprintf("🗑 Habit “%s” deleted.", name)
}

func fmtConfirmDelete(name string) string {
	return fmt.Sprintf("⚠️ Are you sure you want to delete “%s”?", name)
}

func fmtHabitDone(name string, streak, count int) string {
	return fmt.Sprintf("✅ “%s” done!\n🔥 Streak: %d day(s) in a row\n📊 Completed %d time(s) total", name, streak, count)
}

func fmtAlreadyDone(name string, streak int) string {
	return fmt.Sprintf("“%s” is already marked done today.\n🔥 Streak stays at %d day(s).", name, streak)
}

func fmtHabitList(habits []models.Habit) string {
	var b strings.Builder
	b.WriteString("📋 Your habits:\n")
	for i, h := range habits {
		fmt.Fprintf(&b, "\n%d. %s\n🔥 Streak: %d day(s)\n📊 Completed: %d\n", i+1, h.Name, h.Streak, h.Count)
	}
	return b.String()
}

func fmtReminderStatus(setting models.ReminderSetting) string {
	status := "off"
	if setting.Enabled {
		status = "on"
	}
	return fmt.Sprintf("⏰ Reminders are currently %s.\nTime: %s", status, setting.Time)
}

func fmtReminderEnabled(clock string, days models.DaySet) string {
	label := "every day"
	switch days.String() {
	case models.Weekdays().String():
		label = "weekdays"
	case models.Weekend().String():
		label = "weekends"
	}
	return fmt.Sprintf("✅ Reminders are on!\n\n⏰ Time: %s\n📅 Days: %s", clock, label)
}

func fmtStats(stats models.Stats) string {
	var b strings.Builder
	b.WriteString("📊 Habit statistics\n\n")
	fmt.Fprintf(&b, "Habits: %d\n", stats.Habits)
	fmt.Fprintf(&b, "Total completions: %d\n", stats.TotalDone)

	if stats.Best != nil {
		fmt.Fprintf(&b, "\n🔥 Best streak:\n%s — %d day(s)\n", stats.Best.Name, stats.Best.Streak)
	}
	if len(stats.TopByCount) > 0 {
		b.WriteString("\n🏆 Most completed:\n")
		for i, hc := range stats.TopByCount {
			fmt.Fprintf(&b, "%d. %s — %d\n", i+1, hc.Name, hc.Count)
		}
	}
	fmt.Fprintf(&b, "\n📈 Average streak: %.1f day(s)", stats.AvgStreak)
	return b.String()
}

func fmtWeekStats(stats models.WeekStats) string {
	var b strings.Builder
	b.WriteString("📅 Last 7 days\n\n")
	fmt.Fprintf(&b, "✅ Habits completed: %d\n", stats.Done)
	if len(stats.Top) > 0 {
		b.WriteString("\n🏆 Top this week:\n")
		for i, hc := range stats.Top {
			fmt.Fprintf(&b, "%d. %s — %d\n", i+1, hc.Name, hc.Count)
		}
	}
	return b.String()
}

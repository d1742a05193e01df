package models

// HabitCount pairs a habit name with a completion count, used in rankings.
type HabitCount struct {
	Name  string
	Count int
}

// BestStreak names the habit with the longest current streak.
type BestStreak struct {
	Name   string
	Streak int
}

// Stats aggregates a user's habits over all time.
type Stats struct {
	Habits     int
	TotalDone  int
	Best       *BestStreak // nil when no habit has a positive streak
	TopByCount []HabitCount
	AvgStreak  float64
}

// WeekStats aggregates a user's completions over the last seven days.
type WeekStats struct {
	Done int
	Top  []HabitCount
}

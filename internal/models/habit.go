package models

// Habit represents a recurring practice tracked for a single user
type Habit struct {
	ID       string `json:"id"`
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	Count    int    `json:"count"`
	Streak   int    `json:"streak"`
	LastDone string `json:"last_done,omitempty"` // YYYY-MM-DD, empty if never completed
}

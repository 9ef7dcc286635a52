package mq

import "time"

// ActivityLoggedPayload is published by the tracking service whenever a
// log is created or edited.
type ActivityLoggedPayload struct {
	LogID    int       `json:"log_id"`
	UserID   int       `json:"user_id"`
	HabitID  int       `json:"habit_id"`
	LogDate  time.Time `json:"log_date"`
	Activity string    `json:"activity"`
	Rating   int       `json:"rating"`
}

// HabitStreakUpdatedPayload 单个习惯的连续打卡变化
type HabitStreakUpdatedPayload struct {
	UserID        int       `json:"user_id"`
	HabitID       int       `json:"habit_id"`
	HabitName     string    `json:"habit_name"`
	Frequency     string    `json:"frequency"`
	StreakUnit    string    `json:"streak_unit"`
	LongestStreak int       `json:"longest_streak"`
	CurrentStreak int       `json:"current_streak"`
	ComputedAt    time.Time `json:"computed_at"`
	// TriggerLogID is the activity log that caused the recompute.
	TriggerLogID int `json:"trigger_log_id"`
}

type HabitStreak struct {
	HabitID       int    `json:"habit_id"`
	HabitName     string `json:"habit_name"`
	StreakUnit    string `json:"streak_unit"`
	LongestStreak int    `json:"longest_streak"`
	CurrentStreak int    `json:"current_streak"`
}

// UserStreakSnapshotPayload 用户所有习惯的连续打卡快照（定时发布）
type UserStreakSnapshotPayload struct {
	UserID int `json:"user_id"`
	// Longest and current streak over all habits.
	LongestStreak int           `json:"longest_streak"`
	CurrentStreak int           `json:"current_streak"`
	Habits        []HabitStreak `json:"habits"`
	ComputedAt    time.Time     `json:"computed_at"`
}

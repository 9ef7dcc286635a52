package db

import "time"

// Habit 表示 habits 表的完整结构
type Habit struct {
	ID           int        `json:"id"`
	UserID       int        `json:"user_id"`
	Name         string     `json:"name"`
	Category     string     `json:"category"`
	Frequency    string     `json:"frequency"`
	TrackingType string     `json:"tracking_type"`
	Goal         *float64   `json:"goal,omitempty"`
	GoalUnits    *string    `json:"goal_units,omitempty"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
}

// ActivityLog 表示 activity_logs 表的完整结构
type ActivityLog struct {
	ID       int       `json:"log_id"`
	HabitID  int       `json:"habit_id"`
	LogDate  time.Time `json:"log_date"`
	Activity string    `json:"activity"`
	Rating   *int      `json:"rating,omitempty"`
	Notes    *string   `json:"log_notes,omitempty"`
}

// AnnotatedLog 表示日志与所属习惯的联表查询结果
type AnnotatedLog struct {
	Log   ActivityLog
	Habit Habit
}

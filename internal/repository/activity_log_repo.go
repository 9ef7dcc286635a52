package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	dbcontracts "habitpulse/contracts/db"
	"habitpulse/internal/model"
)

type ActivityLogRepository struct {
	db Querier
}

func NewActivityLogRepository(db Querier) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

const annotatedSelect = `
        SELECT l.id, l.habit_id, l.log_date, l.activity, l.rating, l.log_notes,
            ` + habitColumns + `
        FROM activity_logs l
        JOIN habits h ON h.id = l.habit_id
    `

// ListAnnotatedByUser returns every log of the user joined with its habit,
// ordered by log date.
func (r *ActivityLogRepository) ListAnnotatedByUser(ctx context.Context, userID int) ([]model.AnnotatedLog, error) {
	query := annotatedSelect + `
        WHERE h.user_id = $1
        ORDER BY l.log_date, l.id
    `
	logs, err := r.listAnnotated(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list logs for user %d: %w", userID, err)
	}
	return logs, nil
}

// ListAnnotatedByHabit returns the logs of one habit owned by userID.
func (r *ActivityLogRepository) ListAnnotatedByHabit(ctx context.Context, userID, habitID int) ([]model.AnnotatedLog, error) {
	query := annotatedSelect + `
        WHERE h.user_id = $1 AND h.id = $2
        ORDER BY l.log_date, l.id
    `
	logs, err := r.listAnnotated(ctx, query, userID, habitID)
	if err != nil {
		return nil, fmt.Errorf("list logs for habit %d: %w", habitID, err)
	}
	return logs, nil
}

// ListUsersWithLogs returns the distinct users that have at least one log.
func (r *ActivityLogRepository) ListUsersWithLogs(ctx context.Context) ([]int, error) {
	query := `
        SELECT DISTINCT h.user_id
        FROM activity_logs l
        JOIN habits h ON h.id = l.habit_id
        ORDER BY h.user_id
    `
	var users []int
	err := observe(ctx, "select", "activity_logs", query, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, query)
		if err != nil {
			return err
		}
		users, err = pgx.CollectRows(rows, pgx.RowTo[int])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list users with logs: %w", err)
	}
	return users, nil
}

func (r *ActivityLogRepository) listAnnotated(ctx context.Context, query string, args ...any) ([]model.AnnotatedLog, error) {
	var logs []model.AnnotatedLog
	err := observe(ctx, "select", "activity_logs", query, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		// 同一习惯只转换一次
		habits := make(map[int]model.Habit)
		for rows.Next() {
			var row dbcontracts.AnnotatedLog
			err := rows.Scan(
				&row.Log.ID,
				&row.Log.HabitID,
				&row.Log.LogDate,
				&row.Log.Activity,
				&row.Log.Rating,
				&row.Log.Notes,
				&row.Habit.ID,
				&row.Habit.UserID,
				&row.Habit.Name,
				&row.Habit.Category,
				&row.Habit.Frequency,
				&row.Habit.TrackingType,
				&row.Habit.Goal,
				&row.Habit.GoalUnits,
				&row.Habit.StartDate,
				&row.Habit.EndDate,
			)
			if err != nil {
				return err
			}

			habit, ok := habits[row.Habit.ID]
			if !ok {
				habit, err = HabitFromRow(row.Habit)
				if err != nil {
					return err
				}
				habits[habit.ID] = habit
			}
			logs = append(logs, model.AnnotatedLog{
				ActivityLog: ActivityLogFromRow(row.Log),
				Habit:       habit,
			})
		}
		return rows.Err()
	})
	return logs, err
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	dbcontracts "habitpulse/contracts/db"
	"habitpulse/internal/model"
)

const habitColumns = `h.id, h.user_id, h.name, h.category, h.frequency, h.tracking_type,
            h.goal, h.goal_units, h.start_date, h.end_date`

type HabitRepository struct {
	db Querier
}

func NewHabitRepository(db Querier) *HabitRepository {
	return &HabitRepository{db: db}
}

// ListByUser returns all habits of a user ordered by id.
func (r *HabitRepository) ListByUser(ctx context.Context, userID int) ([]model.Habit, error) {
	query := `
        SELECT ` + habitColumns + `
        FROM habits h
        WHERE h.user_id = $1
        ORDER BY h.id
    `
	var habits []model.Habit
	err := observe(ctx, "select", "habits", query, func(ctx context.Context) error {
		rows, err := r.db.Query(ctx, query, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			row, err := scanHabit(rows)
			if err != nil {
				return err
			}
			h, err := HabitFromRow(row)
			if err != nil {
				return err
			}
			habits = append(habits, h)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list habits for user %d: %w", userID, err)
	}
	return habits, nil
}

// Get returns one habit owned by userID, or ErrHabitNotFound.
func (r *HabitRepository) Get(ctx context.Context, userID, habitID int) (model.Habit, error) {
	query := `
        SELECT ` + habitColumns + `
        FROM habits h
        WHERE h.id = $1 AND h.user_id = $2
    `
	var habit model.Habit
	err := observe(ctx, "select", "habits", query, func(ctx context.Context) error {
		row, err := scanHabit(r.db.QueryRow(ctx, query, habitID, userID))
		if err != nil {
			return err
		}
		habit, err = HabitFromRow(row)
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Habit{}, ErrHabitNotFound
	}
	if err != nil {
		return model.Habit{}, fmt.Errorf("get habit %d: %w", habitID, err)
	}
	return habit, nil
}

func scanHabit(row pgx.Row) (dbcontracts.Habit, error) {
	var h dbcontracts.Habit
	err := row.Scan(
		&h.ID,
		&h.UserID,
		&h.Name,
		&h.Category,
		&h.Frequency,
		&h.TrackingType,
		&h.Goal,
		&h.GoalUnits,
		&h.StartDate,
		&h.EndDate,
	)
	return h, err
}

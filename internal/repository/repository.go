package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	dbcontracts "habitpulse/contracts/db"
	"habitpulse/internal/model"
	"habitpulse/pkg/metrics"
	"habitpulse/pkg/otel"
)

var ErrHabitNotFound = errors.New("habit not found")

// Querier is the subset of *pgxpool.Pool the repositories use.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// observe runs fn inside a DB span and records its latency.
func observe(ctx context.Context, operation, table, query string, fn func(context.Context) error) error {
	start := time.Now()
	err := otel.Query(ctx, operation, query, fn)
	metrics.RecordDBQueryDuration(operation, table, time.Since(start))
	return err
}

// HabitFromRow converts a habits row into the domain model.
func HabitFromRow(row dbcontracts.Habit) (model.Habit, error) {
	freq, err := model.ParseFrequency(row.Frequency)
	if err != nil {
		return model.Habit{}, fmt.Errorf("habit %d: %w", row.ID, err)
	}
	mode, err := model.ParseTrackingMode(row.TrackingType)
	if err != nil {
		return model.Habit{}, fmt.Errorf("habit %d: %w", row.ID, err)
	}

	h := model.Habit{
		ID:           row.ID,
		UserID:       row.UserID,
		Name:         row.Name,
		Category:     row.Category,
		Frequency:    freq,
		TrackingMode: mode,
		Goal:         row.Goal,
		StartDate:    row.StartDate,
		EndDate:      row.EndDate,
	}
	if row.GoalUnits != nil {
		h.GoalUnits = *row.GoalUnits
	}
	return h, nil
}

// ActivityLogFromRow converts an activity_logs row into the domain model.
func ActivityLogFromRow(row dbcontracts.ActivityLog) model.ActivityLog {
	l := model.ActivityLog{
		ID:       row.ID,
		HabitID:  row.HabitID,
		LogDate:  row.LogDate,
		Activity: model.ActivityValue(row.Activity),
	}
	if row.Rating != nil {
		l.Rating = *row.Rating
	}
	if row.Notes != nil {
		l.Notes = *row.Notes
	}
	return l
}

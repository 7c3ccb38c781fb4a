package repository

import (
	"context"
	"time"

	"habitbot/internal/habits"
)

var _ habits.Store = (*Repository)(nil)

func (r *Repository) GetWeek(ctx context.Context, userID int64, anchor time.Time) (habits.WeekRow, error) {
	return r.Week.Get(ctx, userID, anchor)
}

func (r *Repository) UpsertWeek(ctx context.Context, row habits.WeekRow) error {
	return r.Week.Upsert(ctx, row)
}

func (r *Repository) RecentWeeks(ctx context.Context, userID int64, before time.Time, limit int) ([]habits.WeekRow, error) {
	return r.Week.Recent(ctx, userID, before, limit)
}

func (r *Repository) Users(ctx context.Context) ([]int64, error) {
	return r.Week.Users(ctx)
}

func (r *Repository) GetDay(ctx context.Context, userID int64, date time.Time) (habits.DayLog, error) {
	return r.Day.Get(ctx, userID, date)
}

func (r *Repository) UpsertDay(ctx context.Context, log habits.DayLog) error {
	return r.Day.Upsert(ctx, log)
}

func (r *Repository) DaysBetween(ctx context.Context, userID int64, from, to time.Time) ([]habits.DayLog, error) {
	return r.Day.Between(ctx, userID, from, to)
}

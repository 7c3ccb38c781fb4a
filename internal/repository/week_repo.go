package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"habitbot/internal/habits"

	"github.com/jmoiron/sqlx"
)

// weekRecord строка таблицы week_rows
type weekRecord struct {
	UserID       int64  `db:"user_id"`
	Anchor       string `db:"anchor"`
	LastActivity string `db:"last_activity"`
	Habit1       int    `db:"habit_1"`
	Habit2       int    `db:"habit_2"`
	Habit3       int    `db:"habit_3"`
	Habit4       int    `db:"habit_4"`
	Habit5       int    `db:"habit_5"`
	Goals        string `db:"goals"`
	UpdatedAt    string `db:"updated_at"`
}

const weekColumns = `user_id, anchor, last_activity, habit_1, habit_2, habit_3, habit_4, habit_5, goals, updated_at`

// WeekRepository работает с таблицей week_rows
type WeekRepository struct {
	db  *sqlx.DB
	loc *time.Location
}

// NewWeekRepository создаёт репозиторий недель
func NewWeekRepository(db *sqlx.DB, loc *time.Location) *WeekRepository {
	return &WeekRepository{db: db, loc: loc}
}

// Get возвращает строку недели или habits.ErrNotFound
func (r *WeekRepository) Get(ctx context.Context, userID int64, anchor time.Time) (habits.WeekRow, error) {
	var rec weekRecord
	err := r.db.GetContext(ctx, &rec, r.db.Rebind(`
		SELECT `+weekColumns+`
		FROM week_rows
		WHERE user_id = ? AND anchor = ?`), userID, anchor.Format(habits.DateLayout))
	if errors.Is(err, sql.ErrNoRows) {
		return habits.WeekRow{}, habits.ErrNotFound
	}
	if err != nil {
		return habits.WeekRow{}, fmt.Errorf("ошибка чтения недели: %w", err)
	}
	return r.toRow(rec)
}

// Upsert создаёт или обновляет строку недели
func (r *WeekRepository) Upsert(ctx context.Context, row habits.WeekRow) error {
	rec := weekRecord{
		UserID:    row.UserID,
		Anchor:    row.Anchor.In(r.loc).Format(habits.DateLayout),
		Habit1:    int(row.Days[0]),
		Habit2:    int(row.Days[1]),
		Habit3:    int(row.Days[2]),
		Habit4:    int(row.Days[3]),
		Habit5:    int(row.Days[4]),
		Goals:     row.Goals,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if !row.LastActivity.IsZero() {
		rec.LastActivity = row.LastActivity.In(r.loc).Format(habits.DateLayout)
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO week_rows (`+weekColumns+`)
		VALUES (:user_id, :anchor, :last_activity, :habit_1, :habit_2, :habit_3, :habit_4, :habit_5, :goals, :updated_at)
		ON CONFLICT (user_id, anchor) DO UPDATE SET
			last_activity = excluded.last_activity,
			habit_1 = excluded.habit_1,
			habit_2 = excluded.habit_2,
			habit_3 = excluded.habit_3,
			habit_4 = excluded.habit_4,
			habit_5 = excluded.habit_5,
			goals = excluded.goals,
			updated_at = excluded.updated_at`, rec)
	if err != nil {
		return fmt.Errorf("ошибка записи недели: %w", err)
	}
	return nil
}

// Recent возвращает до limit строк с anchor < before, новые первыми
func (r *WeekRepository) Recent(ctx context.Context, userID int64, before time.Time, limit int) ([]habits.WeekRow, error) {
	var recs []weekRecord
	err := r.db.SelectContext(ctx, &recs, r.db.Rebind(`
		SELECT `+weekColumns+`
		FROM week_rows
		WHERE user_id = ? AND anchor < ?
		ORDER BY anchor DESC
		LIMIT ?`), userID, before.In(r.loc).Format(habits.DateLayout), limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения истории: %w", err)
	}

	rows := make([]habits.WeekRow, 0, len(recs))
	for _, rec := range recs {
		row, err := r.toRow(rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Users возвращает идентификаторы всех пользователей с недельными строками
func (r *WeekRepository) Users(ctx context.Context) ([]int64, error) {
	var users []int64
	if err := r.db.SelectContext(ctx, &users, `SELECT DISTINCT user_id FROM week_rows ORDER BY user_id`); err != nil {
		return nil, fmt.Errorf("ошибка чтения пользователей: %w", err)
	}
	return users, nil
}

func (r *WeekRepository) toRow(rec weekRecord) (habits.WeekRow, error) {
	anchor, err := habits.ParseDate(rec.Anchor, r.loc)
	if err != nil {
		return habits.WeekRow{}, fmt.Errorf("неверная дата недели %q: %w", rec.Anchor, err)
	}
	row := habits.NewWeekRow(rec.UserID, anchor)
	if rec.LastActivity != "" {
		if row.LastActivity, err = habits.ParseDate(rec.LastActivity, r.loc); err != nil {
			return habits.WeekRow{}, fmt.Errorf("неверная дата активности %q: %w", rec.LastActivity, err)
		}
	}
	for i, v := range []int{rec.Habit1, rec.Habit2, rec.Habit3, rec.Habit4, rec.Habit5} {
		row.Days[i] = habits.DaySet(v)
	}
	row.Goals = rec.Goals
	return row, nil
}

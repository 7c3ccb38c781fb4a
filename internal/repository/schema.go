package repository

import (
	"context"
	"fmt"
)

// Даты хранятся текстом YYYY-MM-DD: сравнение строк совпадает с порядком дат
// и одинаково работает в PostgreSQL и SQLite.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS week_rows (
		user_id       BIGINT  NOT NULL,
		anchor        TEXT    NOT NULL,
		last_activity TEXT    NOT NULL DEFAULT '',
		habit_1       INTEGER NOT NULL DEFAULT 0,
		habit_2       INTEGER NOT NULL DEFAULT 0,
		habit_3       INTEGER NOT NULL DEFAULT 0,
		habit_4       INTEGER NOT NULL DEFAULT 0,
		habit_5       INTEGER NOT NULL DEFAULT 0,
		goals         TEXT    NOT NULL DEFAULT '',
		updated_at    TEXT    NOT NULL DEFAULT '',
		PRIMARY KEY (user_id, anchor)
	)`,
	`CREATE TABLE IF NOT EXISTS day_logs (
		user_id      BIGINT  NOT NULL,
		log_date     TEXT    NOT NULL,
		anchor       TEXT    NOT NULL,
		coffee_count INTEGER NOT NULL DEFAULT 0,
		coffee_cost  INTEGER NOT NULL DEFAULT 0,
		sugary_count INTEGER NOT NULL DEFAULT 0,
		sugary_cost  INTEGER NOT NULL DEFAULT 0,
		flour_count  INTEGER NOT NULL DEFAULT 0,
		flour_cost   INTEGER NOT NULL DEFAULT 0,
		chinese      INTEGER NOT NULL DEFAULT 0,
		hebrew       INTEGER NOT NULL DEFAULT 0,
		tatar        INTEGER NOT NULL DEFAULT 0,
		updated_at   TEXT    NOT NULL DEFAULT '',
		PRIMARY KEY (user_id, log_date)
	)`,
}

// Migrate создаёт таблицы, если их ещё нет
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ошибка миграции: %w", err)
		}
	}
	return nil
}

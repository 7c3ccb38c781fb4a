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

// dayRecord строка таблицы day_logs
type dayRecord struct {
	UserID      int64  `db:"user_id"`
	LogDate     string `db:"log_date"`
	Anchor      string `db:"anchor"`
	CoffeeCount int    `db:"coffee_count"`
	CoffeeCost  int    `db:"coffee_cost"`
	SugaryCount int    `db:"sugary_count"`
	SugaryCost  int    `db:"sugary_cost"`
	FlourCount  int    `db:"flour_count"`
	FlourCost   int    `db:"flour_cost"`
	Chinese     int    `db:"chinese"`
	Hebrew      int    `db:"hebrew"`
	Tatar       int    `db:"tatar"`
	UpdatedAt   string `db:"updated_at"`
}

const dayColumns = `user_id, log_date, anchor, coffee_count, coffee_cost, sugary_count, sugary_cost,
	flour_count, flour_cost, chinese, hebrew, tatar, updated_at`

// DayRepository работает с таблицей day_logs
type DayRepository struct {
	db  *sqlx.DB
	loc *time.Location
}

// NewDayRepository создаёт репозиторий дневных записей
func NewDayRepository(db *sqlx.DB, loc *time.Location) *DayRepository {
	return &DayRepository{db: db, loc: loc}
}

// Get возвращает запись дня или habits.ErrNotFound
func (r *DayRepository) Get(ctx context.Context, userID int64, date time.Time) (habits.DayLog, error) {
	var rec dayRecord
	err := r.db.GetContext(ctx, &rec, r.db.Rebind(`
		SELECT `+dayColumns+`
		FROM day_logs
		WHERE user_id = ? AND log_date = ?`), userID, date.In(r.loc).Format(habits.DateLayout))
	if errors.Is(err, sql.ErrNoRows) {
		return habits.DayLog{}, habits.ErrNotFound
	}
	if err != nil {
		return habits.DayLog{}, fmt.Errorf("ошибка чтения дня: %w", err)
	}
	return r.toLog(rec)
}

// Upsert создаёт или обновляет запись дня
func (r *DayRepository) Upsert(ctx context.Context, log habits.DayLog) error {
	date := log.Date.In(r.loc)
	rec := dayRecord{
		UserID:      log.UserID,
		LogDate:     date.Format(habits.DateLayout),
		Anchor:      habits.WeekAnchor(date, r.loc).Format(habits.DateLayout),
		CoffeeCount: log.Consumption[habits.Coffee].Count,
		CoffeeCost:  log.Consumption[habits.Coffee].Cost,
		SugaryCount: log.Consumption[habits.Sugary].Count,
		SugaryCost:  log.Consumption[habits.Sugary].Cost,
		FlourCount:  log.Consumption[habits.Flour].Count,
		FlourCost:   log.Consumption[habits.Flour].Cost,
		Chinese:     boolToInt(log.Language[habits.Chinese]),
		Hebrew:      boolToInt(log.Language[habits.Hebrew]),
		Tatar:       boolToInt(log.Language[habits.Tatar]),
		UpdatedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO day_logs (`+dayColumns+`)
		VALUES (:user_id, :log_date, :anchor, :coffee_count, :coffee_cost, :sugary_count, :sugary_cost,
			:flour_count, :flour_cost, :chinese, :hebrew, :tatar, :updated_at)
		ON CONFLICT (user_id, log_date) DO UPDATE SET
			coffee_count = excluded.coffee_count,
			coffee_cost = excluded.coffee_cost,
			sugary_count = excluded.sugary_count,
			sugary_cost = excluded.sugary_cost,
			flour_count = excluded.flour_count,
			flour_cost = excluded.flour_cost,
			chinese = excluded.chinese,
			hebrew = excluded.hebrew,
			tatar = excluded.tatar,
			updated_at = excluded.updated_at`, rec)
	if err != nil {
		return fmt.Errorf("ошибка записи дня: %w", err)
	}
	return nil
}

// Between возвращает записи from <= log_date < to по возрастанию даты
func (r *DayRepository) Between(ctx context.Context, userID int64, from, to time.Time) ([]habits.DayLog, error) {
	var recs []dayRecord
	err := r.db.SelectContext(ctx, &recs, r.db.Rebind(`
		SELECT `+dayColumns+`
		FROM day_logs
		WHERE user_id = ? AND log_date >= ? AND log_date < ?
		ORDER BY log_date`),
		userID, from.In(r.loc).Format(habits.DateLayout), to.In(r.loc).Format(habits.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения дней: %w", err)
	}

	logs := make([]habits.DayLog, 0, len(recs))
	for _, rec := range recs {
		log, err := r.toLog(rec)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, nil
}

func (r *DayRepository) toLog(rec dayRecord) (habits.DayLog, error) {
	date, err := habits.ParseDate(rec.LogDate, r.loc)
	if err != nil {
		return habits.DayLog{}, fmt.Errorf("неверная дата %q: %w", rec.LogDate, err)
	}
	log := habits.DayLog{UserID: rec.UserID, Date: date}
	log.Consumption[habits.Coffee] = habits.Consumption{Count: rec.CoffeeCount, Cost: rec.CoffeeCost}
	log.Consumption[habits.Sugary] = habits.Consumption{Count: rec.SugaryCount, Cost: rec.SugaryCost}
	log.Consumption[habits.Flour] = habits.Consumption{Count: rec.FlourCount, Cost: rec.FlourCost}
	log.Language[habits.Chinese] = rec.Chinese != 0
	log.Language[habits.Hebrew] = rec.Hebrew != 0
	log.Language[habits.Tatar] = rec.Tatar != 0
	return log, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

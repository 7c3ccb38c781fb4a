package habits

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Outcome результат записи привычки
type Outcome int

const (
	// Failed — запись не выполнена из-за ошибки хранилища
	Failed Outcome = iota
	Recorded
	DuplicateIgnored
	InvalidHabitID
)

func (o Outcome) String() string {
	switch o {
	case Failed:
		return "failed"
	case Recorded:
		return "recorded"
	case DuplicateIgnored:
		return "duplicate_ignored"
	case InvalidHabitID:
		return "invalid_habit_id"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// HistoryWeeks сколько прошлых недель участвует в сравнении
const HistoryWeeks = 3

// Ledger недельный журнал привычек поверх хранилища строк
type Ledger struct {
	store WeekStore
	loc   *time.Location
}

// NewLedger создаёт журнал; loc определяет границы недель и дней
func NewLedger(store WeekStore, loc *time.Location) *Ledger {
	if loc == nil {
		loc = time.UTC
	}
	return &Ledger{store: store, loc: loc}
}

// Location возвращает часовой пояс журнала
func (l *Ledger) Location() *time.Location {
	return l.loc
}

// Anchor возвращает понедельник недели для t
func (l *Ledger) Anchor(t time.Time) time.Time {
	return WeekAnchor(t, l.loc)
}

// Record отмечает выполнение привычки habitID в день eventDate.
// Повтор той же привычки в тот же день не меняет строку и не пишет в хранилище.
func (l *Ledger) Record(ctx context.Context, userID int64, habitID int, eventDate time.Time) (Outcome, error) {
	if _, ok := Lookup(habitID); !ok {
		return InvalidHabitID, fmt.Errorf("%w: %d", ErrInvalidHabitID, habitID)
	}

	day := Day(eventDate, l.loc)
	anchor := WeekAnchor(day, l.loc)

	row, err := l.load(ctx, userID, anchor)
	if err != nil {
		return Failed, err
	}

	idx := habitID - 1
	if row.Days[idx].Has(day) {
		return DuplicateIgnored, nil
	}

	row.Days[idx] = row.Days[idx].With(day)
	if day.After(row.LastActivity) {
		row.LastActivity = day
	}

	if err := l.store.UpsertWeek(ctx, row); err != nil {
		return Failed, fmt.Errorf("%w: запись недели: %w", ErrStoreUnavailable, err)
	}
	return Recorded, nil
}

// Week возвращает строку недели; отсутствующая строка: пустая строка без ошибки
func (l *Ledger) Week(ctx context.Context, userID int64, anchor time.Time) (WeekRow, bool, error) {
	row, err := l.store.GetWeek(ctx, userID, WeekAnchor(anchor, l.loc))
	if errors.Is(err, ErrNotFound) {
		return NewWeekRow(userID, WeekAnchor(anchor, l.loc)), false, nil
	}
	if err != nil {
		return WeekRow{}, false, fmt.Errorf("%w: чтение недели: %w", ErrStoreUnavailable, err)
	}
	return row, true, nil
}

// ComputeStats считает статистику недели; нет строки: все счётчики нулевые
func (l *Ledger) ComputeStats(ctx context.Context, userID int64, anchor time.Time) (WeeklyStats, error) {
	row, found, err := l.Week(ctx, userID, anchor)
	if err != nil {
		return WeeklyStats{}, err
	}
	return StatsFromRow(row, found), nil
}

// History возвращает статистику до n прошлых недель, самая свежая первой
func (l *Ledger) History(ctx context.Context, userID int64, anchor time.Time, n int) ([]WeeklyStats, error) {
	rows, err := l.store.RecentWeeks(ctx, userID, WeekAnchor(anchor, l.loc), n)
	if err != nil {
		return nil, fmt.Errorf("%w: история: %w", ErrStoreUnavailable, err)
	}
	out := make([]WeeklyStats, 0, len(rows))
	for _, row := range rows {
		out = append(out, StatsFromRow(row, true))
	}
	return out, nil
}

// SetGoal сохраняет цель в строку недели anchor, создавая строку при необходимости
func (l *Ledger) SetGoal(ctx context.Context, userID int64, anchor time.Time, goal string) error {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return fmt.Errorf("пустая цель")
	}
	row, err := l.load(ctx, userID, WeekAnchor(anchor, l.loc))
	if err != nil {
		return err
	}
	row.Goals = goal
	if err := l.store.UpsertWeek(ctx, row); err != nil {
		return fmt.Errorf("%w: запись цели: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// RecentRows возвращает строки недель пользователя до anchor включительно
func (l *Ledger) RecentRows(ctx context.Context, userID int64, anchor time.Time, n int) ([]WeekRow, error) {
	// before — следующий понедельник, чтобы текущая неделя тоже попала в выборку
	before := WeekAnchor(anchor, l.loc).AddDate(0, 0, 7)
	rows, err := l.store.RecentWeeks(ctx, userID, before, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return rows, nil
}

// Users возвращает всех пользователей журнала
func (l *Ledger) Users(ctx context.Context) ([]int64, error) {
	users, err := l.store.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return users, nil
}

func (l *Ledger) load(ctx context.Context, userID int64, anchor time.Time) (WeekRow, error) {
	row, err := l.store.GetWeek(ctx, userID, anchor)
	if errors.Is(err, ErrNotFound) {
		return NewWeekRow(userID, anchor), nil
	}
	if err != nil {
		return WeekRow{}, fmt.Errorf("%w: чтение недели: %w", ErrStoreUnavailable, err)
	}
	return row, nil
}

package habits

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound возвращается хранилищем, когда строки нет
	ErrNotFound = errors.New("запись не найдена")
	// ErrStoreUnavailable оборачивает любую ошибку хранилища строк
	ErrStoreUnavailable = errors.New("хранилище недоступно")
	// ErrInvalidHabitID номер привычки вне диапазона 1..5
	ErrInvalidHabitID = errors.New("неверный номер привычки")
)

// WeekStore хранилище недельных строк.
// Конкурентные записи одной и той же строки не координируются: побеждает последняя.
type WeekStore interface {
	// GetWeek возвращает строку недели или ErrNotFound
	GetWeek(ctx context.Context, userID int64, anchor time.Time) (WeekRow, error)
	// UpsertWeek создаёт или перезаписывает строку (userID, Anchor)
	UpsertWeek(ctx context.Context, row WeekRow) error
	// RecentWeeks возвращает строки с Anchor < before по убыванию даты, не больше limit
	RecentWeeks(ctx context.Context, userID int64, before time.Time, limit int) ([]WeekRow, error)
	// Users возвращает всех пользователей, у которых есть хотя бы одна строка
	Users(ctx context.Context) ([]int64, error)
}

// DayStore хранилище дневных записей (потребление и языки)
type DayStore interface {
	GetDay(ctx context.Context, userID int64, date time.Time) (DayLog, error)
	UpsertDay(ctx context.Context, log DayLog) error
	// DaysBetween возвращает записи с from <= Date < to по возрастанию даты
	DaysBetween(ctx context.Context, userID int64, from, to time.Time) ([]DayLog, error)
}

// Store полное хранилище бота
type Store interface {
	WeekStore
	DayStore
}

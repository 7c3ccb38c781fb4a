package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Драйверы SQL хранилища
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	// modernc.org/sqlite регистрируется как "sqlite", sqlx знает только "sqlite3"
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Repository содержит все репозитории и реализует habits.Store
type Repository struct {
	db   *sqlx.DB
	Week *WeekRepository
	Day  *DayRepository
}

// New создаёт новый экземпляр Repository; loc — зона, в которой разбираются даты
func New(db *sqlx.DB, loc *time.Location) *Repository {
	if loc == nil {
		loc = time.UTC
	}
	return &Repository{
		db:   db,
		Week: NewWeekRepository(db, loc),
		Day:  NewDayRepository(db, loc),
	}
}

// Open открывает базу и проверяет соединение
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("неподдерживаемый драйвер %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы: %w", err)
	}
	if driver == DriverSQLite {
		// одна запись за раз; для ":memory:" ещё и одна общая база
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("база недоступна: %w", err)
	}
	return db, nil
}

// Close закрывает соединение с базой
func (r *Repository) Close() error {
	return r.db.Close()
}

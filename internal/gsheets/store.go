package gsheets

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"habitbot/internal/habits"
)

// Store хранилище недельных и дневных строк в Google таблице.
// Строка ищется по паре (User ID, Week Start) или (User ID, Date);
// если её нет, она добавляется в конец листа.
type Store struct {
	values valuesAPI
	loc    *time.Location
	// mu сериализует поиск строки и запись внутри процесса,
	// чтобы два обновления одной недели не добавили две строки
	mu sync.Mutex
}

var _ habits.Store = (*Store)(nil)

// NewStore создаёт хранилище поверх значений таблицы
func NewStore(values valuesAPI, loc *time.Location) *Store {
	if loc == nil {
		loc = time.UTC
	}
	return &Store{values: values, loc: loc}
}

func (s *Store) readWeeks(ctx context.Context) ([]habits.WeekRow, error) {
	raw, err := s.values.Get(ctx, activityLayout.dataRange())
	if err != nil {
		return nil, fmt.Errorf("чтение листа %s: %w", ActivitySheet, err)
	}
	rows := make([]habits.WeekRow, len(raw))
	for i, cells := range raw {
		if cellString(cells, 0) == "" {
			continue
		}
		row, err := weekFromCells(cells, s.loc)
		if err != nil {
			// повреждённая строка не ломает остальные
			log.WithError(err).WithField("row", i+2).Warn("Пропущена строка листа Activity")
			continue
		}
		rows[i] = row
	}
	return rows, nil
}

func (s *Store) readDays(ctx context.Context) ([]habits.DayLog, error) {
	raw, err := s.values.Get(ctx, dailyLayout.dataRange())
	if err != nil {
		return nil, fmt.Errorf("чтение листа %s: %w", DailySheet, err)
	}
	logs := make([]habits.DayLog, len(raw))
	for i, cells := range raw {
		if cellString(cells, 0) == "" {
			continue
		}
		entry, err := dayFromCells(cells, s.loc)
		if err != nil {
			log.WithError(err).WithField("row", i+2).Warn("Пропущена строка листа Daily")
			continue
		}
		logs[i] = entry
	}
	return logs, nil
}

func sameDate(a, b time.Time) bool {
	return formatDate(a) == formatDate(b)
}

func (s *Store) GetWeek(ctx context.Context, userID int64, anchor time.Time) (habits.WeekRow, error) {
	rows, err := s.readWeeks(ctx)
	if err != nil {
		return habits.WeekRow{}, err
	}
	for _, row := range rows {
		if row.UserID == userID && sameDate(row.Anchor, anchor) {
			return row, nil
		}
	}
	return habits.WeekRow{}, habits.ErrNotFound
}

func (s *Store) UpsertWeek(ctx context.Context, row habits.WeekRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readWeeks(ctx)
	if err != nil {
		return err
	}
	cells := [][]interface{}{weekToCells(row)}
	for i, existing := range rows {
		if existing.UserID == row.UserID && sameDate(existing.Anchor, row.Anchor) {
			return s.values.Update(ctx, activityLayout.rowRange(i+2), cells)
		}
	}
	return s.values.Append(ctx, ActivitySheet+"!A1", cells)
}

func (s *Store) RecentWeeks(ctx context.Context, userID int64, before time.Time, limit int) ([]habits.WeekRow, error) {
	rows, err := s.readWeeks(ctx)
	if err != nil {
		return nil, err
	}
	var result []habits.WeekRow
	for _, row := range rows {
		if row.UserID == userID && row.Anchor.Before(before) {
			result = append(result, row)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Anchor.After(result[j].Anchor) })
	if limit >= 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) Users(ctx context.Context) ([]int64, error) {
	rows, err := s.readWeeks(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]bool)
	var users []int64
	for _, row := range rows {
		if row.UserID == 0 || seen[row.UserID] {
			continue
		}
		seen[row.UserID] = true
		users = append(users, row.UserID)
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users, nil
}

func (s *Store) GetDay(ctx context.Context, userID int64, date time.Time) (habits.DayLog, error) {
	logs, err := s.readDays(ctx)
	if err != nil {
		return habits.DayLog{}, err
	}
	for _, entry := range logs {
		if entry.UserID == userID && sameDate(entry.Date, date) {
			return entry, nil
		}
	}
	return habits.DayLog{}, habits.ErrNotFound
}

func (s *Store) UpsertDay(ctx context.Context, entry habits.DayLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logs, err := s.readDays(ctx)
	if err != nil {
		return err
	}
	cells := [][]interface{}{dayToCells(entry, s.loc)}
	for i, existing := range logs {
		if existing.UserID == entry.UserID && sameDate(existing.Date, entry.Date) {
			return s.values.Update(ctx, dailyLayout.rowRange(i+2), cells)
		}
	}
	return s.values.Append(ctx, DailySheet+"!A1", cells)
}

func (s *Store) DaysBetween(ctx context.Context, userID int64, from, to time.Time) ([]habits.DayLog, error) {
	logs, err := s.readDays(ctx)
	if err != nil {
		return nil, err
	}
	var result []habits.DayLog
	for _, entry := range logs {
		if entry.UserID == userID && !entry.Date.Before(from) && entry.Date.Before(to) {
			result = append(result, entry)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

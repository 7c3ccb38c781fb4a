package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"habitbot/internal/habits"
)

type memKey struct {
	userID int64
	date   string
}

// MemoryStore хранилище в памяти для локального запуска (STORE_BACKEND=memory)
type MemoryStore struct {
	mu    sync.RWMutex
	weeks map[memKey]habits.WeekRow
	days  map[memKey]habits.DayLog
}

var _ habits.Store = (*MemoryStore)(nil)

// NewMemoryStore создаёт пустое хранилище
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		weeks: make(map[memKey]habits.WeekRow),
		days:  make(map[memKey]habits.DayLog),
	}
}

func (m *MemoryStore) GetWeek(_ context.Context, userID int64, anchor time.Time) (habits.WeekRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.weeks[memKey{userID, anchor.Format(habits.DateLayout)}]
	if !ok {
		return habits.WeekRow{}, habits.ErrNotFound
	}
	return row, nil
}

func (m *MemoryStore) UpsertWeek(_ context.Context, row habits.WeekRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.weeks[memKey{row.UserID, row.Anchor.Format(habits.DateLayout)}] = row
	return nil
}

func (m *MemoryStore) RecentWeeks(_ context.Context, userID int64, before time.Time, limit int) ([]habits.WeekRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var rows []habits.WeekRow
	for key, row := range m.weeks {
		if key.userID == userID && row.Anchor.Before(before) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Anchor.After(rows[j].Anchor) })
	if limit >= 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (m *MemoryStore) Users(context.Context) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[int64]bool)
	var users []int64
	for key := range m.weeks {
		if !seen[key.userID] {
			seen[key.userID] = true
			users = append(users, key.userID)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users, nil
}

func (m *MemoryStore) GetDay(_ context.Context, userID int64, date time.Time) (habits.DayLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	log, ok := m.days[memKey{userID, date.Format(habits.DateLayout)}]
	if !ok {
		return habits.DayLog{}, habits.ErrNotFound
	}
	return log, nil
}

func (m *MemoryStore) UpsertDay(_ context.Context, log habits.DayLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.days[memKey{log.UserID, log.Date.Format(habits.DateLayout)}] = log
	return nil
}

func (m *MemoryStore) DaysBetween(_ context.Context, userID int64, from, to time.Time) ([]habits.DayLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var logs []habits.DayLog
	for key, log := range m.days {
		if key.userID == userID && !log.Date.Before(from) && log.Date.Before(to) {
			logs = append(logs, log)
		}
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].Date.Before(logs[j].Date) })
	return logs, nil
}

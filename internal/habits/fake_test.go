package habits

import (
	"context"
	"sort"
	"time"
)

type weekKey struct {
	user   int64
	anchor string
}

// fakeStore хранилище в памяти со счётчиками вызовов
type fakeStore struct {
	weeks   map[weekKey]WeekRow
	days    map[weekKey]DayLog
	upserts int
	getErr  error
	putErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		weeks: make(map[weekKey]WeekRow),
		days:  make(map[weekKey]DayLog),
	}
}

func (f *fakeStore) GetWeek(_ context.Context, userID int64, anchor time.Time) (WeekRow, error) {
	if f.getErr != nil {
		return WeekRow{}, f.getErr
	}
	row, ok := f.weeks[weekKey{userID, anchor.Format(DateLayout)}]
	if !ok {
		return WeekRow{}, ErrNotFound
	}
	return row, nil
}

func (f *fakeStore) UpsertWeek(_ context.Context, row WeekRow) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.upserts++
	f.weeks[weekKey{row.UserID, row.Anchor.Format(DateLayout)}] = row
	return nil
}

func (f *fakeStore) RecentWeeks(_ context.Context, userID int64, before time.Time, limit int) ([]WeekRow, error) {
	var rows []WeekRow
	for k, row := range f.weeks {
		if k.user == userID && row.Anchor.Before(before) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Anchor.After(rows[j].Anchor) })
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (f *fakeStore) Users(context.Context) ([]int64, error) {
	seen := map[int64]bool{}
	var users []int64
	for k := range f.weeks {
		if !seen[k.user] {
			seen[k.user] = true
			users = append(users, k.user)
		}
	}
	return users, nil
}

func (f *fakeStore) GetDay(_ context.Context, userID int64, date time.Time) (DayLog, error) {
	if f.getErr != nil {
		return DayLog{}, f.getErr
	}
	log, ok := f.days[weekKey{userID, date.Format(DateLayout)}]
	if !ok {
		return DayLog{}, ErrNotFound
	}
	return log, nil
}

func (f *fakeStore) UpsertDay(_ context.Context, log DayLog) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.upserts++
	f.days[weekKey{log.UserID, log.Date.Format(DateLayout)}] = log
	return nil
}

func (f *fakeStore) DaysBetween(_ context.Context, userID int64, from, to time.Time) ([]DayLog, error) {
	var logs []DayLog
	for k, log := range f.days {
		if k.user == userID && !log.Date.Before(from) && log.Date.Before(to) {
			logs = append(logs, log)
		}
	}
	sort.Slice(logs, func(i, j int) bool { return logs[i].Date.Before(logs[j].Date) })
	return logs, nil
}

package habits

import (
	"context"
	"errors"
	"testing"
	"time"
)

var moscow = time.FixedZone("MSK", 3*60*60)

// 2026-10-19 — понедельник
func date(day int) time.Time {
	return time.Date(2026, time.October, day, 9, 30, 0, 0, moscow)
}

func TestWeekAnchor(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"monday", date(19), "2026-10-19"},
		{"wednesday", date(21), "2026-10-19"},
		{"sunday", date(25), "2026-10-19"},
		{"next monday", date(26), "2026-10-26"},
		{"late sunday utc is monday in moscow", time.Date(2026, time.October, 25, 22, 0, 0, 0, time.UTC), "2026-10-26"},
		{"year boundary", time.Date(2027, time.January, 1, 12, 0, 0, 0, moscow), "2026-12-28"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeekAnchor(tt.in, moscow)
			if got.Format(DateLayout) != tt.want {
				t.Errorf("WeekAnchor(%v) = %s, want %s", tt.in, got.Format(DateLayout), tt.want)
			}
			if got.Weekday() != time.Monday || got.Hour() != 0 {
				t.Errorf("WeekAnchor(%v) = %v, want Monday midnight", tt.in, got)
			}
		})
	}
}

func TestDaySet(t *testing.T) {
	var d DaySet
	d = d.With(date(19)).With(date(21)).With(date(21))
	if d.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", d.Len())
	}
	if d.String() != "Mon Wed" {
		t.Errorf("String() = %q, want %q", d.String(), "Mon Wed")
	}
	if !d.Has(date(21)) || d.Has(date(20)) {
		t.Errorf("Has() mismatch for %q", d.String())
	}

	parsed, err := ParseDaySet("mon, Wed")
	if err != nil {
		t.Fatalf("ParseDaySet() error = %v", err)
	}
	if parsed != d {
		t.Errorf("ParseDaySet() = %q, want %q", parsed.String(), d.String())
	}
	if _, err := ParseDaySet("Mon Funday"); err == nil {
		t.Error("ParseDaySet() expected error for unknown day")
	}
	if empty, err := ParseDaySet(""); err != nil || empty != 0 {
		t.Errorf("ParseDaySet(\"\") = %v, %v", empty, err)
	}
}

func TestRecord_InvalidHabitID(t *testing.T) {
	for _, id := range []int{-1, 0, 6, 42} {
		store := newFakeStore()
		ledger := NewLedger(store, moscow)

		outcome, err := ledger.Record(context.Background(), 1, id, date(19))
		if outcome != InvalidHabitID {
			t.Errorf("Record(%d) outcome = %v, want %v", id, outcome, InvalidHabitID)
		}
		if !errors.Is(err, ErrInvalidHabitID) {
			t.Errorf("Record(%d) error = %v, want ErrInvalidHabitID", id, err)
		}
		if store.upserts != 0 || len(store.weeks) != 0 {
			t.Errorf("Record(%d) mutated store: upserts=%d rows=%d", id, store.upserts, len(store.weeks))
		}
	}
}

func TestRecord_SameDayDuplicate(t *testing.T) {
	store := newFakeStore()
	ledger := NewLedger(store, moscow)
	ctx := context.Background()

	first, err := ledger.Record(ctx, 7, 2, date(19))
	if err != nil || first != Recorded {
		t.Fatalf("first Record() = %v, %v", first, err)
	}
	second, err := ledger.Record(ctx, 7, 2, date(19).Add(8*time.Hour))
	if err != nil || second != DuplicateIgnored {
		t.Fatalf("second Record() = %v, %v, want DuplicateIgnored", second, err)
	}
	if store.upserts != 1 {
		t.Errorf("upserts = %d, want 1", store.upserts)
	}
}

func TestRecord_LaterDaySameWeek(t *testing.T) {
	store := newFakeStore()
	ledger := NewLedger(store, moscow)
	ctx := context.Background()

	for _, day := range []int{19, 21} {
		outcome, err := ledger.Record(ctx, 7, 1, date(day))
		if err != nil || outcome != Recorded {
			t.Fatalf("Record(day %d) = %v, %v, want Recorded", day, outcome, err)
		}
	}

	row, found, err := ledger.Week(ctx, 7, date(19))
	if err != nil || !found {
		t.Fatalf("Week() = %v, %v", found, err)
	}
	if !row.Done(1) {
		t.Error("habit 1 flag not set")
	}
	if got := row.LastActivity.Format(DateLayout); got != "2026-10-21" {
		t.Errorf("LastActivity = %s, want 2026-10-21", got)
	}
	if len(store.weeks) != 1 {
		t.Errorf("rows = %d, want one row per week", len(store.weeks))
	}
	if store.upserts != 2 {
		t.Errorf("upserts = %d, want 2", store.upserts)
	}
}

func TestRecord_LastActivityNeverMovesBack(t *testing.T) {
	store := newFakeStore()
	ledger := NewLedger(store, moscow)
	ctx := context.Background()

	ledger.Record(ctx, 7, 1, date(23))
	ledger.Record(ctx, 7, 2, date(20))

	row, _, _ := ledger.Week(ctx, 7, date(19))
	if got := row.LastActivity.Format(DateLayout); got != "2026-10-23" {
		t.Errorf("LastActivity = %s, want 2026-10-23", got)
	}
}

func TestRecord_StoreUnavailable(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("quota exceeded")
	ledger := NewLedger(store, moscow)

	outcome, err := ledger.Record(context.Background(), 7, 1, date(19))
	if outcome != Failed {
		t.Errorf("outcome = %v, want Failed", outcome)
	}
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("error = %v, want ErrStoreUnavailable", err)
	}

	store.getErr = nil
	store.putErr = errors.New("write failed")
	if _, err := ledger.Record(context.Background(), 7, 1, date(19)); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("upsert error = %v, want ErrStoreUnavailable", err)
	}
}

func TestComputeStats_NoRow(t *testing.T) {
	ledger := NewLedger(newFakeStore(), moscow)

	stats, err := ledger.ComputeStats(context.Background(), 7, date(19))
	if err != nil {
		t.Fatalf("ComputeStats() error = %v", err)
	}
	if stats.HasRow {
		t.Error("HasRow = true for missing row")
	}
	for _, h := range stats.Habits {
		if h.Count != 0 {
			t.Errorf("habit %d count = %d, want 0", h.Habit.ID, h.Count)
		}
	}
	if stats.Score() != 0 {
		t.Errorf("Score() = %v, want 0", stats.Score())
	}
}

func TestComputeStats_PerDayCounts(t *testing.T) {
	store := newFakeStore()
	ledger := NewLedger(store, moscow)
	ctx := context.Background()

	// привычка 1 каждый день включая воскресенье — не больше 6 из 6
	for day := 19; day <= 25; day++ {
		ledger.Record(ctx, 7, 1, date(day))
	}
	// недельная привычка дважды — засчитывается один раз
	ledger.Record(ctx, 7, 4, date(20))
	ledger.Record(ctx, 7, 4, date(22))

	stats, err := ledger.ComputeStats(ctx, 7, date(19))
	if err != nil {
		t.Fatalf("ComputeStats() error = %v", err)
	}

	tests := []struct {
		id       int
		count    int
		possible int
	}{
		{1, 6, 6},
		{2, 0, 6},
		{4, 1, 1},
		{5, 0, 1},
	}
	for _, tt := range tests {
		h := stats.Habit(tt.id)
		if h.Count != tt.count || h.Possible != tt.possible {
			t.Errorf("habit %d = %d/%d, want %d/%d", tt.id, h.Count, h.Possible, tt.count, tt.possible)
		}
	}
	if stats.Score() != 2 {
		t.Errorf("Score() = %v, want 2", stats.Score())
	}
}

func statsWith(counts ...int) WeeklyStats {
	row := WeekRow{}
	days := []time.Time{date(19), date(20), date(21), date(22), date(23), date(24)}
	for i, c := range counts {
		for d := 0; d < c; d++ {
			row.Days[i] = row.Days[i].With(days[d])
		}
	}
	return StatsFromRow(row, true)
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name    string
		current WeeklyStats
		history []WeeklyStats
		want    Trend
	}{
		{"no history", statsWith(3), nil, NoHistory},
		{"improved", statsWith(3, 1), []WeeklyStats{statsWith(3)}, Improved},
		{"declined", statsWith(1), []WeeklyStats{statsWith(2, 2)}, Declined},
		{"same", statsWith(0, 0, 0, 1), []WeeklyStats{statsWith(6)}, Same},
		{"same with sixths", statsWith(1, 1, 1), []WeeklyStats{statsWith(3)}, Same},
		{"only most recent week counts", statsWith(2), []WeeklyStats{statsWith(1), statsWith(6, 6)}, Improved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.current, tt.history); got != tt.want {
				t.Errorf("Compare() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrendNeedsGoal(t *testing.T) {
	tests := []struct {
		trend Trend
		want  bool
	}{
		{NoHistory, false},
		{Improved, false},
		{Declined, true},
		{Same, true},
	}
	for _, tt := range tests {
		if got := tt.trend.NeedsGoal(); got != tt.want {
			t.Errorf("%v.NeedsGoal() = %v, want %v", tt.trend, got, tt.want)
		}
	}
}

func TestHistoryAndGoals(t *testing.T) {
	store := newFakeStore()
	ledger := NewLedger(store, moscow)
	ctx := context.Background()

	// четыре прошлые недели и текущая
	for week := 0; week < 5; week++ {
		ledger.Record(ctx, 7, 1, date(19).AddDate(0, 0, -7*week))
	}

	history, err := ledger.History(ctx, 7, date(21), HistoryWeeks)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != HistoryWeeks {
		t.Fatalf("History() len = %d, want %d", len(history), HistoryWeeks)
	}
	if got := history[0].Anchor.Format(DateLayout); got != "2026-10-12" {
		t.Errorf("history[0] = %s, want 2026-10-12", got)
	}

	next := ledger.Anchor(date(21)).AddDate(0, 0, 7)
	if err := ledger.SetGoal(ctx, 7, next, "  Qi Gong before breakfast  "); err != nil {
		t.Fatalf("SetGoal() error = %v", err)
	}
	stats, err := ledger.ComputeStats(ctx, 7, next)
	if err != nil {
		t.Fatalf("ComputeStats() error = %v", err)
	}
	if stats.Goals != "Qi Gong before breakfast" || !stats.HasRow {
		t.Errorf("goal row = %+v", stats)
	}
	if err := ledger.SetGoal(ctx, 7, next, "   "); err == nil {
		t.Error("SetGoal() expected error for blank goal")
	}
}

func TestEndToEnd_FirstWeek(t *testing.T) {
	store := newFakeStore()
	ledger := NewLedger(store, moscow)
	ctx := context.Background()
	monday := date(19)

	for _, id := range []int{1, 2, 3} {
		if outcome, err := ledger.Record(ctx, 99, id, monday); err != nil || outcome != Recorded {
			t.Fatalf("Record(%d) = %v, %v", id, outcome, err)
		}
	}

	anchor := ledger.Anchor(monday)
	stats, err := ledger.ComputeStats(ctx, 99, anchor)
	if err != nil {
		t.Fatalf("ComputeStats() error = %v", err)
	}
	for _, id := range []int{1, 2, 3} {
		if !stats.Habit(id).Done() {
			t.Errorf("habit %d not complete", id)
		}
	}
	for _, id := range []int{4, 5} {
		if stats.Habit(id).Done() {
			t.Errorf("habit %d unexpectedly complete", id)
		}
	}

	history, err := ledger.History(ctx, 99, anchor, HistoryWeeks)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if trend := Compare(stats, history); trend != NoHistory {
		t.Errorf("Compare() = %v, want NoHistory", trend)
	}
}

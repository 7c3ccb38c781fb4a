package habits

import (
	"fmt"
	"time"
)

// HabitStat статистика одной привычки за неделю
type HabitStat struct {
	Habit    Habit
	Count    int
	Possible int
}

// Done выполнена ли привычка хотя бы раз
func (s HabitStat) Done() bool {
	return s.Count > 0
}

// Ratio доля выполнения 0..1
func (s HabitStat) Ratio() float64 {
	if s.Possible == 0 {
		return 0
	}
	return float64(s.Count) / float64(s.Possible)
}

// sixths доля выполнения в шестых: знаменатели 6 и 1 делят 6 без остатка
func (s HabitStat) sixths() int {
	if s.Possible == 0 {
		return 0
	}
	return s.Count * (DailyPossible / s.Possible)
}

// WeeklyStats производная статистика недели, не хранится
type WeeklyStats struct {
	UserID int64
	Anchor time.Time
	HasRow bool
	Habits [HabitCount]HabitStat
	Goals  string
}

// StatsFromRow считает статистику по строке недели
func StatsFromRow(row WeekRow, found bool) WeeklyStats {
	stats := WeeklyStats{
		UserID: row.UserID,
		Anchor: row.Anchor,
		HasRow: found,
		Goals:  row.Goals,
	}
	for i, h := range catalog {
		count := row.Days[i].Len()
		if count > h.Possible() {
			count = h.Possible()
		}
		stats.Habits[i] = HabitStat{Habit: h, Count: count, Possible: h.Possible()}
	}
	return stats
}

// Habit возвращает статистику привычки по идентификатору 1..5
func (s WeeklyStats) Habit(id int) HabitStat {
	if id < 1 || id > HabitCount {
		return HabitStat{}
	}
	return s.Habits[id-1]
}

// Score суммарная доля выполнения, от 0 до HabitCount
func (s WeeklyStats) Score() float64 {
	return float64(s.scoreSixths()) / DailyPossible
}

func (s WeeklyStats) scoreSixths() int {
	total := 0
	for _, h := range s.Habits {
		total += h.sixths()
	}
	return total
}

// Trend сравнение текущей недели с предыдущей
type Trend int

const (
	NoHistory Trend = iota
	Improved
	Declined
	Same
)

func (t Trend) String() string {
	switch t {
	case NoHistory:
		return "no_history"
	case Improved:
		return "improved"
	case Declined:
		return "declined"
	case Same:
		return "same"
	default:
		return fmt.Sprintf("trend(%d)", int(t))
	}
}

// NeedsGoal — при спаде или застое пользователя просят сформулировать цель
func (t Trend) NeedsGoal() bool {
	return t == Declined || t == Same
}

// Compare сравнивает текущую неделю с самой свежей из history
// (history упорядочена от новых к старым и содержит только существующие строки).
func Compare(current WeeklyStats, history []WeeklyStats) Trend {
	if len(history) == 0 {
		return NoHistory
	}
	cur, prev := current.scoreSixths(), history[0].scoreSixths()
	switch {
	case cur > prev:
		return Improved
	case cur < prev:
		return Declined
	default:
		return Same
	}
}

package habits

import (
	"fmt"
	"math/bits"
	"strings"
	"time"
)

// DateLayout формат дат в хранилищах (колонки Week Start, Last Activity, Date)
const DateLayout = "2006-01-02"

// WeekAnchor возвращает понедельник недели (00:00 в зоне loc), в которую попадает t
func WeekAnchor(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	offset := weekdayIndex(t)
	return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, loc)
}

// Day обрезает время до полуночи в зоне loc
func Day(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ParseDate разбирает дату в формате DateLayout в зоне loc
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
}

// weekdayIndex: понедельник = 0, воскресенье = 6
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

var dayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// DaySet битовая маска дней недели, в которые привычка выполнена.
// Бит 0 — понедельник, бит 6 — воскресенье.
type DaySet uint8

// With возвращает набор с добавленным днём t
func (d DaySet) With(t time.Time) DaySet {
	return d | 1<<weekdayIndex(t)
}

// Has проверяет, отмечен ли день t
func (d DaySet) Has(t time.Time) bool {
	return d&(1<<weekdayIndex(t)) != 0
}

// Len количество отмеченных дней
func (d DaySet) Len() int {
	return bits.OnesCount8(uint8(d))
}

func (d DaySet) String() string {
	var names []string
	for i, name := range dayNames {
		if d&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return strings.Join(names, " ")
}

// ParseDaySet разбирает значение ячейки вида "Mon Wed Sat"
func ParseDaySet(s string) (DaySet, error) {
	var d DaySet
	for _, token := range strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' }) {
		idx := -1
		for i, name := range dayNames {
			if strings.EqualFold(token, name) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return 0, fmt.Errorf("неизвестный день недели %q", token)
		}
		d |= 1 << idx
	}
	return d, nil
}

// WeekRow — строка недели пользователя: одна на пару (пользователь, понедельник)
type WeekRow struct {
	UserID       int64
	Anchor       time.Time
	LastActivity time.Time // нулевое значение — активности ещё не было
	Days         [HabitCount]DaySet
	Goals        string
}

// NewWeekRow создаёт пустую строку недели
func NewWeekRow(userID int64, anchor time.Time) WeekRow {
	return WeekRow{UserID: userID, Anchor: anchor}
}

// Done возвращает флаг выполнения привычки за неделю
func (r WeekRow) Done(habitID int) bool {
	if habitID < 1 || habitID > HabitCount {
		return false
	}
	return r.Days[habitID-1] != 0
}

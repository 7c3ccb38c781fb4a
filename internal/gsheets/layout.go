package gsheets

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"habitbot/internal/habits"
)

// Названия листов таблицы трекера
const (
	ActivitySheet = "Activity"
	DailySheet    = "Daily"
)

// languageMark значение ячейки отмеченной языковой практики
const languageMark = "✓"

type sheetLayout struct {
	title   string
	headers []string
}

var activityLayout = sheetLayout{
	title: ActivitySheet,
	headers: []string{
		"User ID", "Week Start", "Last Activity",
		"Prayer", "Qi Gong", "Ball", "Run/Stretch", "Strength/Stretch",
		"Goals",
	},
}

var dailyLayout = sheetLayout{
	title: DailySheet,
	headers: []string{
		"User ID", "Date", "Week Start",
		"Coffee (x)", "Coffee Cost",
		"Sugary (y)", "Sugary Cost",
		"Flour (z)", "Flour Cost",
		"Chinese (ch)", "Hebrew (he)", "Tatar (ta)",
	},
}

func (l sheetLayout) headerRow() []interface{} {
	row := make([]interface{}, len(l.headers))
	for i, h := range l.headers {
		row[i] = h
	}
	return row
}

// dataRange диапазон строк данных без заголовка
func (l sheetLayout) dataRange() string {
	return fmt.Sprintf("%s!A2:%s", l.title, columnLetter(len(l.headers)))
}

// rowRange диапазон одной строки листа (номер с 1)
func (l sheetLayout) rowRange(row int) string {
	return fmt.Sprintf("%s!A%d:%s%d", l.title, row, columnLetter(len(l.headers)), row)
}

func (l sheetLayout) checkHeader(cells []interface{}) error {
	for i, want := range l.headers {
		if i >= len(cells) || strings.TrimSpace(cellString(cells, i)) != want {
			return fmt.Errorf("лист %s: колонка %d должна называться %q", l.title, i+1, want)
		}
	}
	return nil
}

// columnLetter номер колонки (с 1) в букву; листы трекера уже 26 колонок
func columnLetter(n int) string {
	return string(rune('A' + n - 1))
}

func cellString(cells []interface{}, i int) string {
	if i >= len(cells) || cells[i] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(cells[i]))
}

func cellInt(cells []interface{}, i int) (int, error) {
	s := cellString(cells, i)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func cellUserID(cells []interface{}) (int64, error) {
	return strconv.ParseInt(cellString(cells, 0), 10, 64)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(habits.DateLayout)
}

func weekToCells(row habits.WeekRow) []interface{} {
	cells := []interface{}{
		strconv.FormatInt(row.UserID, 10),
		formatDate(row.Anchor),
		formatDate(row.LastActivity),
	}
	for _, days := range row.Days {
		cells = append(cells, days.String())
	}
	return append(cells, row.Goals)
}

func weekFromCells(cells []interface{}, loc *time.Location) (habits.WeekRow, error) {
	userID, err := cellUserID(cells)
	if err != nil {
		return habits.WeekRow{}, fmt.Errorf("user id: %w", err)
	}
	anchor, err := habits.ParseDate(cellString(cells, 1), loc)
	if err != nil {
		return habits.WeekRow{}, fmt.Errorf("week start: %w", err)
	}
	row := habits.NewWeekRow(userID, anchor)
	if s := cellString(cells, 2); s != "" {
		if row.LastActivity, err = habits.ParseDate(s, loc); err != nil {
			return habits.WeekRow{}, fmt.Errorf("last activity: %w", err)
		}
	}
	for i := range row.Days {
		if row.Days[i], err = habits.ParseDaySet(cellString(cells, 3+i)); err != nil {
			return habits.WeekRow{}, fmt.Errorf("привычка %d: %w", i+1, err)
		}
	}
	row.Goals = cellString(cells, 3+habits.HabitCount)
	return row, nil
}

func dayToCells(log habits.DayLog, loc *time.Location) []interface{} {
	cells := []interface{}{
		strconv.FormatInt(log.UserID, 10),
		formatDate(log.Date),
		formatDate(habits.WeekAnchor(log.Date, loc)),
	}
	for _, c := range log.Consumption {
		cells = append(cells, c.Count, c.Cost)
	}
	for _, done := range log.Language {
		mark := ""
		if done {
			mark = languageMark
		}
		cells = append(cells, mark)
	}
	return cells
}

func dayFromCells(cells []interface{}, loc *time.Location) (habits.DayLog, error) {
	userID, err := cellUserID(cells)
	if err != nil {
		return habits.DayLog{}, fmt.Errorf("user id: %w", err)
	}
	date, err := habits.ParseDate(cellString(cells, 1), loc)
	if err != nil {
		return habits.DayLog{}, fmt.Errorf("date: %w", err)
	}
	log := habits.DayLog{UserID: userID, Date: date}
	col := 3
	for i := range log.Consumption {
		if log.Consumption[i].Count, err = cellInt(cells, col); err != nil {
			return habits.DayLog{}, fmt.Errorf("колонка %d: %w", col+1, err)
		}
		if log.Consumption[i].Cost, err = cellInt(cells, col+1); err != nil {
			return habits.DayLog{}, fmt.Errorf("колонка %d: %w", col+2, err)
		}
		col += 2
	}
	for i := range log.Language {
		log.Language[i] = cellString(cells, col) != ""
		col++
	}
	return log, nil
}

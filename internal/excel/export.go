package excel

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"habitbot/internal/habits"
)

// Листы выгрузки
const (
	WeeksSheet = "Weeks"
	DaysSheet  = "Daily"
)

// ExportWeeks сколько недель попадает в выгрузку /export
const ExportWeeks = 12

// Workbook строит книгу с неделями и дневными записями пользователя.
// rows — строки недель (любой порядок), days — дневные записи.
func Workbook(rows []habits.WeekRow, days []habits.DayLog) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", WeeksSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(DaysSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#2E75B6"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	doneStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#C6EFCE"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	// Лист недель: дата, привычки X/N, счёт, цель
	weekHeaders := []string{"Week Start"}
	for _, h := range habits.Catalog() {
		weekHeaders = append(weekHeaders, fmt.Sprintf("%d. %s", h.ID, h.Name))
	}
	weekHeaders = append(weekHeaders, "Score", "Goals")
	if err := writeHeader(f, WeeksSheet, weekHeaders, headerStyle); err != nil {
		return nil, err
	}
	f.SetColWidth(WeeksSheet, "A", "A", 12)
	f.SetColWidth(WeeksSheet, "B", "F", 16)
	f.SetColWidth(WeeksSheet, "H", "H", 40)

	for i, row := range sortedRows(rows) {
		r := i + 2
		stats := habits.StatsFromRow(row, true)
		values := []interface{}{row.Anchor.Format(habits.DateLayout)}
		for _, h := range stats.Habits {
			values = append(values, fmt.Sprintf("%d/%d", h.Count, h.Possible))
		}
		values = append(values, stats.Score(), row.Goals)

		cell, _ := excelize.CoordinatesToCellName(1, r)
		if err := f.SetSheetRow(WeeksSheet, cell, &values); err != nil {
			return nil, err
		}
		for j, h := range stats.Habits {
			if h.Done() {
				cell, _ := excelize.CoordinatesToCellName(j+2, r)
				f.SetCellStyle(WeeksSheet, cell, cell, doneStyle)
			}
		}
	}

	// Лист дней: потребление и языки
	dayHeaders := []string{"Date"}
	for _, kind := range habits.ConsumptionKinds() {
		dayHeaders = append(dayHeaders, fmt.Sprintf("%s (%s)", kind, kind.Code()), kind.String()+" Cost")
	}
	for _, kind := range habits.LanguageKinds() {
		dayHeaders = append(dayHeaders, fmt.Sprintf("%s (%s)", kind, kind.Code()))
	}
	if err := writeHeader(f, DaysSheet, dayHeaders, headerStyle); err != nil {
		return nil, err
	}
	f.SetColWidth(DaysSheet, "A", "A", 12)
	f.SetColWidth(DaysSheet, "B", "J", 14)

	for i, entry := range days {
		values := []interface{}{entry.Date.Format(habits.DateLayout)}
		for _, c := range entry.Consumption {
			values = append(values, c.Count, c.Cost)
		}
		for _, done := range entry.Language {
			mark := ""
			if done {
				mark = "✓"
			}
			values = append(values, mark)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(DaysSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// WorkbookBytes строит книгу и возвращает её содержимое .xlsx
func WorkbookBytes(rows []habits.WeekRow, days []habits.DayLog) ([]byte, error) {
	f, err := Workbook(rows, days)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("ошибка записи книги: %w", err)
	}
	return buf.Bytes(), nil
}

// Export книга пользователя за последние ExportWeeks недель до at включительно
func Export(ctx context.Context, ledger *habits.Ledger, tracker *habits.Tracker, userID int64, at time.Time) ([]byte, error) {
	rows, err := ledger.RecentRows(ctx, userID, at, ExportWeeks)
	if err != nil {
		return nil, err
	}
	to := ledger.Anchor(at).AddDate(0, 0, 7)
	from := to.AddDate(0, 0, -7*ExportWeeks)
	days, err := tracker.Days(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return WorkbookBytes(rows, days)
}

// FileName имя файла выгрузки
func FileName(userID int64, now time.Time) string {
	return fmt.Sprintf("habits_%d_%s.xlsx", userID, now.Format("20060102"))
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	return f.SetCellStyle(sheet, "A1", last, style)
}

// sortedRows от старых недель к новым
func sortedRows(rows []habits.WeekRow) []habits.WeekRow {
	out := make([]habits.WeekRow, len(rows))
	copy(out, rows)
	sort.Slice(out, func(i, j int) bool { return out[i].Anchor.Before(out[j].Anchor) })
	return out
}

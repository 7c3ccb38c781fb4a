package habits

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ConsumptionKind вид потребления: кофе, сладкое, мучное
type ConsumptionKind int

const (
	Coffee ConsumptionKind = iota
	Sugary
	Flour
	consumptionKinds
)

var consumptionCodes = [consumptionKinds]byte{'x', 'y', 'z'}

var consumptionNames = [consumptionKinds]string{"Coffee", "Sugary food", "Flour-based food"}

func (k ConsumptionKind) String() string {
	if k < 0 || k >= consumptionKinds {
		return fmt.Sprintf("consumption(%d)", int(k))
	}
	return consumptionNames[k]
}

// Code буква, которой отмечается потребление
func (k ConsumptionKind) Code() string {
	return string(consumptionCodes[k])
}

// LanguageKind язык для ежедневной практики
type LanguageKind int

const (
	Chinese LanguageKind = iota
	Hebrew
	Tatar
	languageKinds
)

var languageCodes = [languageKinds]string{"ch", "he", "ta"}

var languageNames = [languageKinds]string{"Chinese activation", "Hebrew cards", "Tatar cards"}

func (k LanguageKind) String() string {
	if k < 0 || k >= languageKinds {
		return fmt.Sprintf("language(%d)", int(k))
	}
	return languageNames[k]
}

// Code двухбуквенный код языка
func (k LanguageKind) Code() string {
	return languageCodes[k]
}

// ConsumptionKinds все виды потребления по порядку колонок
func ConsumptionKinds() []ConsumptionKind {
	return []ConsumptionKind{Coffee, Sugary, Flour}
}

// LanguageKinds все языки по порядку колонок
func LanguageKinds() []LanguageKind {
	return []LanguageKind{Chinese, Hebrew, Tatar}
}

// Consumption дозы и стоимость за день
type Consumption struct {
	Count int
	Cost  int
}

// DayLog дневная запись пользователя: потребление и языковая практика
type DayLog struct {
	UserID      int64
	Date        time.Time
	Consumption [consumptionKinds]Consumption
	Language    [languageKinds]bool
}

// ConsumptionEntry разобранное сообщение о потреблении
type ConsumptionEntry struct {
	Kind  ConsumptionKind
	Count int
	Cost  int
}

var consumptionPattern = regexp.MustCompile(`^([xyz]+)(?:\s+(\d+))?$`)

// ParseConsumption разбирает ввод вида "x", "xxx", "xx 150", "y 75".
// Вид определяется первой из букв x, y, z, присутствующей в вводе.
func ParseConsumption(text string) (ConsumptionEntry, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	matches := consumptionPattern.FindStringSubmatch(text)
	if matches == nil {
		return ConsumptionEntry{}, false
	}
	letters := matches[1]

	entry := ConsumptionEntry{}
	found := false
	for i, code := range consumptionCodes {
		if strings.IndexByte(letters, code) >= 0 {
			entry.Kind = ConsumptionKind(i)
			entry.Count = strings.Count(letters, string(code))
			found = true
			break
		}
	}
	if !found {
		return ConsumptionEntry{}, false
	}
	if matches[2] != "" {
		cost, err := strconv.Atoi(matches[2])
		if err != nil {
			return ConsumptionEntry{}, false
		}
		entry.Cost = cost
	}
	return entry, true
}

// ParseLanguage разбирает код языка ch, he или ta
func ParseLanguage(text string) (LanguageKind, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	for i, code := range languageCodes {
		if text == code {
			return LanguageKind(i), true
		}
	}
	return 0, false
}

// WeekSummary суммы потребления и дни языковой практики за неделю
type WeekSummary struct {
	Anchor       time.Time
	Consumption  [consumptionKinds]Consumption
	LanguageDays [languageKinds]int
}

// Tracker дневной учёт потребления и языков
type Tracker struct {
	store DayStore
	loc   *time.Location
}

// NewTracker создаёт трекер дневных записей
func NewTracker(store DayStore, loc *time.Location) *Tracker {
	if loc == nil {
		loc = time.UTC
	}
	return &Tracker{store: store, loc: loc}
}

// RecordConsumption прибавляет дозы и стоимость к записи дня и возвращает итог дня
func (t *Tracker) RecordConsumption(ctx context.Context, userID int64, entry ConsumptionEntry, at time.Time) (DayLog, error) {
	if entry.Kind < 0 || entry.Kind >= consumptionKinds || entry.Count <= 0 {
		return DayLog{}, fmt.Errorf("неверная запись потребления: %+v", entry)
	}
	log, err := t.loadDay(ctx, userID, at)
	if err != nil {
		return DayLog{}, err
	}
	log.Consumption[entry.Kind].Count += entry.Count
	log.Consumption[entry.Kind].Cost += entry.Cost

	if err := t.store.UpsertDay(ctx, log); err != nil {
		return DayLog{}, fmt.Errorf("%w: запись дня: %w", ErrStoreUnavailable, err)
	}
	return log, nil
}

// RecordLanguage отмечает языковую практику; второй раз за день — DuplicateIgnored
func (t *Tracker) RecordLanguage(ctx context.Context, userID int64, kind LanguageKind, at time.Time) (Outcome, error) {
	if kind < 0 || kind >= languageKinds {
		return Failed, fmt.Errorf("неизвестный язык %d", kind)
	}
	log, err := t.loadDay(ctx, userID, at)
	if err != nil {
		return Failed, err
	}
	if log.Language[kind] {
		return DuplicateIgnored, nil
	}
	log.Language[kind] = true
	if err := t.store.UpsertDay(ctx, log); err != nil {
		return Failed, fmt.Errorf("%w: запись дня: %w", ErrStoreUnavailable, err)
	}
	return Recorded, nil
}

// Summary суммирует дневные записи недели anchor
func (t *Tracker) Summary(ctx context.Context, userID int64, anchor time.Time) (WeekSummary, error) {
	from := WeekAnchor(anchor, t.loc)
	to := from.AddDate(0, 0, 7)
	logs, err := t.store.DaysBetween(ctx, userID, from, to)
	if err != nil {
		return WeekSummary{}, fmt.Errorf("%w: дни недели: %w", ErrStoreUnavailable, err)
	}

	summary := WeekSummary{Anchor: from}
	for _, log := range logs {
		for i, c := range log.Consumption {
			summary.Consumption[i].Count += c.Count
			summary.Consumption[i].Cost += c.Cost
		}
		for i, done := range log.Language {
			if done {
				summary.LanguageDays[i]++
			}
		}
	}
	return summary, nil
}

// Days возвращает дневные записи from <= Date < to
func (t *Tracker) Days(ctx context.Context, userID int64, from, to time.Time) ([]DayLog, error) {
	logs, err := t.store.DaysBetween(ctx, userID, Day(from, t.loc), Day(to, t.loc))
	if err != nil {
		return nil, fmt.Errorf("%w: дни: %w", ErrStoreUnavailable, err)
	}
	return logs, nil
}

func (t *Tracker) loadDay(ctx context.Context, userID int64, at time.Time) (DayLog, error) {
	day := Day(at, t.loc)
	log, err := t.store.GetDay(ctx, userID, day)
	if errors.Is(err, ErrNotFound) {
		return DayLog{UserID: userID, Date: day}, nil
	}
	if err != nil {
		return DayLog{}, fmt.Errorf("%w: чтение дня: %w", ErrStoreUnavailable, err)
	}
	return log, nil
}

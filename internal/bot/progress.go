package bot

import (
	"fmt"
	"strings"

	"habitbot/internal/habits"
)

// makeProgressBar полоска из total клеток, count закрашено
func makeProgressBar(count, total int) string {
	if count < 0 {
		count = 0
	}
	if count > total {
		count = total
	}
	return strings.Repeat("█", count) + strings.Repeat("░", total-count)
}

func (b *Bot) helpText(userID int64) string {
	var sb strings.Builder
	sb.WriteString(b.t("help.habits", userID))
	sb.WriteString("\n")
	for _, h := range habits.Catalog() {
		kind := b.t("help.weekly", userID)
		if h.Kind == habits.Daily {
			kind = b.t("help.daily", userID)
		}
		fmt.Fprintf(&sb, "%d. %s (%s)\n", h.ID, h.Name, kind)
	}
	sb.WriteString("\n")
	sb.WriteString(b.t("help.consumption", userID))
	sb.WriteString("\n")
	sb.WriteString(b.t("help.language", userID))
	sb.WriteString("\n\n")
	sb.WriteString(b.t("help.commands", userID))
	return sb.String()
}

func (b *Bot) trendText(userID int64, trend habits.Trend) string {
	switch trend {
	case habits.Improved:
		return b.t("trend.improved", userID)
	case habits.Declined:
		return b.t("trend.declined", userID)
	case habits.Same:
		return b.t("trend.same", userID)
	default:
		return b.t("trend.no_history", userID)
	}
}

// renderWeek текст /week: привычки, счёт, тренд, цель, потребление и языки
func (b *Bot) renderWeek(userID int64, d habits.Digest) string {
	var sb strings.Builder

	sb.WriteString(b.tf("week.title", userID, d.Stats.Anchor.Format(habits.DateLayout)))
	sb.WriteString("\n\n")

	for _, h := range d.Stats.Habits {
		if h.Habit.Kind == habits.Daily {
			fmt.Fprintf(&sb, "%d. %s %s %d/%d\n", h.Habit.ID, h.Habit.Name, makeProgressBar(h.Count, h.Possible), h.Count, h.Possible)
			continue
		}
		mark, status := "✗", b.t("week.weekly_missing", userID)
		if h.Done() {
			mark, status = "✓", b.t("week.weekly_done", userID)
		}
		fmt.Fprintf(&sb, "%d. %s %s %s\n", h.Habit.ID, h.Habit.Name, mark, status)
	}

	sb.WriteString("\n")
	sb.WriteString(b.tf("week.score", userID, d.Stats.Score()))
	sb.WriteString("\n")
	sb.WriteString(b.trendText(userID, d.Trend))
	sb.WriteString("\n")
	if goal := d.Goal(); goal != "" {
		sb.WriteString(b.tf("week.goal", userID, goal))
		sb.WriteString("\n")
	}

	var consumption []string
	for _, kind := range habits.ConsumptionKinds() {
		if c := d.Summary.Consumption[kind]; c.Count > 0 {
			consumption = append(consumption, b.tf("week.consumption_line", userID, kind, c.Count, c.Cost))
		}
	}
	if len(consumption) > 0 {
		sb.WriteString("\n")
		sb.WriteString(b.t("week.consumption", userID))
		sb.WriteString("\n")
		sb.WriteString(strings.Join(consumption, "\n"))
		sb.WriteString("\n")
	}

	var languages []string
	for _, kind := range habits.LanguageKinds() {
		if days := d.Summary.LanguageDays[kind]; days > 0 {
			languages = append(languages, b.tf("week.language_line", userID, kind, days))
		}
	}
	if len(languages) > 0 {
		sb.WriteString("\n")
		sb.WriteString(b.t("week.language", userID))
		sb.WriteString("\n")
		sb.WriteString(strings.Join(languages, "\n"))
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

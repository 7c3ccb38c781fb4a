package feedback

import (
	"strings"

	"habitbot/internal/habits"
	"habitbot/internal/i18n"
)

// trendKeys ключи итоговой фразы шаблона по тренду
var trendKeys = map[habits.Trend]string{
	habits.Improved:  "feedback.improved",
	habits.Declined:  "feedback.declined",
	habits.Same:      "feedback.same",
	habits.NoHistory: "feedback.no_history",
}

// Template текст обратной связи без LLM на языке lang
func Template(d habits.Digest, lang i18n.Language) string {
	var sb strings.Builder

	sb.WriteString(i18n.Tf("feedback.week", lang, d.Stats.Anchor.Format(habits.DateLayout), d.Stats.Score(), habits.HabitCount))
	sb.WriteString("\n")

	var best, worst *habits.HabitStat
	for i := range d.Stats.Habits {
		h := &d.Stats.Habits[i]
		if best == nil || h.Ratio() > best.Ratio() {
			best = h
		}
		if worst == nil || h.Ratio() < worst.Ratio() {
			worst = h
		}
	}
	if best != nil && best.Done() {
		sb.WriteString(i18n.Tf("feedback.strongest", lang, best.Habit.ID, best.Habit.Name, best.Count, best.Possible))
		sb.WriteString("\n")
	}
	if worst != nil && worst != best {
		sb.WriteString(i18n.Tf("feedback.weakest", lang, worst.Habit.ID, worst.Habit.Name, worst.Count, worst.Possible))
		sb.WriteString("\n")
	}

	key, ok := trendKeys[d.Trend]
	if !ok {
		key = trendKeys[habits.NoHistory]
	}
	sb.WriteString(i18n.T(key, lang))
	return sb.String()
}

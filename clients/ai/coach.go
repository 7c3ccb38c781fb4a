package ai

import (
	"context"
	"fmt"
	"strings"

	"habitbot/internal/habits"
)

// SystemPromptCoach системный промпт еженедельной обратной связи
const SystemPromptCoach = `You are a supportive but honest training coach.
Each week you receive a summary of one person's habit log and write a short progress note.
Rules:
- At most 6 sentences, plain text, no markdown headers.
- Name the strongest and the weakest habit of the week with their numbers.
- Compare with previous weeks only using the numbers given.
- If a goal was set for this week, say whether the log supports it.
- End with one concrete suggestion for next week.
- Answer in %s.`

// Coach пишет еженедельную обратную связь по сводке недели
type Coach struct {
	client *Client
}

// NewCoach создаёт коуча поверх клиента
func NewCoach(client *Client) *Coach {
	return &Coach{client: client}
}

// WeeklyFeedback генерирует текст обратной связи; language — название языка ответа
func (c *Coach) WeeklyFeedback(ctx context.Context, d habits.Digest, language string) (string, error) {
	if language == "" {
		language = "English"
	}
	response, err := c.client.SimpleChat(ctx, fmt.Sprintf(SystemPromptCoach, language), BuildFeedbackPrompt(d))
	if err != nil {
		return "", fmt.Errorf("ошибка генерации обратной связи: %w", err)
	}
	if response == "" {
		return "", fmt.Errorf("пустая обратная связь")
	}
	return response, nil
}

// BuildFeedbackPrompt формирует пользовательскую часть промпта из сводки недели
func BuildFeedbackPrompt(d habits.Digest) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Week starting %s.\n", d.Stats.Anchor.Format(habits.DateLayout))
	sb.WriteString("Habits this week:\n")
	for _, h := range d.Stats.Habits {
		fmt.Fprintf(&sb, "%d. %s: %d/%d\n", h.Habit.ID, h.Habit.Name, h.Count, h.Possible)
	}
	fmt.Fprintf(&sb, "Score: %.2f of %d\n", d.Stats.Score(), habits.HabitCount)

	if len(d.History) == 0 {
		sb.WriteString("No previous weeks recorded.\n")
	} else {
		sb.WriteString("Previous weeks (newest first):\n")
		for _, prev := range d.History {
			fmt.Fprintf(&sb, "- %s: score %.2f\n", prev.Anchor.Format(habits.DateLayout), prev.Score())
		}
	}
	fmt.Fprintf(&sb, "Trend against last week: %s\n", d.Trend)

	if goal := d.Goal(); goal != "" {
		fmt.Fprintf(&sb, "Goal set for this week: %q\n", goal)
	}

	var consumption []string
	for _, kind := range habits.ConsumptionKinds() {
		c := d.Summary.Consumption[kind]
		if c.Count > 0 {
			consumption = append(consumption, fmt.Sprintf("%s %d (cost %d)", kind, c.Count, c.Cost))
		}
	}
	if len(consumption) > 0 {
		fmt.Fprintf(&sb, "Consumption: %s\n", strings.Join(consumption, ", "))
	}

	var languages []string
	for _, kind := range habits.LanguageKinds() {
		if days := d.Summary.LanguageDays[kind]; days > 0 {
			languages = append(languages, fmt.Sprintf("%s %d/7 days", kind, days))
		}
	}
	if len(languages) > 0 {
		fmt.Fprintf(&sb, "Language practice: %s\n", strings.Join(languages, ", "))
	}

	return sb.String()
}

package bot

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"habitbot/internal/habits"
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

var numberPattern = regexp.MustCompile(`^[+-]?\d+$`)

// maxGoalLength ограничение длины цели в символах
const maxGoalLength = 500

// parseHabitID разбирает номер привычки. ok=false: текст не число и не относится к привычкам;
// ok=true с ошибкой: число вне 1..5, в том числе не влезающее в int.
func parseHabitID(text string) (id int, ok bool, err error) {
	text = strings.TrimSpace(text)
	if !numberPattern.MatchString(text) {
		return 0, false, nil
	}
	id, convErr := strconv.Atoi(text)
	if convErr != nil {
		id = 0
	}
	if convErr != nil || id < 1 || id > habits.HabitCount {
		return id, true, ValidationError{Field: "habit_id", Message: "habit number must be from 1 to 5"}
	}
	return id, true, nil
}

// validateGoal проверяет текст цели
func validateGoal(goal string) error {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return ValidationError{Field: "goal", Message: "goal must not be empty"}
	}
	if utf8.RuneCountInString(goal) > maxGoalLength {
		return ValidationError{Field: "goal", Message: "goal is too long (max 500 characters)"}
	}
	return nil
}

package bot

import (
	"context"
	"errors"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"habitbot/internal/excel"
	"habitbot/internal/habits"
	"habitbot/internal/i18n"
)

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID

	switch message.Command() {
	case "start":
		b.sendMessage(chatID, b.tf("start.greeting", userID, message.From.FirstName)+"\n\n"+b.helpText(userID))
	case "help":
		b.sendMessage(chatID, b.helpText(userID))
	case "week":
		b.handleWeek(ctx, message)
	case "goal":
		b.handleGoal(ctx, message)
	case "skip":
		if b.sessions.dropGoal(userID) {
			b.sendMessage(chatID, b.t("goal.skipped", userID))
		} else {
			b.sendMessage(chatID, b.t("goal.nothing_pending", userID))
		}
	case "export":
		b.handleExport(ctx, message)
	case "language":
		b.handleLanguage(message)
	default:
		b.sendMessage(chatID, b.t("unknown_command", userID))
	}
}

// handleMessage разбирает обычный текст: номер привычки, потребление, язык, ответ о цели
func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	text := strings.TrimSpace(message.Text)
	if text == "" {
		return
	}
	userID := message.From.ID
	chatID := message.Chat.ID
	at := b.eventTime(message)

	if habitID, ok, err := parseHabitID(text); ok {
		if err != nil {
			b.sendMessage(chatID, b.t("habit.invalid", userID))
			return
		}
		b.recordHabit(ctx, chatID, userID, habitID, at)
		return
	}

	if entry, ok := habits.ParseConsumption(text); ok {
		b.recordConsumption(ctx, chatID, userID, entry, at)
		return
	}

	if kind, ok := habits.ParseLanguage(text); ok {
		b.recordLanguage(ctx, chatID, userID, kind, at)
		return
	}

	if anchor, ok := b.pendingGoal(userID, at); ok {
		b.saveGoal(ctx, chatID, userID, anchor, text)
		return
	}

	b.sendMessage(chatID, b.t("unknown_input", userID))
}

func (b *Bot) recordHabit(ctx context.Context, chatID, userID int64, habitID int, at time.Time) {
	habit, _ := habits.Lookup(habitID)
	logger := log.WithFields(log.Fields{"user_id": userID, "habit_id": habitID})

	outcome, err := b.ledger.Record(ctx, userID, habitID, at)
	switch outcome {
	case habits.Recorded:
		logger.Debug("Привычка записана")
		day := at.In(b.ledger.Location()).Format("Mon 02.01")
		b.sendMessage(chatID, b.tf("habit.recorded", userID, habit.Name, day))
	case habits.DuplicateIgnored:
		b.sendMessage(chatID, b.tf("habit.duplicate", userID, habit.Name))
	case habits.InvalidHabitID:
		b.sendMessage(chatID, b.t("habit.invalid", userID))
	default:
		b.sendError(chatID, b.t("store.error", userID), err)
	}
}

func (b *Bot) recordConsumption(ctx context.Context, chatID, userID int64, entry habits.ConsumptionEntry, at time.Time) {
	day, err := b.tracker.RecordConsumption(ctx, userID, entry, at)
	if err != nil {
		b.sendError(chatID, b.t("store.error", userID), err)
		return
	}
	total := day.Consumption[entry.Kind]
	b.sendMessage(chatID, b.tf("consumption.recorded", userID, entry.Kind, entry.Count, total.Count, total.Cost))
}

func (b *Bot) recordLanguage(ctx context.Context, chatID, userID int64, kind habits.LanguageKind, at time.Time) {
	outcome, err := b.tracker.RecordLanguage(ctx, userID, kind, at)
	switch outcome {
	case habits.Recorded:
		b.sendMessage(chatID, b.tf("language.recorded", userID, kind))
	case habits.DuplicateIgnored:
		b.sendMessage(chatID, b.tf("language.duplicate", userID, kind))
	default:
		b.sendError(chatID, b.t("store.error", userID), err)
	}
}

func (b *Bot) handleWeek(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	d, err := habits.BuildDigest(ctx, b.ledger, b.tracker, userID, b.eventTime(message))
	if err != nil {
		b.sendError(message.Chat.ID, b.t("store.error", userID), err)
		return
	}
	b.sendMessage(message.Chat.ID, b.renderWeek(userID, d))
}

// handleGoal /goal <текст>: цель на неделю из вопроса, а без вопроса — на текущую
func (b *Bot) handleGoal(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	goal := message.CommandArguments()
	if err := validateGoal(goal); err != nil {
		b.sendMessage(message.Chat.ID, b.t("goal.usage", userID))
		return
	}
	at := b.eventTime(message)
	anchor, ok := b.pendingGoal(userID, at)
	if !ok {
		anchor = b.ledger.Anchor(at)
	}
	b.saveGoal(ctx, message.Chat.ID, userID, anchor, goal)
}

// pendingGoal неделя, для которой ждём цель. Вопрос о неделе, которая уже прошла, снимается.
func (b *Bot) pendingGoal(userID int64, at time.Time) (time.Time, bool) {
	anchor, ok := b.sessions.goalAnchor(userID)
	if !ok {
		return time.Time{}, false
	}
	if anchor.Before(b.ledger.Anchor(at)) {
		b.sessions.dropGoal(userID)
		log.WithFields(log.Fields{"user_id": userID, "week": anchor.Format(habits.DateLayout)}).Debug("Вопрос о цели устарел")
		return time.Time{}, false
	}
	return anchor, true
}

func (b *Bot) saveGoal(ctx context.Context, chatID, userID int64, anchor time.Time, goal string) {
	if err := validateGoal(goal); err != nil {
		b.sendMessage(chatID, b.t("goal.usage", userID))
		return
	}
	if err := b.ledger.SetGoal(ctx, userID, anchor, goal); err != nil {
		b.sendError(chatID, b.t("store.error", userID), err)
		return
	}
	b.sessions.dropGoal(userID)
	log.WithFields(log.Fields{"user_id": userID, "week": anchor.Format(habits.DateLayout)}).Info("Цель сохранена")
	b.sendMessage(chatID, b.tf("goal.saved", userID, anchor.Format(habits.DateLayout)))
}

func (b *Bot) handleExport(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID
	at := b.eventTime(message)

	data, err := excel.Export(ctx, b.ledger, b.tracker, userID, at)
	if err != nil {
		b.sendError(chatID, b.t("export.error", userID), err)
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  excel.FileName(userID, at),
		Bytes: data,
	})
	doc.Caption = b.tf("export.caption", userID, excel.ExportWeeks)
	if _, err := b.api.Send(doc); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Не удалось отправить выгрузку")
	}
}

func (b *Bot) handleLanguage(message *tgbotapi.Message) {
	userID := message.From.ID
	arg := message.CommandArguments()
	if !i18n.IsValidLanguage(arg) {
		b.sendMessage(message.Chat.ID, b.t("language.usage", userID))
		return
	}
	lang := i18n.ParseLanguage(arg)
	b.langs.set(userID, lang)
	b.sendMessage(message.Chat.ID, b.tf("language.set", userID, i18n.GetLanguageFlag(lang), i18n.GetLanguageName(lang)))
}

// isStoreError ошибка хранилища, а не ввода
func isStoreError(err error) bool {
	return errors.Is(err, habits.ErrStoreUnavailable)
}

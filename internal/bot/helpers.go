package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// sendError sends error message to user and logs it
func (b *Bot) sendError(chatID int64, userMessage string, err error) {
	if err != nil {
		entry := log.WithError(err).WithField("chat_id", chatID)
		if isStoreError(err) {
			entry.Error("Ошибка хранилища")
		} else {
			entry.Warn("Ошибка обработки")
		}
	}
	msg := tgbotapi.NewMessage(chatID, userMessage)
	if _, sendErr := b.api.Send(msg); sendErr != nil {
		log.WithError(sendErr).WithField("chat_id", chatID).Error("Failed to send error message")
	}
}

// sendMessage sends message to user with error logging
func (b *Bot) sendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.api.Send(msg)
	if err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Failed to send message")
	}
	return err
}

package bot

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"habitbot/internal/habits"
)

// SendFeedback отправляет еженедельную обратную связь.
// При спаде или застое бот спрашивает цель, ответ попадёт в неделю nextAnchor.
func (b *Bot) SendFeedback(_ context.Context, userID int64, text string, trend habits.Trend, nextAnchor time.Time) error {
	if err := b.sendMessage(userID, b.t("feedback.header", userID)+"\n\n"+text); err != nil {
		return err
	}
	if !trend.NeedsGoal() {
		// прошлый вопрос о цели больше не актуален
		b.sessions.dropGoal(userID)
		return nil
	}
	b.sessions.askGoal(userID, nextAnchor)
	log.WithFields(log.Fields{"user_id": userID, "week": nextAnchor.Format(habits.DateLayout)}).Debug("Запрошена цель")
	return b.sendMessage(userID, b.t("goal.request", userID))
}

package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"habitbot/internal/habits"
	"habitbot/internal/i18n"
)

// Sender часть Telegram API, через которую бот отвечает
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot контекст приложения: хранилище, журнал, сессии. Создаётся один раз при старте.
type Bot struct {
	api      Sender
	ledger   *habits.Ledger
	tracker  *habits.Tracker
	sessions *sessions
	langs    *languages
	inbox    chan tgbotapi.Update
	now      func() time.Time
}

// New создаёт бота поверх хранилища store; loc задаёт границы дней и недель
func New(api Sender, store habits.Store, loc *time.Location) *Bot {
	return &Bot{
		api:      api,
		ledger:   habits.NewLedger(store, loc),
		tracker:  habits.NewTracker(store, loc),
		sessions: newSessions(),
		langs:    newLanguages(),
		inbox:    make(chan tgbotapi.Update, 100),
		now:      time.Now,
	}
}

// Ledger журнал привычек бота
func (b *Bot) Ledger() *habits.Ledger {
	return b.ledger
}

// Tracker дневной трекер бота
func (b *Bot) Tracker() *habits.Tracker {
	return b.tracker
}

// Enqueue ставит обновление в общую очередь (для webhook)
func (b *Bot) Enqueue(update tgbotapi.Update) bool {
	select {
	case b.inbox <- update:
		return true
	default:
		log.WithField("update_id", update.UpdateID).Warn("Очередь обновлений переполнена")
		return false
	}
}

// Run обрабатывает обновления по одному, пока жив ctx.
// updates может быть nil, если обновления приходят только через Enqueue.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			b.HandleUpdate(ctx, update)
		case update := <-b.inbox:
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate обрабатывает одно обновление
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	if message == nil || message.From == nil {
		return
	}

	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}
	b.handleMessage(ctx, message)
}

// eventTime время сообщения; у сообщений без даты: текущее
func (b *Bot) eventTime(message *tgbotapi.Message) time.Time {
	if message.Date == 0 {
		return b.now()
	}
	return message.Time()
}

// Language язык ответа пользователя
func (b *Bot) Language(userID int64) i18n.Language {
	return b.langs.get(userID)
}

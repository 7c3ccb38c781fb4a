package feedback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"habitbot/internal/habits"
	"habitbot/internal/i18n"
)

// Generator пишет текст обратной связи по сводке недели
type Generator interface {
	WeeklyFeedback(ctx context.Context, d habits.Digest, language string) (string, error)
}

// Notifier доставляет обратную связь пользователю.
// nextAnchor — неделя, в строку которой попадёт цель из ответа пользователя.
type Notifier interface {
	SendFeedback(ctx context.Context, userID int64, text string, trend habits.Trend, nextAnchor time.Time) error
}

// UserResult итог прогона для одного пользователя
type UserResult struct {
	UserID int64
	Trend  habits.Trend
	Score  float64
	Text   string
	Sent   bool
	Err    error
}

// Report итог еженедельного прогона
type Report struct {
	RunID   string
	Anchor  time.Time
	AsOf    time.Time
	Results []UserResult
}

// Err объединяет ошибки по пользователям; nil, если все прошли
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("user %d: %w", res.UserID, res.Err))
		}
	}
	return errors.Join(errs...)
}

// Failed количество пользователей с ошибкой
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Runner еженедельная обратная связь по всем пользователям
type Runner struct {
	ledger    *habits.Ledger
	tracker   *habits.Tracker
	generator Generator
	notifier  Notifier
	language  func(userID int64) i18n.Language
}

// NewRunner создаёт прогон. generator nil: текст по шаблону, notifier nil: сухой прогон.
func NewRunner(ledger *habits.Ledger, tracker *habits.Tracker, generator Generator, notifier Notifier) *Runner {
	return &Runner{
		ledger:    ledger,
		tracker:   tracker,
		generator: generator,
		notifier:  notifier,
	}
}

// SetLanguageFunc задаёт язык ответа пользователя; без неё язык по умолчанию
func (r *Runner) SetLanguageFunc(fn func(userID int64) i18n.Language) {
	r.language = fn
}

// RunWeeklyFeedback считает неделю asOf для каждого пользователя и отправляет обратную связь.
// Ошибка одного пользователя не останавливает прогон: она попадает в отчёт.
func (r *Runner) RunWeeklyFeedback(ctx context.Context, asOf time.Time) (*Report, error) {
	report := &Report{
		RunID:  uuid.NewString(),
		Anchor: r.ledger.Anchor(asOf),
		AsOf:   asOf,
	}
	logger := log.WithFields(log.Fields{
		"run_id": report.RunID,
		"week":   report.Anchor.Format(habits.DateLayout),
	})

	users, err := r.ledger.Users(ctx)
	if err != nil {
		return report, fmt.Errorf("список пользователей: %w", err)
	}
	logger.WithField("users", len(users)).Info("Еженедельная обратная связь запущена")

	nextAnchor := report.Anchor.AddDate(0, 0, 7)
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res := r.runUser(ctx, userID, report.Anchor, nextAnchor)
		if res.Err != nil {
			logger.WithError(res.Err).WithField("user_id", userID).Warn("Ошибка обратной связи")
		}
		report.Results = append(report.Results, res)
	}

	logger.WithFields(log.Fields{"users": len(users), "failed": report.Failed()}).Info("Еженедельная обратная связь завершена")
	return report, nil
}

func (r *Runner) runUser(ctx context.Context, userID int64, anchor, nextAnchor time.Time) UserResult {
	res := UserResult{UserID: userID}

	d, err := habits.BuildDigest(ctx, r.ledger, r.tracker, userID, anchor)
	if err != nil {
		res.Err = err
		return res
	}
	res.Trend = d.Trend
	res.Score = d.Stats.Score()

	lang := i18n.Default()
	if r.language != nil {
		lang = r.language(userID)
	}

	res.Text = Template(d, lang)
	if r.generator != nil {
		text, err := r.generator.WeeklyFeedback(ctx, d, i18n.GetLanguageName(lang))
		if err != nil {
			// пользователь получает шаблон, ошибка остаётся в отчёте
			res.Err = err
		} else {
			res.Text = text
		}
	}

	if r.notifier == nil {
		return res
	}
	if err := r.notifier.SendFeedback(ctx, userID, res.Text, d.Trend, nextAnchor); err != nil {
		res.Err = errors.Join(res.Err, fmt.Errorf("отправка: %w", err))
		return res
	}
	res.Sent = true
	return res
}

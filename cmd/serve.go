package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"habitbot/clients/ai"
	"habitbot/internal/bot"
	"habitbot/internal/config"
	"habitbot/internal/feedback"
	"habitbot/internal/habits"
	"habitbot/internal/i18n"
	"habitbot/internal/scheduler"
	"habitbot/internal/web"
)

const feedbackJob = "weekly-feedback"

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot, the weekly feedback scheduler and the HTTP server",
		Long: `Run the bot.

Updates arrive by long polling, or by webhook when WEBHOOK_URL is set.
The webhook needs HTTP_ADDR and a URL ending in /telegram/webhook.
The HTTP server starts when HTTP_ADDR is set.

Examples:
  habitbot serve
  habitbot serve --config habitbot.yaml --debug`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.WebhookURL != "" && cfg.HTTPAddr == "" {
		return fmt.Errorf("WEBHOOK_URL требует HTTP_ADDR")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.LocalesDir != "" {
		if err := i18n.Watch(ctx, cfg.LocalesDir); err != nil {
			log.WithError(err).Warn("Слежение за переводами не запущено")
		}
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return fmt.Errorf("ошибка подключения к Telegram: %w", err)
	}
	api.Debug = cfg.Debug
	log.WithField("username", api.Self.UserName).Info("Авторизован в Telegram")

	telegramBot := bot.New(api, store, cfg.Location())

	runner := feedback.NewRunner(telegramBot.Ledger(), telegramBot.Tracker(), newGenerator(cfg), telegramBot)
	runner.SetLanguageFunc(telegramBot.Language)

	locker, closeLock, err := newLocker(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLock()

	sched := scheduler.New(cfg.Location(), locker)
	weekly := func(ctx context.Context, asOf time.Time) error {
		report, err := runner.RunWeeklyFeedback(ctx, asOf)
		if err != nil {
			return err
		}
		return report.Err()
	}
	if err := sched.AddJob(feedbackJob, cfg.FeedbackSchedule, weekly); err != nil {
		return err
	}
	sched.Start(ctx)
	defer sched.Stop()
	if next, err := scheduler.NextRun(cfg.FeedbackSchedule, time.Now().In(cfg.Location())); err == nil {
		log.WithField("next", next.Format(time.RFC3339)).Info("Запланирована обратная связь")
	}

	var updates tgbotapi.UpdatesChannel
	var sink web.UpdateSink
	if cfg.WebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.WebhookURL)
		if err != nil {
			return fmt.Errorf("неверный WEBHOOK_URL: %w", err)
		}
		if _, err := api.Request(wh); err != nil {
			return fmt.Errorf("ошибка установки webhook: %w", err)
		}
		sink = telegramBot
		log.WithField("url", cfg.WebhookURL).Info("Обновления через webhook")
	} else {
		if _, err := api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			log.WithError(err).Warn("Не удалось снять webhook")
		}
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates = api.GetUpdatesChan(u)
		defer api.StopReceivingUpdates()
		log.Info("Обновления через long polling")
	}

	if cfg.HTTPAddr != "" {
		trigger := func(ctx context.Context, asOf time.Time) (*feedback.Report, bool, error) {
			return runFeedbackOnce(ctx, sched, runner, asOf)
		}
		server := web.NewServer(sink, trigger, web.Options{
			AdminToken: cfg.AdminToken,
			Location:   cfg.Location(),
			Debug:      cfg.Debug,
		})
		server.Start(cfg.HTTPAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.WithError(err).Warn("HTTP сервер остановлен с ошибкой")
			}
		}()
	}

	log.WithField("week", habits.WeekAnchor(time.Now(), cfg.Location()).Format(habits.DateLayout)).Info("Бот запущен")
	telegramBot.Run(ctx, updates)
	log.Info("Бот остановлен")
	return nil
}

// runFeedbackOnce прогон за неделю asOf под той же блокировкой, что и прогон по расписанию.
// ran=false: прогон уже идёт (в этом процессе или, с Redis, в другом).
func runFeedbackOnce(ctx context.Context, sched *scheduler.Scheduler, runner *feedback.Runner, asOf time.Time) (*feedback.Report, bool, error) {
	var report *feedback.Report
	ran, err := sched.RunNow(ctx, feedbackJob, func(ctx context.Context, _ time.Time) error {
		var err error
		report, err = runner.RunWeeklyFeedback(ctx, asOf)
		return err
	})
	return report, ran, err
}

// newGenerator LLM для обратной связи; без ключа: шаблон
func newGenerator(cfg *config.Config) feedback.Generator {
	if !cfg.AIEnabled() {
		log.Info("Ключ LLM не задан, обратная связь по шаблону")
		return nil
	}
	client := ai.NewClient(ai.Config{
		APIKey:        cfg.AIAPIKey,
		BaseURL:       cfg.AIBaseURL,
		Model:         cfg.AIModel,
		FallbackModel: cfg.AIFallbackModel,
	})
	log.WithField("model", client.Model()).Info("Обратная связь через LLM")
	return ai.NewCoach(client)
}

// newLocker блокировка задач: Redis, если задан REDIS_URL, иначе в памяти
func newLocker(ctx context.Context, cfg *config.Config) (scheduler.Locker, func() error, error) {
	if cfg.RedisURL == "" {
		return scheduler.NewLocalLock(), func() error { return nil }, nil
	}
	lock, err := scheduler.NewRedisLock(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	log.Info("Блокировка задач через Redis")
	return lock, lock.Close, nil
}

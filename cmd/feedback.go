package main

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"habitbot/internal/bot"
	"habitbot/internal/feedback"
	"habitbot/internal/habits"
	"habitbot/internal/scheduler"
)

func feedbackCmd() *cobra.Command {
	var (
		asOf   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Run the weekly feedback once",
		Long: `Run the weekly feedback for every user and print each user's text.

Sending takes the same run lock as the scheduled run. Without REDIS_URL the
lock only covers one process. Goal replies are tracked by the process that
asked: after a run from the command line users answer with /goal, so prefer
POST /admin/feedback on a running server.

Examples:
  habitbot feedback --dry-run
  habitbot feedback --as-of 2026-10-25`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			loc := cfg.Location()

			at := time.Now().In(loc)
			if asOf != "" {
				parsed, err := habits.ParseDate(asOf, loc)
				if err != nil {
					return fmt.Errorf("--as-of: ожидается YYYY-MM-DD: %w", err)
				}
				at = parsed
			}

			store, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			var notifier feedback.Notifier
			if !dryRun {
				if cfg.BotToken == "" {
					return fmt.Errorf("TELEGRAM_BOT_TOKEN не задан, запустите с --dry-run")
				}
				api, err := tgbotapi.NewBotAPI(cfg.BotToken)
				if err != nil {
					return fmt.Errorf("ошибка подключения к Telegram: %w", err)
				}
				notifier = bot.New(api, store, loc)
			}

			runner := feedback.NewRunner(habits.NewLedger(store, loc), habits.NewTracker(store, loc), newGenerator(cfg), notifier)

			var report *feedback.Report
			if dryRun {
				report, err = runner.RunWeeklyFeedback(ctx, at)
			} else {
				// отправка идёт под общей блокировкой с serve
				locker, closeLock, lockErr := newLocker(ctx, cfg)
				if lockErr != nil {
					return lockErr
				}
				defer closeLock()

				var ran bool
				report, ran, err = runFeedbackOnce(ctx, scheduler.New(loc, locker), runner, at)
				if err == nil && !ran {
					return fmt.Errorf("обратная связь уже выполняется")
				}
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s, week of %s, %d users\n", report.RunID, report.Anchor.Format(habits.DateLayout), len(report.Results))
			for _, res := range report.Results {
				fmt.Fprintf(out, "\n== user %d: %s, score %.2f, sent %t\n", res.UserID, res.Trend, res.Score, res.Sent)
				if res.Err != nil {
					fmt.Fprintf(out, "error: %v\n", res.Err)
				}
				fmt.Fprintln(out, res.Text)
			}
			return report.Err()
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print texts without sending")
	cmd.Flags().StringVar(&asOf, "as-of", "", "any date of the week to report (YYYY-MM-DD), default today")

	return cmd
}

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"habitbot/internal/excel"
	"habitbot/internal/habits"
)

func exportCmd() *cobra.Command {
	var (
		userID int64
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a user's last weeks to an .xlsx file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userID == 0 {
				return fmt.Errorf("--user обязателен")
			}
			ctx := cmd.Context()
			loc := cfg.Location()
			now := time.Now().In(loc)

			store, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			data, err := excel.Export(ctx, habits.NewLedger(store, loc), habits.NewTracker(store, loc), userID, now)
			if err != nil {
				return err
			}

			if out == "" {
				out = excel.FileName(userID, now)
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("ошибка записи %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", out)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&userID, "user", "u", 0, "Telegram user ID")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, default habits_<user>_<date>.xlsx")

	return cmd
}

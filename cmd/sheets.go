package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"habitbot/internal/gsheets"
)

// spreadsheetSetup часть gsheets.Client, нужная для sheets init
type spreadsheetSetup interface {
	CreateSpreadsheet(ctx context.Context, title string) (string, error)
	EnsureStructure(ctx context.Context, spreadsheetID string) error
}

// initSpreadsheet создаёт таблицу, если id пуст, и в обоих случаях приводит листы к нужной структуре
func initSpreadsheet(ctx context.Context, client spreadsheetSetup, id, title string) (string, bool, error) {
	created := false
	if id == "" {
		var err error
		id, err = client.CreateSpreadsheet(ctx, title)
		if err != nil {
			return "", false, err
		}
		created = true
	}
	if err := client.EnsureStructure(ctx, id); err != nil {
		return id, created, fmt.Errorf("структура таблицы: %w", err)
	}
	return id, created, nil
}

func sheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Google Sheets storage maintenance",
	}
	cmd.AddCommand(sheetsInitCmd())
	return cmd
}

func sheetsInitCmd() *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the habit spreadsheet, or add missing sheets to GOOGLE_SHEET_ID",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			client, err := sheetsClient(ctx, cfg)
			if err != nil {
				return err
			}

			id, created, err := initSpreadsheet(ctx, client, cfg.GoogleSheetID, title)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Created. Add to .env:\nGOOGLE_SHEET_ID=%s\n", id)
			}

			fmt.Fprintln(cmd.OutOrStdout(), gsheets.GetSpreadsheetURL(id))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "Habit tracker", "title of a new spreadsheet")

	return cmd
}

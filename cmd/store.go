package main

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"habitbot/internal/config"
	"habitbot/internal/gsheets"
	"habitbot/internal/habits"
	"habitbot/internal/repository"
)

// openStore открывает хранилище выбранного бэкенда. close освобождает соединения.
func openStore(ctx context.Context, cfg *config.Config) (store habits.Store, closeFn func() error, err error) {
	if err := cfg.ValidateStore(); err != nil {
		return nil, nil, err
	}
	noop := func() error { return nil }

	switch cfg.StoreBackend {
	case config.BackendSheets:
		client, err := sheetsClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := client.EnsureStructure(ctx, cfg.GoogleSheetID); err != nil {
			return nil, nil, fmt.Errorf("структура таблицы: %w", err)
		}
		log.WithField("url", gsheets.GetSpreadsheetURL(cfg.GoogleSheetID)).Info("Хранилище: Google Sheets")
		return client.Store(cfg.GoogleSheetID, cfg.Location()), noop, nil

	case config.BackendPostgres, config.BackendSQLite:
		driver, dsn := repository.DriverPostgres, cfg.DatabaseURL
		if cfg.StoreBackend == config.BackendSQLite {
			driver, dsn = repository.DriverSQLite, cfg.SQLitePath
		}
		db, err := repository.Open(ctx, driver, dsn)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.New(db, cfg.Location())
		if err := repo.Migrate(ctx); err != nil {
			repo.Close()
			return nil, nil, err
		}
		log.WithField("driver", driver).Info("Хранилище: SQL")
		return repo, repo.Close, nil

	case config.BackendMemory:
		log.Warn("Хранилище в памяти: данные пропадут при перезапуске")
		return repository.NewMemoryStore(), noop, nil
	}
	return nil, nil, fmt.Errorf("неизвестный бэкенд %q", cfg.StoreBackend)
}

func sheetsClient(ctx context.Context, cfg *config.Config) (*gsheets.Client, error) {
	credentials, err := gsheets.LoadCredentials(cfg.GoogleCredentialsJSON, cfg.GoogleCredentialsPath)
	if err != nil {
		return nil, err
	}
	return gsheets.NewClient(ctx, credentials, cfg.GoogleDriveFolderID)
}

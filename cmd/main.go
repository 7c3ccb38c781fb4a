package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"habitbot/internal/config"
	"habitbot/internal/i18n"
	"habitbot/internal/logger"
)

var Version = "dev"

var (
	configPath string
	debug      bool

	cfg *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "habitbot",
		Short:             "Telegram bot for weekly habit tracking",
		Version:           Version,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (yaml, json, toml or env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(feedbackCmd())
	rootCmd.AddCommand(sheetsCmd())
	rootCmd.AddCommand(exportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup общая инициализация команд: конфигурация, логи, переводы
func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	if debug {
		cfg.Debug = true
	}

	if err := logger.Init(logger.Config{Level: cfg.LogLevel, File: cfg.LogFile, Debug: cfg.Debug}); err != nil {
		return err
	}

	if err := i18n.Load(cfg.LocalesDir); err != nil {
		return err
	}
	i18n.SetDefault(i18n.ParseLanguage(cfg.DefaultLanguage))

	log.WithFields(log.Fields{
		"command":  cmd.Name(),
		"backend":  cfg.StoreBackend,
		"timezone": cfg.Location().String(),
	}).Debug("Конфигурация загружена")
	return nil
}

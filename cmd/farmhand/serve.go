package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/hollowoak/farmhand/internal/api"
	"github.com/hollowoak/farmhand/internal/config"
	"github.com/hollowoak/farmhand/internal/db"
	"github.com/hollowoak/farmhand/internal/logger"
	"github.com/hollowoak/farmhand/internal/notify"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		logMode    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Farmhand API server",
		Long:  "Starts the HTTP API, connects notification adapters, and runs the daily digest scheduler. Stops cleanly on SIGINT/SIGTERM.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, logMode)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "farmhand.yaml", "path to Farmhand config file")
	cmd.Flags().StringVar(&logMode, "log", "dev", "log mode: dev or prod")
	return cmd
}

func runServe(configPath, logMode string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(logMode)
	if err != nil {
		return fmt.Errorf("serve: logger: %w", err)
	}
	defer log.Sync()

	conn, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(conn); err != nil {
		return err
	}

	notifier, err := buildNotifier(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if notifier != nil {
		go notify.RunDigest(ctx, conn, notifier, cfg.Notify.DigestCron, log)
	}

	return api.Start(ctx, api.StartOpts{
		DB:       conn,
		Host:     cfg.Server.Host,
		Port:     cfg.Server.Port,
		Log:      log,
		Notifier: notifier,
	})
}

// buildNotifier assembles the configured notification adapters. Returns
// nil when none are enabled.
func buildNotifier(cfg *config.Config) (notify.Notifier, error) {
	var notifiers []notify.Notifier
	if cfg.SlackEnabled() {
		slack, err := notify.NewSlack(notify.SlackOpts{
			Token:   cfg.Notify.Slack.Token,
			Channel: cfg.Notify.Slack.Channel,
		})
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, slack)
	}
	if cfg.DiscordEnabled() {
		discord, err := notify.NewDiscord(notify.DiscordOpts{
			Token:     cfg.Notify.Discord.Token,
			ChannelID: cfg.Notify.Discord.ChannelID,
		})
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, discord)
	}
	switch len(notifiers) {
	case 0:
		return nil, nil
	case 1:
		return notifiers[0], nil
	default:
		return &notify.Fanout{Notifiers: notifiers}, nil
	}
}

// connectFromConfig loads config and opens the database, shared by the
// read-only commands.
func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	conn, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return cfg, conn, nil
}

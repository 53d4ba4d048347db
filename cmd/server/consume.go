package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/colocetudiant/internal/queue"
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Append published domain events to the events log",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.RabbitURL == "" {
			return errors.New("RABBITMQ_URL is not set")
		}
		logger.Info("event consumer started", zap.String("log", cfg.EventsLog))
		c := &queue.Consumer{URL: cfg.RabbitURL, LogPath: cfg.EventsLog, Log: logger}
		return c.Run(cmd.Context())
	},
}

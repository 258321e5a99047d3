package main

import (
	"errors"
	"log"

	"github.com/spf13/cobra"

	"github.com/example/bazaar/internal/config"
	"github.com/example/bazaar/internal/notify"
	"github.com/example/bazaar/internal/services"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Delivers queued OTP codes and order notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		queue, err := connectQueue(cfg)
		if err != nil {
			return err
		}
		if queue == nil {
			return errors.New("worker requires RABBITMQ_URL")
		}
		defer queue.Close()

		var sms services.OTPSender = notify.LogSender{}
		if cfg.SMS.GatewayURL != "" {
			sms = notify.NewSMSGateway(cfg.SMS.GatewayURL, cfg.SMS.Token)
		}

		var orders notify.Fanout
		if cfg.TelegramBotToken != "" && cfg.TelegramAdminChat != "" {
			orders = append(orders, notify.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat))
		} else {
			log.Printf("[Worker] telegram is not configured, order events will be acknowledged without delivery")
		}

		log.Printf("[Worker] consuming queues")
		return notify.NewWorker(queue, sms, orders).Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

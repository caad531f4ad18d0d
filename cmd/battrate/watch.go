package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/biplobsd/battrate/pkg/events"
)

func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "watch",
		GroupID: gBasic,
		Short:   "Print every new reading until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Fail fast when the daemon is down.
			value, err := apiClient.GetValue()
			if err != nil {
				return err
			}
			cmd.Printf("%s  %s\n", time.Now().Format(time.TimeOnly), value)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			for ev := range apiClient.SubscribeEvents(ctx) {
				if ev.Name != events.RateUpdated {
					continue
				}
				payload, err := events.DecodeAs[events.RateUpdatedEvent](ev)
				if err != nil {
					logrus.WithError(err).Error("failed to decode rate.updated event")
					continue
				}

				display := payload.Display
				if payload.HasData && !payload.Estimated {
					display = rateColor(display, payload.Milliwatt > 0, payload.Milliwatt >= 0)
				}
				cmd.Printf("%s  %s\n", payload.Time.Local().Format(time.TimeOnly), display)
			}
			return nil
		},
	}
}

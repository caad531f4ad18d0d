package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/biplobsd/battrate/pkg/format"
	"github.com/biplobsd/battrate/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return local(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	})
}

func NewItemsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "items",
		Short:   "List the display items",
		GroupID: gBasic,
		Long:    `List the display items served by the daemon, one per line, as a host shows them.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := apiClient.GetItems()
			if err != nil {
				return fmt.Errorf("failed to get items: %w", err)
			}

			for _, it := range items {
				cmd.Printf("%d  %-24s %s\n", it.Index, it.Name, bold("%s", it.Text()))
			}
			return nil
		},
	}
}

func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "info",
		Short:   "Show plugin information",
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := apiClient.GetInfo()
			if err != nil {
				return fmt.Errorf("failed to get plugin info: %w", err)
			}

			cmd.Printf("%s %s\n", bold("%s", info.Name), info.Version)
			cmd.Printf("  %s\n", info.Description)
			cmd.Printf("  Author: %s\n", info.Author)
			cmd.Printf("  %s\n", info.Copyright)
			cmd.Printf("  %s\n", info.URL)
			return nil
		},
	}
}

func NewRefreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "refresh",
		Short:   "Sample the batteries now",
		GroupID: gBasic,
		Long:    `Ask the daemon to sample the batteries now instead of waiting for the next refresh.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := apiClient.Refresh()
			if err != nil {
				return err
			}

			cmd.Println(rateColor(r.Display, r.Aggregate.Charging, r.Aggregate.OnAC))
			return nil
		},
	}
}

func NewPrecisionCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "precision [decimal|integer]",
		Short:     "Set display precision",
		GroupID:   gBasic,
		ValidArgs: []string{string(format.Decimal), string(format.Integer)},
		Long: `Set display precision.

decimal shows two decimals, e.g. "12.34 W+". integer rounds to whole watts, e.g. "12 W+".
Estimated values always show two decimals.`,
		RunE: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("invalid number of arguments")
			}

			p, err := format.ParsePrecision(strings.ToLower(args[0]))
			if err != nil {
				return err
			}

			ret, err := apiClient.SetPrecision(p)
			if err != nil {
				return fmt.Errorf("failed to set precision: %w", err)
			}
			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set precision to %s", p)
			return nil
		},
	}
}

func NewEstimateOnACCommand() *cobra.Command {
	return newEnableDisableCommand(
		"estimate-on-ac",
		"estimation while idle on AC",
		`Estimate the system draw while the battery is idle on AC power.

When enabled and a battery reports a rate near 0 W on AC power without charging,
the value shown is an estimate from CPU and memory load instead of 0 W.`,
		func() (string, error) { return apiClient.SetEstimateOnAC(true) },
		func() (string, error) { return apiClient.SetEstimateOnAC(false) },
	)
}

func NewRefreshIntervalCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "refresh-interval [seconds]",
		Short:   "Set how often the daemon refreshes",
		GroupID: gAdvanced,
		Long: `Set how often the daemon refreshes, in seconds.

This is a number from 1 to 3600. Each refresh samples every battery for about 100ms.`,
		RunE: func(_ *cobra.Command, args []string) error {
			sec, err := parseIntArg(args, "refresh interval")
			if err != nil {
				return err
			}

			ret, err := apiClient.SetRefreshInterval(time.Duration(sec) * time.Second)
			if err != nil {
				return fmt.Errorf("failed to set refresh interval: %w", err)
			}
			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set refresh interval to %ds", sec)
			return nil
		},
	}
}

func NewRefreshHistoryCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "refresh-history",
		Short:   "Show recent refresh times",
		GroupID: gAdvanced,
		Hidden:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := apiClient.GetRefreshHistory()
			if err != nil {
				return err
			}

			cmd.Printf("Interval: %ds, on schedule: %d\n", h.IntervalSeconds, h.Continuous)
			for _, r := range h.Records {
				cmd.Println("  " + r)
			}
			return nil
		},
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/biplobsd/battrate/pkg/config"
	"github.com/biplobsd/battrate/pkg/device"
	"github.com/biplobsd/battrate/pkg/format"
	"github.com/biplobsd/battrate/pkg/powerrate"
)

func NewSampleCommand() *cobra.Command {
	var (
		asJSON     bool
		source     string
		precision  string
		noEstimate bool
	)

	cmd := &cobra.Command{
		Use:     "sample",
		GroupID: gBasic,
		Short:   "Read the batteries directly, without the daemon",
		Long: `Read the batteries directly, without the daemon.

Settings come from the config directory. Flags override them for this run only.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.NewFile(filepath.Join(configDir, config.FileName))
			if err != nil {
				return err
			}

			if source != "" {
				if !device.ValidSource(source) {
					return fmt.Errorf("unknown battery source %q", source)
				}
				conf = config.NewFileFromConfig(withSource(conf, source), "")
			}

			r, err := powerrate.NewFromConfig(conf)
			if err != nil {
				return err
			}

			opts := r.Options()
			if precision != "" {
				p, err := format.ParsePrecision(precision)
				if err != nil {
					return err
				}
				opts.Precision = p
			}
			if noEstimate {
				opts.EstimateOnAC = false
			}
			r.SetOptions(opts)

			reading := r.Read()

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(reading)
			}

			cmd.Println(rateColor(reading.Display, reading.Aggregate.Charging, reading.Aggregate.OnAC))
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&asJSON, "json", false, "Output the full reading in JSON format")
	f.StringVar(&source, "source", "", "battery source (auto, ioctl, distatus, smc)")
	f.StringVar(&precision, "precision", "", "display precision (decimal, integer)")
	f.BoolVar(&noEstimate, "no-estimate", false, "show the measured rate even when idle on AC")

	return local(cmd)
}

// withSource copies c with its battery source replaced.
func withSource(c config.Config, source string) *config.RawFileConfig {
	raw, err := config.NewRawFileConfigFromConfig(c)
	if err != nil {
		return &config.RawFileConfig{Source: &source}
	}
	raw.Source = &source
	return raw
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/biplobsd/battrate/pkg/config"
	"github.com/biplobsd/battrate/pkg/powerrate"
)

type statusData struct {
	reading *powerrate.Reading
	config  *config.RawFileConfig
}

type statusJSON struct {
	Display        string  `json:"display"`
	HasData        bool    `json:"hasData"`
	Estimated      bool    `json:"estimated"`
	EstimatedWatts float64 `json:"estimatedWatts,omitempty"`
	RateWatts      float64 `json:"rateWatts"`
	Batteries      int     `json:"batteries"`
	OnAC           bool    `json:"onAC"`
	Charging       bool    `json:"charging"`
	Time           string  `json:"time,omitempty"`
	Error          string  `json:"error,omitempty"`

	Configuration statusConfigJSON `json:"configuration"`
}

type statusConfigJSON struct {
	Source             string  `json:"source"`
	Precision          string  `json:"precision"`
	EstimateOnAC       bool    `json:"estimateOnAC"`
	RefreshIntervalSec int     `json:"refreshIntervalSec"`
	Samples            int     `json:"samples"`
	SampleIntervalMs   int     `json:"sampleIntervalMs"`
	NearZeroThreshold  float64 `json:"nearZeroThresholdMw"`
	FallbackWatts      float64 `json:"fallbackWatts"`
}

// fetchStatusData gathers all data required for the status command from the daemon.
func fetchStatusData() (*statusData, error) {
	reading, err := apiClient.GetReading()
	if err != nil {
		return nil, fmt.Errorf("failed to get reading: %w", err)
	}

	conf, err := apiClient.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get config: %w", err)
	}

	return &statusData{reading: reading, config: conf}, nil
}

func buildStatusJSON(data *statusData) statusJSON {
	r := data.reading
	c := config.NewFileFromConfig(data.config, "")

	out := statusJSON{
		Display:        r.Display,
		HasData:        r.HasData,
		Estimated:      r.Estimated,
		EstimatedWatts: r.EstimatedWatts,
		RateWatts:      r.Aggregate.RateMilliwatts / 1000.0,
		Batteries:      r.Aggregate.Batteries,
		OnAC:           r.Aggregate.OnAC,
		Charging:       r.Aggregate.Charging,
		Error:          r.Error,
		Configuration: statusConfigJSON{
			Source:             c.Source(),
			Precision:          string(c.Precision()),
			EstimateOnAC:       c.EstimateOnAC(),
			RefreshIntervalSec: int(c.RefreshInterval() / time.Second),
			Samples:            c.Samples(),
			SampleIntervalMs:   int(c.SampleInterval() / time.Millisecond),
			NearZeroThreshold:  c.NearZeroThreshold(),
			FallbackWatts:      c.FallbackWatts(),
		},
	}
	if !r.Time.IsZero() {
		out.Time = r.Time.Format(time.RFC3339)
	}
	return out
}

func printStatus(w io.Writer, data *statusData, now time.Time) {
	s := buildStatusJSON(data)
	r := data.reading

	fmt.Fprintln(w, bold("Battery power rate:"))
	fmt.Fprintf(w, "  Value: %s\n", rateColor(s.Display, s.Charging, s.OnAC))
	if !s.HasData {
		fmt.Fprintln(w, "    No battery reported a rate.")
		if s.Error != "" {
			fmt.Fprintf(w, "    Last error: %s\n", s.Error)
		}
	} else {
		fmt.Fprintf(w, "  Batteries: %d\n", s.Batteries)
		fmt.Fprintf(w, "  Measured rate: %.3f W\n", s.RateWatts)
		fmt.Fprintf(w, "  On AC power: %s\n", bool2Text(s.OnAC))
		fmt.Fprintf(w, "  Charging: %s\n", bool2Text(s.Charging))
		fmt.Fprintf(w, "  Estimated: %s\n", bool2Text(s.Estimated))
		if s.Estimated {
			fmt.Fprintln(w, "    The battery is idle on AC, so the value is the estimated system draw.")
		}
	}
	if !r.Time.IsZero() {
		fmt.Fprintf(w, "  Last refresh: %s ago\n", now.Sub(r.Time).Round(time.Second))
	}

	fmt.Fprintln(w)

	c := s.Configuration
	fmt.Fprintln(w, bold("Configuration:"))
	fmt.Fprintf(w, "  Precision: %s\n", bold("%s", c.Precision))
	fmt.Fprintf(w, "  Estimate idle draw on AC: %s\n", bool2Text(c.EstimateOnAC))
	fmt.Fprintf(w, "  Refresh interval: %ds\n", c.RefreshIntervalSec)
	fmt.Fprintf(w, "  Battery source: %s\n", c.Source)
	fmt.Fprintf(w, "  Sampling: %d samples, %dms apart\n", c.Samples, c.SampleIntervalMs)
}

func NewStatusCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current battery power rate and configuration",
		Long:    `Get the latest reading of the daemon and its configuration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := fetchStatusData()
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(buildStatusJSON(data))
			}

			printStatus(cmd.OutOrStdout(), data, time.Now())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output status in JSON format")

	return cmd
}

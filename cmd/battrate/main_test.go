package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/biplobsd/battrate/pkg/config"
	"github.com/biplobsd/battrate/pkg/powerrate"
	"github.com/biplobsd/battrate/pkg/sampler"
	"github.com/biplobsd/battrate/pkg/utils/ptr"
)

func TestParseIntArg(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    int
		wantErr bool
	}{
		{name: "valid", args: []string{"5"}, want: 5},
		{name: "not a number", args: []string{"five"}, wantErr: true},
		{name: "no args", args: nil, wantErr: true},
		{name: "too many args", args: []string{"1", "2"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIntArg(tt.args, "value")
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseIntArg() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseIntArg() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewCommand_LocalAnnotations(t *testing.T) {
	cmd := NewCommand()

	tests := []struct {
		use       string
		wantLocal bool
	}{
		{use: "daemon", wantLocal: true},
		{use: "sample", wantLocal: true},
		{use: "version", wantLocal: true},
		{use: "status", wantLocal: false},
		{use: "tray", wantLocal: false},
	}
	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{tt.use})
			if err != nil {
				t.Fatalf("Find(%q) error = %v", tt.use, err)
			}
			if got := sub.Annotations[annotationLocal] != ""; got != tt.wantLocal {
				t.Errorf("%s local = %t, want %t", tt.use, got, tt.wantLocal)
			}
		})
	}
}

func TestPrintStatus(t *testing.T) {
	color.NoColor = true

	now := time.Date(2025, 3, 1, 12, 0, 10, 0, time.UTC)
	data := &statusData{
		reading: &powerrate.Reading{
			Display:        "15.00 W",
			HasData:        true,
			Estimated:      true,
			EstimatedWatts: 15,
			Aggregate:      sampler.Aggregate{Batteries: 1, OnAC: true, NearZeroOnAC: true},
			Time:           now.Add(-10 * time.Second),
		},
		config: &config.RawFileConfig{RefreshIntervalSec: ptr.To(2)},
	}

	var buf bytes.Buffer
	printStatus(&buf, data, now)
	out := buf.String()

	for _, want := range []string{
		"Value: 15.00 W",
		"Batteries: 1",
		"On AC power: ✔",
		"Charging: ✘",
		"Estimated: ✔",
		"Last refresh: 10s ago",
		"Precision: decimal",
		"Refresh interval: 2s",
		"Sampling: 3 samples, 50ms apart",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}

	s := buildStatusJSON(data)
	if s.Configuration.RefreshIntervalSec != 2 || !s.Estimated || s.Time == "" {
		t.Errorf("buildStatusJSON() = %+v", s)
	}
}

func TestPrintStatus_NoData(t *testing.T) {
	color.NoColor = true

	data := &statusData{
		reading: &powerrate.Reading{Display: "0.00 W", Error: "no battery produced a valid sample"},
	}

	var buf bytes.Buffer
	printStatus(&buf, data, time.Now())
	out := buf.String()

	if !strings.Contains(out, "No battery reported a rate.") || !strings.Contains(out, "Last error: no battery") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if strings.Contains(out, "Last refresh") {
		t.Errorf("output has a refresh time without a reading:\n%s", out)
	}
}

func TestWithSource(t *testing.T) {
	c := config.NewFileFromConfig(&config.RawFileConfig{Precision: ptr.To("integer")}, "")

	raw := withSource(c, "distatus")
	got := config.NewFileFromConfig(raw, "")
	if got.Source() != "distatus" || got.Precision() != "integer" {
		t.Errorf("withSource() = source %q precision %q", got.Source(), got.Precision())
	}
}

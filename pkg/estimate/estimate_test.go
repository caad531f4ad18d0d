package estimate

import (
	"errors"
	"math"
	"testing"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

func newTestLoad(times [][]cpu.TimesStat, memPercent float64) *Load {
	l := NewLoad()
	call := 0
	l.cpuTimes = func(bool) ([]cpu.TimesStat, error) {
		t := times[call]
		if call < len(times)-1 {
			call++
		}
		return t, nil
	}
	l.memory = func() (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{UsedPercent: memPercent}, nil
	}
	return l
}

func TestLoad_EstimateWatts(t *testing.T) {
	l := newTestLoad([][]cpu.TimesStat{
		{{User: 100, System: 50, Idle: 850}},
		// 200 busy out of 400 elapsed
		{{User: 250, System: 100, Idle: 1050}},
	}, 40)

	tests := []struct {
		name string
		want float64
	}{
		// 10 + 0 + 0.4 * 5
		{name: "first call has no cpu delta", want: 12},
		// 10 + 50% * 30 + 0.4 * 5
		{name: "second call uses cpu delta", want: 27},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.EstimateWatts()
			if err != nil {
				t.Fatalf("EstimateWatts() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("EstimateWatts() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoad_CPUError(t *testing.T) {
	l := NewLoad()
	l.cpuTimes = func(bool) ([]cpu.TimesStat, error) {
		return nil, errors.New("not supported")
	}

	if _, err := l.EstimateWatts(); err == nil {
		t.Error("EstimateWatts() error = nil, want error")
	}
}

func TestFixed(t *testing.T) {
	got, err := Fixed(DefaultFallbackWatts).EstimateWatts()
	if err != nil || got != 15 {
		t.Errorf("EstimateWatts() = %v, %v, want 15, nil", got, err)
	}
}

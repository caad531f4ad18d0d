// Package estimate guesses the system power draw when the battery cannot
// tell it, i.e. when running on AC with the battery idle.
package estimate

import (
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const (
	DefaultBaseWatts     = 10.0
	DefaultCPUWatts      = 30.0 // at 100% CPU
	DefaultMemoryWatts   = 5.0  // at 100% memory load
	DefaultFallbackWatts = 15.0
)

// Estimator returns an estimated system power draw in watts.
type Estimator interface {
	EstimateWatts() (float64, error)
}

// Fixed always returns the same figure. It stands in when no load
// measurement is available.
type Fixed float64

// EstimateWatts implements Estimator.
func (f Fixed) EstimateWatts() (float64, error) {
	return float64(f), nil
}

// Load estimates the draw from CPU and memory utilization:
//
//	BaseWatts + cpuBusy% / 100 * CPUWatts + memLoad% / 100 * MemoryWatts
//
// CPU utilization is measured between two consecutive calls, so the first
// call only accounts for memory.
type Load struct {
	BaseWatts   float64
	CPUWatts    float64
	MemoryWatts float64

	cpuTimes func(percpu bool) ([]cpu.TimesStat, error)
	memory   func() (*mem.VirtualMemoryStat, error)

	mu   sync.Mutex
	last *cpu.TimesStat
}

// NewLoad returns a Load estimator with the default coefficients.
func NewLoad() *Load {
	return &Load{
		BaseWatts:   DefaultBaseWatts,
		CPUWatts:    DefaultCPUWatts,
		MemoryWatts: DefaultMemoryWatts,
		cpuTimes:    cpu.Times,
		memory:      mem.VirtualMemory,
	}
}

// EstimateWatts implements Estimator.
func (l *Load) EstimateWatts() (float64, error) {
	cpuPercent, err := l.cpuBusyPercent()
	if err != nil {
		return 0, err
	}

	vm, err := l.memory()
	if err != nil {
		return 0, pkgerrors.Wrap(err, "failed to read memory usage")
	}

	return l.BaseWatts + cpuPercent/100*l.CPUWatts + vm.UsedPercent/100*l.MemoryWatts, nil
}

func (l *Load) cpuBusyPercent() (float64, error) {
	times, err := l.cpuTimes(false)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "failed to read cpu times")
	}
	if len(times) == 0 {
		return 0, pkgerrors.New("no cpu times reported")
	}
	cur := times[0]

	l.mu.Lock()
	defer l.mu.Unlock()

	prev := l.last
	l.last = &cur
	if prev == nil {
		return 0, nil
	}

	totalDiff := total(cur) - total(*prev)
	idleDiff := (cur.Idle + cur.Iowait) - (prev.Idle + prev.Iowait)
	if totalDiff <= 0 {
		return 0, nil
	}

	busy := 100 - idleDiff*100/totalDiff
	switch {
	case busy < 0:
		return 0, nil
	case busy > 100:
		return 100, nil
	}
	return busy, nil
}

func total(t cpu.TimesStat) float64 {
	return t.User + t.System + t.Idle + t.Nice + t.Iowait + t.Irq + t.Softirq + t.Steal
}

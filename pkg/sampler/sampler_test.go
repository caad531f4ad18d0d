package sampler

import (
	"errors"
	"testing"
	"time"

	"github.com/biplobsd/battrate/pkg/device"
	"github.com/biplobsd/battrate/pkg/device/devicetest"
)

func newTestSampler(slept *[]time.Duration) *Sampler {
	s := New()
	s.sleep = func(d time.Duration) {
		*slept = append(*slept, d)
	}
	return s
}

func TestSampler_Sample(t *testing.T) {
	tests := []struct {
		name      string
		devices   []*devicetest.Device
		want      Aggregate
		wantErr   error
		wantSleep int
	}{
		{
			name: "average of three samples",
			devices: []*devicetest.Device{
				devicetest.NewDevice("bat0", device.PowerOnLine|device.Charging, 100, 200, 300),
			},
			want:      Aggregate{RateMilliwatts: 200, Batteries: 1, OnAC: true, Charging: true},
			wantSleep: 3,
		},
		{
			name: "batteries are summed",
			devices: []*devicetest.Device{
				devicetest.NewDevice("bat0", device.Discharging, -4000, -5000, -6000),
				devicetest.NewDevice("bat1", device.Discharging, -1000),
			},
			want:      Aggregate{RateMilliwatts: -6000, Batteries: 2},
			wantSleep: 6,
		},
		{
			name: "devices failing open or tag are skipped",
			devices: []*devicetest.Device{
				{Name: "broken", BatTag: 1, OpenErr: device.ErrOpen},
				{Name: "empty slot", BatTag: 0},
				{Name: "no tag", BatTag: 1, TagErr: device.ErrNoTag},
				devicetest.NewDevice("bat0", device.Discharging, -5000),
			},
			want:      Aggregate{RateMilliwatts: -5000, Batteries: 1},
			wantSleep: 3,
		},
		{
			name: "unknown rates are ignored",
			devices: []*devicetest.Device{
				devicetest.NewDevice("bat0", device.Discharging, device.UnknownRate, -3000, device.UnknownRate),
			},
			want:      Aggregate{RateMilliwatts: -3000, Batteries: 1},
			wantSleep: 3,
		},
		{
			name: "unknown rate on ac counts as idle",
			devices: []*devicetest.Device{
				devicetest.NewDevice("bat0", device.PowerOnLine, device.UnknownRate),
			},
			want:      Aggregate{RateMilliwatts: 0, Batteries: 1, OnAC: true, NearZeroOnAC: true},
			wantSleep: 3,
		},
		{
			name: "unknown rate on ac averaged with known rates",
			devices: []*devicetest.Device{
				devicetest.NewDevice("bat0", device.PowerOnLine|device.Charging, device.UnknownRate, 3000, 3000),
			},
			want:      Aggregate{RateMilliwatts: 2000, Batteries: 1, OnAC: true, Charging: true, NearZeroOnAC: true},
			wantSleep: 3,
		},
		{
			name: "idle on ac",
			devices: []*devicetest.Device{
				devicetest.NewDevice("bat0", device.PowerOnLine, 0, 10, -10),
			},
			want:      Aggregate{RateMilliwatts: 0, Batteries: 1, OnAC: true, NearZeroOnAC: true},
			wantSleep: 3,
		},
		{
			name: "all status queries fail",
			devices: []*devicetest.Device{
				{Name: "bat0", BatTag: 1, StatusErr: device.ErrQueryStatus},
			},
			wantErr:   ErrNoData,
			wantSleep: 3,
		},
		{
			name:    "no devices",
			devices: nil,
			wantErr: ErrNoData,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var slept []time.Duration
			s := newTestSampler(&slept)

			got, err := s.Sample(&devicetest.Enumerator{Items: tt.devices})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Sample() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Sample() = %+v, want %+v", got, tt.want)
			}
			if len(slept) != tt.wantSleep {
				t.Errorf("slept %d times, want %d", len(slept), tt.wantSleep)
			}
			for _, d := range slept {
				if d != DefaultInterval {
					t.Errorf("slept %v, want %v", d, DefaultInterval)
				}
			}
		})
	}
}

func TestSampler_ClosesOpenedDevices(t *testing.T) {
	var slept []time.Duration
	s := newTestSampler(&slept)

	ok := devicetest.NewDevice("bat0", device.Discharging, -5000)
	noTag := &devicetest.Device{Name: "no tag", BatTag: 1, TagErr: device.ErrNoTag}
	broken := &devicetest.Device{Name: "broken", OpenErr: device.ErrOpen}

	_, _ = s.Sample(&devicetest.Enumerator{Items: []*devicetest.Device{ok, noTag, broken}})

	if ok.Closed() != 1 {
		t.Errorf("ok device closed %d times, want 1", ok.Closed())
	}
	if noTag.Closed() != 1 {
		t.Errorf("no tag device closed %d times, want 1", noTag.Closed())
	}
	if broken.Closed() != 0 {
		t.Errorf("broken device closed %d times, want 0", broken.Closed())
	}
	if ok.Queries() != DefaultSamples {
		t.Errorf("ok device queried %d times, want %d", ok.Queries(), DefaultSamples)
	}
}

func TestSampler_EnumerationError(t *testing.T) {
	var slept []time.Duration
	s := newTestSampler(&slept)

	_, err := s.Sample(&devicetest.Enumerator{Err: device.ErrNoBatteryClass})
	if !errors.Is(err, device.ErrNoBatteryClass) {
		t.Errorf("Sample() error = %v, want ErrNoBatteryClass", err)
	}
}

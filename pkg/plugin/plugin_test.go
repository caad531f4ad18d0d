package plugin

import (
	"errors"
	"testing"

	"github.com/biplobsd/battrate/pkg/device"
	"github.com/biplobsd/battrate/pkg/device/devicetest"
	"github.com/biplobsd/battrate/pkg/format"
	"github.com/biplobsd/battrate/pkg/powerrate"
	"github.com/biplobsd/battrate/pkg/sampler"
	"github.com/biplobsd/battrate/pkg/version"
)

func newTestContainer(e device.Enumerator, opts ...Option) *Container {
	s := sampler.New()
	s.Interval = 0
	return New(powerrate.New(e, s, nil, nil), opts...)
}

func discharging(rate int32) *devicetest.Enumerator {
	return &devicetest.Enumerator{Items: []*devicetest.Device{
		devicetest.NewDevice("bat0", device.Discharging, rate),
	}}
}

func TestBatteryRateItem(t *testing.T) {
	c := newTestContainer(discharging(-5000))
	c.Load()

	item := c.Item(0)
	if item == nil {
		t.Fatal("Item(0) = nil")
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "name", got: item.Name(), want: "Battery Power Rate"},
		{name: "id", got: item.ID(), want: "BatteryPowerPluginID"},
		{name: "label", got: item.LabelText(), want: "PWR:"},
		{name: "sample", got: item.ValueSampleText(), want: "12.5 W"},
		{name: "value before refresh", got: item.ValueText(), want: "0.00 W"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestContainer_Item(t *testing.T) {
	c := newTestContainer(discharging(-5000))

	for _, index := range []int{-1, 1, 4} {
		if got := c.Item(index); got != nil {
			t.Errorf("Item(%d) = %v, want nil", index, got)
		}
	}
	if len(c.Items()) != 1 {
		t.Errorf("len(Items()) = %d, want 1", len(c.Items()))
	}
}

func TestContainer_BeforeLoad(t *testing.T) {
	c := newTestContainer(discharging(-5000))

	if got := c.Item(0).ValueText(); got != "0.00 W" {
		t.Errorf("ValueText() = %q, want %q", got, "0.00 W")
	}
	if got := c.TooltipInfo(); got != "Battery power rate: 0.00 W" {
		t.Errorf("TooltipInfo() = %q", got)
	}
}

func TestContainer_DataRequired(t *testing.T) {
	c := newTestContainer(discharging(-5000))

	var got []powerrate.Reading
	c.OnRefresh(func(r powerrate.Reading) {
		got = append(got, r)
	})

	// Not loaded yet, so nothing happens.
	c.DataRequired()
	if _, ok := c.LastReading(); ok {
		t.Fatal("LastReading() populated before Load")
	}

	c.Load()
	c.DataRequired()

	if v := c.Item(0).ValueText(); v != "5.00 W-" {
		t.Errorf("ValueText() = %q, want %q", v, "5.00 W-")
	}
	if tip := c.TooltipInfo(); tip != "Battery power rate: 5.00 W-" {
		t.Errorf("TooltipInfo() = %q", tip)
	}
	if len(got) != 1 || got[0].Display != "5.00 W-" {
		t.Errorf("listener got %+v", got)
	}

	c.Unload()
	if c.Loaded() {
		t.Error("Loaded() = true after Unload")
	}
	// The last value stays readable after unloading.
	if v := c.Item(0).ValueText(); v != "5.00 W-" {
		t.Errorf("ValueText() after Unload = %q", v)
	}
}

func TestContainer_DataRequiredWithoutBattery(t *testing.T) {
	c := newTestContainer(&devicetest.Enumerator{Err: device.ErrNoBatteryClass})
	c.Load()
	c.DataRequired()

	if v := c.Item(0).ValueText(); v != "0.00 W" {
		t.Errorf("ValueText() = %q, want %q", v, "0.00 W")
	}
	r, ok := c.LastReading()
	if !ok || r.HasData {
		t.Errorf("LastReading() = %+v, %t", r, ok)
	}
}

func TestContainer_Info(t *testing.T) {
	c := newTestContainer(discharging(-5000))

	tests := []struct {
		index InfoIndex
		want  string
	}{
		{index: InfoName, want: "BatteryPowerPlugin"},
		{index: InfoDescription, want: "Battery Power Rate Plugin for TrafficMonitor"},
		{index: InfoAuthor, want: "biplobsd"},
		{index: InfoVersion, want: version.Version},
		{index: InfoURL, want: "https://github.com/biplobsd/BatteryPowerRatePluginForTrafficMonitor.git"},
		{index: InfoIndex(42), want: ""},
	}
	for _, tt := range tests {
		if got := c.Info(tt.index); got != tt.want {
			t.Errorf("Info(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestContainer_ShowOptions(t *testing.T) {
	c := newTestContainer(discharging(-5400))
	c.Load()

	if got := c.ShowOptions(powerrate.DefaultOptions); got != OptionUnchanged {
		t.Errorf("ShowOptions(default) = %v, want OptionUnchanged", got)
	}

	// Before any refresh the default follows the precision.
	integer := powerrate.Options{Precision: format.Integer, EstimateOnAC: true}
	if got := c.ShowOptions(integer); got != OptionChanged {
		t.Errorf("ShowOptions(integer) = %v, want OptionChanged", got)
	}
	if v := c.Item(0).ValueText(); v != "0 W" {
		t.Errorf("ValueText() = %q, want %q", v, "0 W")
	}

	c.DataRequired()
	if v := c.Item(0).ValueText(); v != "5 W-" {
		t.Errorf("ValueText() = %q, want %q", v, "5 W-")
	}
}

func TestContainer_OnExtendedInfo(t *testing.T) {
	var dirs []string
	c := newTestContainer(discharging(-5000), WithConfigLoader(func(dir string) error {
		dirs = append(dirs, dir)
		if dir == "bad" {
			return errors.New("boom")
		}
		return nil
	}))

	c.OnExtendedInfo(ExtendedConfigDir, "/etc/battrate")
	c.OnExtendedInfo(ExtendedConfigDir, "bad")

	if len(dirs) != 2 || dirs[0] != "/etc/battrate" {
		t.Errorf("config loader got %v", dirs)
	}
}

package plugin

// BatteryRateItem shows the battery power rate.
type BatteryRateItem struct {
	holder *DataHolder
}

var _ Item = &BatteryRateItem{}

func (i *BatteryRateItem) Name() string {
	return "Battery Power Rate"
}

func (i *BatteryRateItem) ID() string {
	return "BatteryPowerPluginID"
}

func (i *BatteryRateItem) LabelText() string {
	return "PWR:"
}

func (i *BatteryRateItem) ValueText() string {
	return i.holder.Display()
}

func (i *BatteryRateItem) ValueSampleText() string {
	return "12.5 W"
}

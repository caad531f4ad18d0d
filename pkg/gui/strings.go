package gui

const (
	offlineTitle   = "PWR: offline"
	loadingTitle   = "PWR: ..."
	offlineTooltip = "battrate daemon is not running"

	quitTooltip = `Quit the battrate tray.

The battrate daemon keeps running and clients can still read the battery power rate. Use the battrate command line to change settings while the tray is closed.`
	precisionTooltip = "Show the power rate rounded to whole watts instead of two decimals."
	estimateTooltip  = `Show an estimated system draw instead of 0 W while the battery is idle on AC power.

The estimate is derived from CPU and memory load.`
)

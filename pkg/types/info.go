package types

// PluginInfo is the plugin metadata served by /info.
type PluginInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Author      string `json:"author"`
	Copyright   string `json:"copyright"`
	Version     string `json:"version"`
	URL         string `json:"url"`
}

// RefreshHistory describes recent refresh ticks.
type RefreshHistory struct {
	IntervalSeconds int      `json:"intervalSeconds"`
	Records         []string `json:"records"`
	// Continuous is how many of the latest records arrived on schedule.
	Continuous int `json:"continuous"`
}

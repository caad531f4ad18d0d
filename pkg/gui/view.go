package gui

import (
	"fmt"
	"strings"

	"github.com/biplobsd/battrate/pkg/config"
	"github.com/biplobsd/battrate/pkg/format"
	"github.com/biplobsd/battrate/pkg/types"
)

// maxItems is how many item rows the tray menu holds. systray cannot
// remove menu items, so rows are created up front and hidden when unused.
const maxItems = 4

// view is what the tray shows for one daemon state.
type view struct {
	Title        string
	Tooltip      string
	Rows         []string
	Integer      bool
	EstimateOnAC bool
	Online       bool
}

// offlineView is shown while the daemon cannot be reached.
func offlineView() view {
	return view{Title: offlineTitle, Tooltip: offlineTooltip}
}

// buildView renders items the way a host does: label then value, items
// side by side in the title and one per row in the menu.
func buildView(items []types.Item, tooltip string, raw *config.RawFileConfig) view {
	v := view{Online: true, Tooltip: tooltip}

	texts := make([]string, 0, len(items))
	for i, it := range items {
		texts = append(texts, it.Text())
		if i < maxItems {
			v.Rows = append(v.Rows, fmt.Sprintf("%s: %s", it.Name, it.Value))
		}
	}
	v.Title = strings.Join(texts, "  ")
	if v.Title == "" {
		v.Title = loadingTitle
	}
	// Windows trays show no title, the tooltip must carry the value.
	if v.Tooltip == "" {
		v.Tooltip = v.Title
	}

	c := config.NewFileFromConfig(raw, "")
	v.Integer = c.Precision() == format.Integer
	v.EstimateOnAC = c.EstimateOnAC()

	return v
}

package gui

import (
	"context"
	"sync"
	"time"

	"github.com/getlantern/systray"
	"github.com/sirupsen/logrus"

	"github.com/biplobsd/battrate/pkg/client"
	"github.com/biplobsd/battrate/pkg/events"
	"github.com/biplobsd/battrate/pkg/format"
)

// pollInterval is how often the tray refreshes when no event arrived.
const pollInterval = 5 * time.Second

// tray hosts the plugin items in the system tray.
type tray struct {
	api *client.Client

	rows      []*systray.MenuItem
	integer   *systray.MenuItem
	estimate  *systray.MenuItem
	refreshMI *systray.MenuItem
	quit      *systray.MenuItem

	// mu serializes updates so menu state stays consistent.
	mu         sync.Mutex
	iconOnline *bool
	cancel     context.CancelFunc
}

func newTray(api *client.Client) *tray {
	return &tray{api: api}
}

func (t *tray) onReady() {
	systray.SetIcon(trayIcon(false))
	systray.SetTitle(loadingTitle)
	systray.SetTooltip("battrate")

	for i := 0; i < maxItems; i++ {
		row := systray.AddMenuItem("", "")
		row.Disable()
		row.Hide()
		t.rows = append(t.rows, row)
	}

	systray.AddSeparator()
	t.integer = systray.AddMenuItemCheckbox("Whole Watts", precisionTooltip, false)
	t.estimate = systray.AddMenuItemCheckbox("Estimate Idle Draw on AC", estimateTooltip, true)
	t.refreshMI = systray.AddMenuItem("Refresh Now", "Sample the batteries now")

	systray.AddSeparator()
	t.quit = systray.AddMenuItem("Quit", quitTooltip)

	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel

	go t.handleClicks(ctx)
	go t.bridgeEvents(ctx)
	go t.poll(ctx)

	t.update()
}

func (t *tray) onExit() {
	if t.cancel != nil {
		t.cancel()
	}
	logrus.Info("battrate tray exiting")
}

func (t *tray) handleClicks(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.integer.ClickedCh:
			p := format.Integer
			if t.integer.Checked() {
				p = format.Decimal
			}
			if _, err := t.api.SetPrecision(p); err != nil {
				logrus.WithError(err).Error("failed to set precision")
			}
			t.update()
		case <-t.estimate.ClickedCh:
			if _, err := t.api.SetEstimateOnAC(!t.estimate.Checked()); err != nil {
				logrus.WithError(err).Error("failed to set estimate-on-ac")
			}
			t.update()
		case <-t.refreshMI.ClickedCh:
			if _, err := t.api.Refresh(); err != nil {
				logrus.WithError(err).Error("failed to refresh")
			}
			t.update()
		case <-t.quit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

// bridgeEvents refreshes the tray on every rate update from the daemon.
func (t *tray) bridgeEvents(ctx context.Context) {
	for ev := range t.api.SubscribeEvents(ctx) {
		logrus.WithFields(logrus.Fields{
			"event": ev.Name,
			"data":  string(ev.Data),
		}).Trace("new event")

		if ev.Name == events.RateUpdated {
			t.update()
		}
	}
}

func (t *tray) poll(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.update()
		}
	}
}

// fetch reads everything the tray shows from the daemon.
func (t *tray) fetch() view {
	items, err := t.api.GetItems()
	if err != nil {
		logrus.WithError(err).Debug("cannot reach daemon")
		return offlineView()
	}
	tooltip, err := t.api.GetTooltip()
	if err != nil {
		logrus.WithError(err).Debug("failed to get tooltip")
	}
	raw, err := t.api.GetConfig()
	if err != nil {
		logrus.WithError(err).Debug("failed to get config")
	}
	return buildView(items, tooltip, raw)
}

func (t *tray) update() {
	v := t.fetch()

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.iconOnline == nil || *t.iconOnline != v.Online {
		systray.SetIcon(trayIcon(v.Online))
		t.iconOnline = &v.Online
	}
	systray.SetTitle(v.Title)
	systray.SetTooltip(v.Tooltip)

	for i, row := range t.rows {
		if i < len(v.Rows) {
			row.SetTitle(v.Rows[i])
			row.Show()
		} else {
			row.Hide()
		}
	}

	setChecked(t.integer, v.Integer)
	setChecked(t.estimate, v.EstimateOnAC)
	for _, mi := range []*systray.MenuItem{t.integer, t.estimate, t.refreshMI} {
		if v.Online {
			mi.Enable()
		} else {
			mi.Disable()
		}
	}
}

func setChecked(mi *systray.MenuItem, checked bool) {
	if checked {
		mi.Check()
	} else {
		mi.Uncheck()
	}
}

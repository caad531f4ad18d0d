// Package gui is a system tray host for the battery power rate items
// served by the daemon.
package gui

import (
	"github.com/getlantern/systray"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/biplobsd/battrate/pkg/client"
	"github.com/biplobsd/battrate/pkg/version"
)

func NewTrayCommand(unixSocketPath *string, groupID string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tray",
		Short:   "Show the battery power rate in the system tray",
		GroupID: groupID,
		Long: `Show the battery power rate in the system tray.

The tray reads from the battrate daemon, so the daemon must be running.`,
		Run: func(_ *cobra.Command, _ []string) {
			Run(*unixSocketPath)
		},
	}

	return cmd
}

// Run shows the tray and blocks until the user quits.
func Run(unixSocketPath string) {
	logrus.WithField("version", version.Version).WithField("gitCommit", version.GitCommit).Info("battrate tray")

	t := newTray(client.NewClient(unixSocketPath))
	systray.Run(t.onReady, t.onExit)
}

package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/biplobsd/battrate/pkg/client"
	"github.com/biplobsd/battrate/pkg/gui"
	"github.com/biplobsd/battrate/pkg/version"
)

var (
	logLevel       = "info"
	unixSocketPath = defaultSocketPath()
	configDir      = defaultConfigDir()

	apiClient *client.Client
)

var (
	gBasic        = "Basic:"
	gAdvanced     = "Advanced:"
	commandGroups = []string{
		gBasic,
		gAdvanced,
	}
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	if errors.Is(err, client.ErrDaemonNotRunning) {
		fmt.Fprintln(os.Stderr, "\nError: battrate daemon is not running")
		fmt.Fprintln(os.Stderr, "Start it with 'battrate daemon', or use 'battrate sample' to read the batteries directly.")
	} else if errors.Is(err, client.ErrPermissionDenied) {
		fmt.Fprintln(os.Stderr, "\nError: Permission Denied")
		fmt.Fprintln(os.Stderr, "  - Try running the command again as an administrator")
		fmt.Fprintln(os.Stderr, "  - Or restart the daemon with '--always-allow-non-root-access'")
	}
}

// getVersion returns the client and daemon versions.
func getVersion() (string, string, error) {
	daemonVersion, err := apiClient.GetVersion()
	if err != nil {
		return version.Version, "", err
	}
	return version.Version, daemonVersion, nil
}

func main() {
	// battrate does not need many CPUs.
	if os.Getenv("GOMAXPROCS") == "" {
		runtime.GOMAXPROCS(2)
	}

	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "battrate",
		Short: "battrate shows the battery charge and discharge power rate",
		Long: `battrate shows the battery charge and discharge power rate.

The daemon samples every battery a few times per refresh, sums the averaged
rates and serves the formatted value to the tray and the command line.

Website: https://github.com/biplobsd/battrate
Report issues: https://github.com/biplobsd/battrate/issues`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			err := setupLogger()
			if err != nil {
				return err
			}

			apiClient = client.NewClient(unixSocketPath)

			// Local commands do not talk to the daemon.
			if cmd.Annotations[annotationLocal] != "" {
				return nil
			}

			if clientVersion, daemonVersion, err := getVersion(); err == nil {
				if daemonVersion != clientVersion {
					logrus.WithFields(logrus.Fields{
						"clientVersion": clientVersion,
						"daemonVersion": daemonVersion,
					}).Warn("Version mismatch between client and daemon. Restart the daemon after upgrading.")
				}
			} else if errors.Is(err, client.ErrNotFound) {
				logrus.Error("battrate daemon is too old to report its version.")
			}

			return nil
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configDir, "config-dir", configDir, "config directory")
	globalFlags.StringVar(&unixSocketPath, "daemon-socket", unixSocketPath, "battrate daemon unix socket path")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewDaemonCommand(),
		NewVersionCommand(),
		NewStatusCommand(),
		NewSampleCommand(),
		NewItemsCommand(),
		NewInfoCommand(),
		NewWatchCommand(),
		NewRefreshCommand(),
		NewPrecisionCommand(),
		NewEstimateOnACCommand(),
		NewRefreshIntervalCommand(),
		NewRefreshHistoryCommand(),
		gui.NewTrayCommand(&unixSocketPath, gBasic),
	)

	return cmd
}

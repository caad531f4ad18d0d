// Package daemon hosts the battery power rate plugin. It plays the host:
// it loads the plugin, asks it for data on a timer and serves the items
// over HTTP on a unix socket.
package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/biplobsd/battrate/pkg/config"
	"github.com/biplobsd/battrate/pkg/events"
	"github.com/biplobsd/battrate/pkg/plugin"
	"github.com/biplobsd/battrate/pkg/powerrate"
)

var (
	conf      config.Config
	configDir string
	reader    *powerrate.Reader
	container *plugin.Container
	sseHub    = events.NewEventHub(16)
)

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.GET("/items", getItems)
	router.GET("/items/:index", getItem)
	router.GET("/value", getValue)
	router.GET("/tooltip", getTooltip)
	router.GET("/info", getInfo)
	router.GET("/reading", getReading)
	router.POST("/refresh", postRefresh)
	router.GET("/config", getConfig)
	router.PUT("/precision", setPrecision)
	router.PUT("/estimate-on-ac", setEstimateOnAC)
	router.PUT("/refresh-interval", setRefreshIntervalHandler)
	router.GET("/refresh-history", getRefreshHistory)
	router.GET("/events", streamEvents)
	router.GET("/version", getVersion)

	return router
}

// setup loads the config from dir and builds the loaded plugin.
func setup(dir string) error {
	configDir = dir

	f, err := config.NewFile(filepath.Join(dir, config.FileName))
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to parse config during startup")
	}
	conf = f
	logrus.WithFields(conf.LogrusFields()).Info("config loaded")

	reader, err = powerrate.NewFromConfig(conf)
	if err != nil {
		return err
	}

	container = plugin.New(reader, plugin.WithConfigLoader(reloadConfig))
	container.Load()
	container.OnRefresh(publishReading)

	return nil
}

// reloadConfig is the plugin's config loader. The daemon owns a single
// config file, so only its own directory is accepted.
func reloadConfig(dir string) error {
	if filepath.Clean(dir) != filepath.Clean(configDir) {
		return pkgerrors.Errorf("config dir %s is not the daemon config dir %s", dir, configDir)
	}

	before := conf.RefreshInterval()
	if err := conf.Load(); err != nil {
		return err
	}
	reader.Reconfigure(conf)
	if after := conf.RefreshInterval(); after != before {
		setRefreshInterval(after)
	}

	logrus.WithFields(conf.LogrusFields()).Info("config reloaded")
	return nil
}

func publishReading(r powerrate.Reading) {
	sseHub.Publish(events.RateUpdated, events.RateUpdatedEvent{
		Display:   r.Display,
		Milliwatt: r.Aggregate.RateMilliwatts,
		Estimated: r.Estimated,
		HasData:   r.HasData,
		Time:      r.Time,
	})
}

// Run starts the daemon and blocks until SIGINT or SIGTERM.
func Run(dir string, unixSocketPath string, allowNonRoot bool) error {
	if err := setup(dir); err != nil {
		return err
	}
	router := setupRoutes()

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			container.OnExtendedInfo(plugin.ExtendedConfigDir, configDir)
		}
	}()

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	l, err := listen(unixSocketPath, conf.AllowNonRootAccess() || allowNonRoot)
	if err != nil {
		return err
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	ctx, stopLoop := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		logrus.Debugln("refresh loop starts")
		refreshLoop(ctx, conf.RefreshInterval())
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("stopping refresh loop")
	stopLoop()
	<-loopDone

	// Event streams never end on their own.
	sseHub.Close()

	logrus.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	container.Unload()

	logrus.Info("exiting")
	return nil
}

// listen creates the unix socket at socketPath, along with its parent
// directory. A socket left over from a previous run is replaced.
func listen(socketPath string, allowNonRoot bool) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(socketPath), 0755); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to create socket directory for %s", socketPath)
	}

	// A stale socket from a previous run blocks Listen.
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		return nil, pkgerrors.Wrapf(err, "failed to remove stale socket %s", socketPath)
	}

	l, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to listen on %s", socketPath)
	}

	if allowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", socketPath)
		if err := os.Chmod(socketPath, 0777); err != nil {
			_ = l.Close()
			return nil, pkgerrors.Wrapf(err, "failed to change permissions of %s", socketPath)
		}
	}

	return l, nil
}

package daemon

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/biplobsd/battrate/pkg/config"
	"github.com/biplobsd/battrate/pkg/format"
	"github.com/biplobsd/battrate/pkg/plugin"
	"github.com/biplobsd/battrate/pkg/powerrate"
	"github.com/biplobsd/battrate/pkg/types"
	"github.com/biplobsd/battrate/pkg/version"
)

func itemToWire(index int, it plugin.Item) types.Item {
	return types.Item{
		Index:  index,
		Name:   it.Name(),
		ID:     it.ID(),
		Label:  it.LabelText(),
		Value:  it.ValueText(),
		Sample: it.ValueSampleText(),
	}
}

func getItems(c *gin.Context) {
	items := container.Items()
	out := make([]types.Item, 0, len(items))
	for i, it := range items {
		out = append(out, itemToWire(i, it))
	}
	c.IndentedJSON(http.StatusOK, out)
}

func getItem(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, fmt.Errorf("item index must be an integer, got %q", c.Param("index")))
		return
	}

	it := container.Item(index)
	if it == nil {
		err := fmt.Errorf("no item at index %d", index)
		c.IndentedJSON(http.StatusNotFound, err.Error())
		_ = c.AbortWithError(http.StatusNotFound, err)
		return
	}
	c.IndentedJSON(http.StatusOK, itemToWire(index, it))
}

func getValue(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, container.Item(0).ValueText())
}

func getTooltip(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, container.TooltipInfo())
}

func getInfo(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, types.PluginInfo{
		Name:        container.Info(plugin.InfoName),
		Description: container.Info(plugin.InfoDescription),
		Author:      container.Info(plugin.InfoAuthor),
		Copyright:   container.Info(plugin.InfoCopyright),
		Version:     container.Info(plugin.InfoVersion),
		URL:         container.Info(plugin.InfoURL),
	})
}

func getReading(c *gin.Context) {
	r, ok := container.LastReading()
	if !ok {
		// Nothing sampled yet, report the default display.
		r = powerrate.Reading{Display: reader.Default()}
	}
	c.IndentedJSON(http.StatusOK, r)
}

func postRefresh(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, refresh())
}

func getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

// applyOptions pushes the configured options to the plugin, persists the
// config and refreshes right away so clients see the new format.
func applyOptions(c *gin.Context) bool {
	opts := powerrate.OptionsFromConfig(conf)
	if container.ShowOptions(opts) == plugin.OptionUnchanged {
		logrus.Debug("plugin options unchanged")
	}

	if err := conf.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return false
	}

	refresh()
	return true
}

func setPrecision(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	p, err := format.ParsePrecision(body)
	if err != nil {
		badRequest(c, err)
		return
	}

	conf.SetPrecision(p)
	if !applyOptions(c) {
		return
	}

	logrus.Infof("set precision to %s", p)
	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("set precision to %s", p))
}

func setEstimateOnAC(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	enabled, err := strconv.ParseBool(body)
	if err != nil {
		badRequest(c, fmt.Errorf("expected true or false, got %q", body))
		return
	}

	conf.SetEstimateOnAC(enabled)
	if !applyOptions(c) {
		return
	}

	msg := "disabled estimation while idle on AC"
	if enabled {
		msg = "enabled estimation while idle on AC"
	}
	logrus.Info(msg)
	c.IndentedJSON(http.StatusCreated, msg)
}

func setRefreshIntervalHandler(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	sec, err := strconv.Atoi(body)
	if err != nil {
		badRequest(c, fmt.Errorf("refresh interval must be an integer number of seconds, got %q", body))
		return
	}
	d := time.Duration(sec) * time.Second
	if !config.ValidRefreshInterval(d) {
		badRequest(c, fmt.Errorf("refresh interval must be between 1 and 3600 seconds, got %d", sec))
		return
	}

	conf.SetRefreshInterval(d)
	if err := conf.Save(); err != nil {
		logrus.Errorf("saveConfig failed: %v", err)
		c.IndentedJSON(http.StatusInternalServerError, err.Error())
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	setRefreshInterval(d)

	logrus.Infof("set refresh interval to %s", d)
	c.IndentedJSON(http.StatusCreated, fmt.Sprintf("set refresh interval to %s", d))
}

func getRefreshHistory(c *gin.Context) {
	interval := refreshRecorder.GetInterval()
	c.IndentedJSON(http.StatusOK, types.RefreshHistory{
		IntervalSeconds: int(interval / time.Second),
		Records:         refreshRecorder.GetRecordsString(),
		Continuous:      refreshRecorder.GetRecordsIn(missedWindow * interval),
	})
}

// streamEvents sends hub events as server-sent events until the client
// goes away or the hub closes.
func streamEvents(c *gin.Context) {
	ch := sseHub.Subscribe()
	defer sseHub.Unsubscribe(ch)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	done := c.Request.Context().Done()
	c.Stream(func(_ io.Writer) bool {
		select {
		case <-done:
			return false
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Name, string(ev.Data))
			return true
		}
	})
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}

func readBody(c *gin.Context) (string, error) {
	b, err := io.ReadAll(io.LimitReader(c.Request.Body, 1024))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func badRequest(c *gin.Context, err error) {
	c.IndentedJSON(http.StatusBadRequest, err.Error())
	_ = c.AbortWithError(http.StatusBadRequest, err)
}

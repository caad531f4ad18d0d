package client

import (
	"encoding/json"
	"strconv"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/biplobsd/battrate/pkg/config"
	"github.com/biplobsd/battrate/pkg/format"
	"github.com/biplobsd/battrate/pkg/powerrate"
	"github.com/biplobsd/battrate/pkg/types"
)

func (c *Client) GetItems() ([]types.Item, error) {
	ret, err := c.Get("/items")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get items")
	}

	var items []types.Item
	if err := json.Unmarshal([]byte(ret), &items); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal items")
	}
	return items, nil
}

// GetItem returns the item at index. ErrNotFound is returned when the
// index is out of range.
func (c *Client) GetItem(index int) (*types.Item, error) {
	ret, err := c.Get("/items/" + strconv.Itoa(index))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get item %d", index)
	}

	var item types.Item
	if err := json.Unmarshal([]byte(ret), &item); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal item")
	}
	return &item, nil
}

func (c *Client) GetValue() (string, error) {
	ret, err := c.Get("/value")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get value")
	}
	return unquote(ret)
}

func (c *Client) GetTooltip() (string, error) {
	ret, err := c.Get("/tooltip")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get tooltip")
	}
	return unquote(ret)
}

func (c *Client) GetInfo() (*types.PluginInfo, error) {
	ret, err := c.Get("/info")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get plugin info")
	}

	var info types.PluginInfo
	if err := json.Unmarshal([]byte(ret), &info); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal plugin info")
	}
	return &info, nil
}

func (c *Client) GetReading() (*powerrate.Reading, error) {
	ret, err := c.Get("/reading")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get reading")
	}

	var r powerrate.Reading
	if err := json.Unmarshal([]byte(ret), &r); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal reading")
	}
	return &r, nil
}

// Refresh asks the daemon to refresh now and returns the new reading.
func (c *Client) Refresh() (*powerrate.Reading, error) {
	ret, err := c.Post("/refresh", "")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to refresh")
	}

	var r powerrate.Reading
	if err := json.Unmarshal([]byte(ret), &r); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal reading")
	}
	return &r, nil
}

func (c *Client) GetConfig() (*config.RawFileConfig, error) {
	ret, err := c.Get("/config")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get config")
	}

	var conf config.RawFileConfig
	if err := json.Unmarshal([]byte(ret), &conf); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config")
	}
	return &conf, nil
}

func (c *Client) SetPrecision(p format.Precision) (string, error) {
	return c.Put("/precision", string(p))
}

func (c *Client) SetEstimateOnAC(enabled bool) (string, error) {
	return c.Put("/estimate-on-ac", strconv.FormatBool(enabled))
}

func (c *Client) SetRefreshInterval(d time.Duration) (string, error) {
	return c.Put("/refresh-interval", strconv.Itoa(int(d/time.Second)))
}

func (c *Client) GetRefreshHistory() (*types.RefreshHistory, error) {
	ret, err := c.Get("/refresh-history")
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to get refresh history")
	}

	var h types.RefreshHistory
	if err := json.Unmarshal([]byte(ret), &h); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal refresh history")
	}
	return &h, nil
}

func (c *Client) GetVersion() (string, error) {
	ret, err := c.Get("/version")
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to get version")
	}
	return unquote(ret)
}

// unquote decodes a JSON string response.
func unquote(ret string) (string, error) {
	var s string
	if err := json.Unmarshal([]byte(ret), &s); err != nil {
		return "", pkgerrors.Wrapf(ErrUnexpectedResponse, "%s: %v", ret, err)
	}
	return s, nil
}

package client

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/biplobsd/battrate/pkg/events"
)

// reconnectDelay is how long SubscribeEvents waits before reconnecting.
var reconnectDelay = 2 * time.Second

// SubscribeEvents streams daemon events until ctx is done. The connection
// is re-established when the daemon goes away. The returned channel is
// closed once ctx is done.
func (c *Client) SubscribeEvents(ctx context.Context) <-chan events.Event {
	out := make(chan events.Event, 8)

	go func() {
		defer close(out)
		for {
			err := c.streamEvents(ctx, out)
			if ctx.Err() != nil {
				return
			}
			logrus.WithError(err).Debug("event stream ended, reconnecting")

			select {
			case <-ctx.Done():
				return
			case <-time.After(reconnectDelay):
			}
		}
	}()

	return out
}

func (c *Client) streamEvents(ctx context.Context, out chan<- events.Event) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://unix/events", nil)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to create request")
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to subscribe to events")
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logrus.Debugf("failed to close event stream: %v", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return pkgerrors.Errorf("got %d when subscribing to events", resp.StatusCode)
	}

	return readEvents(ctx, resp.Body, out)
}

// readEvents parses a text/event-stream body. Only the event and data
// fields are used.
func readEvents(ctx context.Context, r io.Reader, out chan<- events.Event) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)

	var name string
	var data []string
	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			if len(data) > 0 {
				ev := events.Event{
					Name: name,
					Data: json.RawMessage(strings.Join(data, "\n")),
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			name, data = "", nil
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			name = value
		case "data":
			data = append(data, value)
		}
	}

	if err := scanner.Err(); err != nil {
		return pkgerrors.Wrapf(err, "failed to read event stream")
	}
	return io.EOF
}

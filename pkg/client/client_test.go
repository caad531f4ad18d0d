package client

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/biplobsd/battrate/pkg/events"
	"github.com/biplobsd/battrate/pkg/format"
)

// newUnixServer serves h on a unix socket and returns a client for it.
func newUnixServer(t *testing.T, h http.Handler) *Client {
	t.Helper()

	dir, err := os.MkdirTemp("", "battrate")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	sock := filepath.Join(dir, "d.sock")
	l, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewUnstartedServer(h)
	srv.Listener = l
	srv.Start()
	t.Cleanup(srv.Close)

	return NewClient(sock)
}

func TestClient_APIs(t *testing.T) {
	var gotPrecision, gotEstimate, gotInterval string

	mux := http.NewServeMux()
	mux.HandleFunc("/items", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[{"index":0,"name":"Battery Power Rate","id":"BatteryPowerPluginID","label":"PWR:","value":"5.00 W-","sample":"12.5 W"}]`)
	})
	mux.HandleFunc("/items/0", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"index":0,"label":"PWR:","value":"5.00 W-"}`)
	})
	mux.HandleFunc("/items/3", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no item at index 3", http.StatusNotFound)
	})
	mux.HandleFunc("/value", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `"5.00 W-"`)
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `"v1.2.3"`)
	})
	mux.HandleFunc("/precision", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotPrecision = r.Method + " " + string(b)
		_, _ = io.WriteString(w, "ok")
	})
	mux.HandleFunc("/estimate-on-ac", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotEstimate = string(b)
	})
	mux.HandleFunc("/refresh-interval", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotInterval = string(b)
	})
	mux.HandleFunc("/refresh", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "bad method", http.StatusMethodNotAllowed)
			return
		}
		_, _ = io.WriteString(w, `{"display":"7.00 W+","hasData":true}`)
	})
	mux.HandleFunc("/boom", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	c := newUnixServer(t, mux)

	items, err := c.GetItems()
	if err != nil {
		t.Fatalf("GetItems() error = %v", err)
	}
	if len(items) != 1 || items[0].Text() != "PWR: 5.00 W-" {
		t.Errorf("GetItems() = %+v", items)
	}

	item, err := c.GetItem(0)
	if err != nil || item.Value != "5.00 W-" {
		t.Errorf("GetItem(0) = %+v, %v", item, err)
	}
	if _, err := c.GetItem(3); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetItem(3) error = %v, want ErrNotFound", err)
	}

	if v, err := c.GetValue(); err != nil || v != "5.00 W-" {
		t.Errorf("GetValue() = %q, %v", v, err)
	}
	if v, err := c.GetVersion(); err != nil || v != "v1.2.3" {
		t.Errorf("GetVersion() = %q, %v", v, err)
	}

	r, err := c.Refresh()
	if err != nil || r.Display != "7.00 W+" || !r.HasData {
		t.Errorf("Refresh() = %+v, %v", r, err)
	}

	if _, err := c.SetPrecision(format.Integer); err != nil {
		t.Errorf("SetPrecision() error = %v", err)
	}
	if gotPrecision != "PUT integer" {
		t.Errorf("precision request = %q", gotPrecision)
	}
	if _, err := c.SetEstimateOnAC(false); err != nil || gotEstimate != "false" {
		t.Errorf("SetEstimateOnAC() sent %q, %v", gotEstimate, err)
	}
	if _, err := c.SetRefreshInterval(5 * time.Second); err != nil || gotInterval != "5" {
		t.Errorf("SetRefreshInterval() sent %q, %v", gotInterval, err)
	}

	if _, err := c.Get("/boom"); err == nil || !strings.Contains(err.Error(), "got 500") {
		t.Errorf("Get(/boom) error = %v", err)
	}
}

func TestClient_DaemonNotRunning(t *testing.T) {
	c := NewClient(filepath.Join(t.TempDir(), "missing.sock"))

	_, err := c.GetValue()
	if !errors.Is(err, ErrDaemonNotRunning) {
		t.Errorf("GetValue() error = %v, want ErrDaemonNotRunning", err)
	}
}

func TestReadEvents(t *testing.T) {
	stream := strings.Join([]string{
		"event:rate.updated",
		`data:{"display":"5.00 W-"}`,
		"",
		": comment",
		"",
		"event: rate.updated",
		`data: {"display":"6.00 W-"}`,
		"",
		"",
	}, "\n")

	out := make(chan events.Event, 4)
	err := readEvents(context.Background(), strings.NewReader(stream), out)
	if !errors.Is(err, io.EOF) {
		t.Fatalf("readEvents() error = %v, want io.EOF", err)
	}
	close(out)

	var got []string
	for ev := range out {
		if ev.Name != events.RateUpdated {
			t.Errorf("Name = %q", ev.Name)
		}
		p, err := events.DecodeAs[events.RateUpdatedEvent](ev)
		if err != nil {
			t.Fatalf("DecodeAs() error = %v", err)
		}
		got = append(got, p.Display)
	}
	if strings.Join(got, ",") != "5.00 W-,6.00 W-" {
		t.Errorf("displays = %v", got)
	}
}

func TestReadEvents_UnterminatedEventDropped(t *testing.T) {
	stream := "event:rate.updated\ndata:{\"display\":\"5.00 W-\"}\n\n" +
		"event:rate.updated\ndata:{\"display\":\"6.00 W-\"}\n"

	out := make(chan events.Event, 4)
	if err := readEvents(context.Background(), strings.NewReader(stream), out); !errors.Is(err, io.EOF) {
		t.Fatalf("readEvents() error = %v, want io.EOF", err)
	}
	close(out)

	var got []events.Event
	for ev := range out {
		got = append(got, ev)
	}
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	p, err := events.DecodeAs[events.RateUpdatedEvent](got[0])
	if err != nil || p.Display != "5.00 W-" {
		t.Errorf("event = %+v, %v", p, err)
	}
}

func TestSubscribeEvents(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "event:rate.updated\ndata:{\"display\":\"1.00 W+\"}\n\n")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	})
	c := newUnixServer(t, mux)

	ctx, cancel := context.WithCancel(context.Background())
	ch := c.SubscribeEvents(ctx)

	select {
	case ev := <-ch:
		if ev.Name != events.RateUpdated {
			t.Errorf("Name = %q", ev.Name)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no event received")
	}

	cancel()
	for range ch {
	}
}

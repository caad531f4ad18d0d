package events

import (
	"encoding/json"
	"time"
)

// Event name constants
const (
	RateUpdated = "rate.updated"
)

// Event is a generic SSE event from daemon.
type Event struct {
	Name string          // SSE event name
	Data json.RawMessage // Raw JSON payload
}

// RateUpdatedEvent is the typed payload for rate.updated.
type RateUpdatedEvent struct {
	Display   string    `json:"display"`
	Milliwatt float64   `json:"milliwatt"`
	Estimated bool      `json:"estimated"`
	HasData   bool      `json:"hasData"`
	Time      time.Time `json:"time"`
}

// DecodeAs decodes the event payload into the caller-specified generic type T.
// If Data is empty, it returns the zero value of T with a nil error.
func DecodeAs[T any](e Event) (T, error) {
	var zero T
	if len(e.Data) == 0 {
		return zero, nil
	}
	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, err
	}
	return v, nil
}

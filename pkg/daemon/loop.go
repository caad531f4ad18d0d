package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/biplobsd/battrate/pkg/powerrate"
)

const (
	recorderCapacity = 60
	// missedWindow is how many refresh intervals are checked for gaps.
	missedWindow = 6
)

var (
	refreshRecorder = NewTimeSeriesRecorder(recorderCapacity, time.Second)
	// intervalCh carries refresh interval changes to the refresh loop.
	intervalCh = make(chan time.Duration, 1)
)

// TimeSeriesRecorder records the last N refresh times.
type TimeSeriesRecorder struct {
	MaxRecordCount int
	Records        []time.Time
	// Interval is the expected spacing between two records.
	Interval time.Duration
	mu       *sync.Mutex
}

// NewTimeSeriesRecorder returns a new TimeSeriesRecorder.
func NewTimeSeriesRecorder(maxRecordCount int, interval time.Duration) *TimeSeriesRecorder {
	return &TimeSeriesRecorder{
		MaxRecordCount: maxRecordCount,
		Records:        make([]time.Time, 0),
		Interval:       interval,
		mu:             &sync.Mutex{},
	}
}

// AddRecordNow adds a new record with the current time.
func (r *TimeSeriesRecorder) AddRecordNow() {
	r.AddRecord(time.Now())
}

// AddRecord adds a new record.
func (r *TimeSeriesRecorder) AddRecord(t time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Strip monotonic clock reading, so time.Since stays accurate across
	// system sleep.
	t = t.Round(0)

	if len(r.Records) >= r.MaxRecordCount {
		r.Records = r.Records[1:]
	}
	r.Records = append(r.Records, t)
}

// SetInterval changes the expected spacing and drops old records, which
// were taken at the previous spacing.
func (r *TimeSeriesRecorder) SetInterval(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Interval = d
	r.Records = make([]time.Time, 0)
}

// GetInterval returns the expected spacing.
func (r *TimeSeriesRecorder) GetInterval() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.Interval
}

// GetRecords returns a copy of the records.
func (r *TimeSeriesRecorder) GetRecords() []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]time.Time, len(r.Records))
	copy(out, r.Records)
	return out
}

// GetRecordsString returns the records in RFC3339 format.
func (r *TimeSeriesRecorder) GetRecordsString() []string {
	records := r.GetRecords()
	recordsString := make([]string, 0, len(records))
	for _, record := range records {
		recordsString = append(recordsString, record.Format(time.RFC3339))
	}
	return recordsString
}

// GetRecordsIn returns the number of continuous records in the last duration.
func (r *TimeSeriesRecorder) GetRecordsIn(last time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	tolerance := r.Interval + time.Second

	// The last record must be recent.
	if len(r.Records) > 0 && time.Since(r.Records[len(r.Records)-1]) >= tolerance {
		return 0
	}

	// Walk back from the newest record while adjacent records are less
	// than one interval (plus tolerance) apart.
	count := 0
	for i := len(r.Records) - 1; i >= 0; i-- {
		record := r.Records[i]
		if time.Since(record) > last {
			break
		}

		theRecordAfter := record
		if i+1 < len(r.Records) {
			theRecordAfter = r.Records[i+1]
		}

		if theRecordAfter.Sub(record) >= tolerance {
			break
		}
		count++
	}

	return count
}

// GetLastRecords returns the records within the last duration, newest first.
func (r *TimeSeriesRecorder) GetLastRecords(last time.Duration) []time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	var records []time.Time
	for i := len(r.Records) - 1; i >= 0; i-- {
		record := r.Records[i]
		if time.Since(record) > last {
			break
		}
		records = append(records, record)
	}

	return records
}

// GetFirstRecord returns the oldest record.
func (r *TimeSeriesRecorder) GetFirstRecord() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.Records) == 0 {
		return time.Time{}
	}

	return r.Records[0]
}

func formatRelativeTimes(times []time.Time) []string {
	var timesString []string
	for _, t := range times {
		timesString = append(timesString, time.Since(t).Round(time.Millisecond).String())
	}
	return timesString
}

// refreshLoop plays the host timer: it asks the plugin for data every
// interval until ctx is done.
func refreshLoop(ctx context.Context, interval time.Duration) {
	refreshRecorder.SetInterval(interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	refresh()
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-intervalCh:
			ticker.Reset(d)
			refreshRecorder.SetInterval(d)
			logrus.WithField("interval", d.String()).Info("refresh interval changed")
		case <-ticker.C:
			refresh()
			checkMissedRefreshes()
		}
	}
}

// setRefreshInterval hands a new interval to the refresh loop. Only the
// latest pending change is kept.
func setRefreshInterval(d time.Duration) {
	for {
		select {
		case intervalCh <- d:
			return
		default:
		}
		select {
		case <-intervalCh:
		default:
		}
	}
}

// refresh runs one data request and returns the stored reading.
func refresh() powerrate.Reading {
	container.DataRequired()
	refreshRecorder.AddRecordNow()

	r, _ := container.LastReading()
	return r
}

// checkMissedRefreshes logs when recent refreshes were further apart than
// the interval, which happens after system sleep or a stalled battery
// driver.
func checkMissedRefreshes() bool {
	interval := refreshRecorder.GetInterval()
	window := missedWindow * interval
	if time.Since(refreshRecorder.GetFirstRecord()) < window {
		// Not enough history yet.
		return false
	}

	count := refreshRecorder.GetRecordsIn(window)
	minCount := missedWindow - 1

	if count < minCount {
		logrus.WithFields(logrus.Fields{
			"refreshCount":    count,
			"minRefreshCount": minCount,
			"recentRecords":   formatRelativeTimes(refreshRecorder.GetLastRecords(window)),
		}).Info("possibly missed refresh")
		return true
	}
	return false
}

package batch

import (
	"time"

	"github.com/challan-dev/challan/internal/report"
)

// EventKind classifies batch events.
type EventKind string

const (
	EventStarted       EventKind = "started"
	EventFileStarted   EventKind = "file_started"
	EventFileSkipped   EventKind = "file_skipped"
	EventFileAnomaly   EventKind = "file_anomaly"
	EventFileCompleted EventKind = "file_completed"
	EventProgress      EventKind = "progress"
	EventReportWritten EventKind = "report_written"
	EventReportFailed  EventKind = "report_failed"
	EventCancelled     EventKind = "cancelled"
	EventFinished      EventKind = "finished"
)

// Anomaly reasons carried by EventFileAnomaly.
const (
	ReasonBadDate    = "bad_date"
	ReasonBadAmount  = "bad_amount"
	ReasonOutOfRange = "out_of_range"
)

// Event is one progress or log notification from a running batch.
type Event struct {
	Time     time.Time
	RunID    string
	Kind     EventKind
	File     string      // base name, for file events
	Report   report.Kind // for report events
	Path     string      // written report path
	Reason   string      // anomaly reason
	Count    int         // records folded, or rows affected by an anomaly
	Progress float64     // percent of files done, 0–100
	Message  string
}

// Observer receives batch events. Implementations must be safe to call from the
// goroutine running the batch.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe calls f(ev).
func (f ObserverFunc) Observe(ev Event) { f(ev) }

// ChannelObserver forwards events onto a channel so another goroutine can consume them.
type ChannelObserver chan<- Event

// Observe sends ev, blocking until the consumer takes it.
func (c ChannelObserver) Observe(ev Event) { c <- ev }

type nopObserver struct{}

func (nopObserver) Observe(Event) {}

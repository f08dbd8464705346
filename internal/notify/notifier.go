package notify

import (
	"context"
	"time"
)

// Collection names carried by change events.
const (
	Trades       = "trades"
	Rules        = "rules"
	DailyStats   = "daily_stats"
	ActivityLog  = "activity_log"
	Progress     = "progress"
	Achievements = "achievements"
)

const EventDataChanged = "data_changed"

// Event is the generic "data changed" signal. Consumers re-read the named
// collections; nothing else is carried.
type Event struct {
	Type        string    `json:"type"`
	Collections []string  `json:"collections"`
	At          time.Time `json:"at"`
}

type Notifier interface {
	Changed(ctx context.Context, collections ...string)
}

type Nop struct{}

func (Nop) Changed(context.Context, ...string) {}

// Multi forwards every signal to each notifier in order.
type Multi []Notifier

func (m Multi) Changed(ctx context.Context, collections ...string) {
	for _, n := range m {
		if n != nil {
			n.Changed(ctx, collections...)
		}
	}
}

func newEvent(collections []string) Event {
	cols := make([]string, len(collections))
	copy(cols, collections)
	return Event{Type: EventDataChanged, Collections: cols, At: time.Now().UTC()}
}

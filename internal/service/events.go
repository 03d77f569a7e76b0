package service

import (
	"slices"
	"sync"
	"time"

	"github.com/lox/holdem/internal/game"
)

// EventType names a table event.
type EventType string

const (
	EventHandStarted   EventType = "hand_started"
	EventActionApplied EventType = "action_applied"
	EventPhaseChanged  EventType = "phase_changed"
	EventHandFinished  EventType = "hand_finished"
	EventTableClosed   EventType = "table_closed"
)

// Event is published after a mutation has been committed.
type Event interface {
	EventType() EventType
	GameID() string
	Timestamp() time.Time
}

type eventBase struct {
	Game string
	At   time.Time
}

func (e eventBase) GameID() string       { return e.Game }
func (e eventBase) Timestamp() time.Time { return e.At }

// HandStarted is published when blinds are posted and cards dealt.
type HandStarted struct {
	eventBase
	HandNumber int
	Dealer     int
	Players    []string
	Pot        int
}

// ActionApplied is published for every accepted action, including ones
// forced by the turn timer.
type ActionApplied struct {
	eventBase
	HandNumber int
	PlayerID   string
	Action     game.Action
	Forced     bool
	Pot        int
}

// PhaseChanged is published when the board advances to a new street.
type PhaseChanged struct {
	eventBase
	HandNumber int
	Phase      game.Phase
	Board      string
}

// HandFinished is published once the pot has been distributed.
type HandFinished struct {
	eventBase
	HandNumber  int
	Result      *game.ShowdownResult
	WinnerIDs   []string
	Description string
}

// TableClosed is published when too few players have chips to continue.
type TableClosed struct {
	eventBase
	Reason string
}

func (HandStarted) EventType() EventType   { return EventHandStarted }
func (ActionApplied) EventType() EventType { return EventActionApplied }
func (PhaseChanged) EventType() EventType  { return EventPhaseChanged }
func (HandFinished) EventType() EventType  { return EventHandFinished }
func (TableClosed) EventType() EventType   { return EventTableClosed }

// Notifier receives events. Delivery is synchronous and best effort; a
// panicking notifier is recovered and logged. Events are delivered after the
// game's lock is released, so a notifier may call back into the Service.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) { f(e) }

// EventBus fans events out to its subscribers in subscription order.
type EventBus struct {
	mu          sync.RWMutex
	nextID      int
	subscribers []subscription
}

type subscription struct {
	id int
	n  Notifier
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe adds a subscriber and returns a function that removes it.
func (b *EventBus) Subscribe(n Notifier) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subscribers = append(b.subscribers, subscription{id: id, n: n})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.subscribers = slices.DeleteFunc(b.subscribers, func(s subscription) bool { return s.id == id })
	}
}

// Notify delivers e to every subscriber.
func (b *EventBus) Notify(e Event) {
	b.mu.RLock()
	subs := slices.Clone(b.subscribers)
	b.mu.RUnlock()
	for _, s := range subs {
		s.n.Notify(e)
	}
}

type discard struct{}

func (discard) Notify(Event) {}

// Package service keeps live games keyed by id and serialises every
// operation on a game. It publishes events after each committed mutation and
// acts for players who let their turn timer run out.
package service

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/thoas/go-funk"

	"github.com/lox/holdem/internal/deck"
	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/gameid"
)

// Service is the registry of live games.
type Service struct {
	logger   *log.Logger
	clock    quartz.Clock
	notifier Notifier
	timeout  time.Duration
	ids      *gameid.Generator

	mu    sync.RWMutex
	games map[string]*table
}

// table serialises access to one game.
type table struct {
	mu    sync.Mutex
	game  *game.Game
	seq   uint64 // bumped on every mutation; stale timers compare against it
	timer *quartz.Timer

	pending []Event // published once mu is released
}

// release unlocks the table and returns the events queued while it was held.
func (t *table) release() []Event {
	events := t.pending
	t.pending = nil
	t.mu.Unlock()
	return events
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for turn timers.
func WithClock(clock quartz.Clock) Option {
	return func(s *Service) { s.clock = clock }
}

// WithNotifier sets the event sink.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithActionTimeout enables turn timers. Zero disables them.
func WithActionTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithIDGenerator sets the game id generator.
func WithIDGenerator(g *gameid.Generator) Option {
	return func(s *Service) { s.ids = g }
}

// New creates an empty service.
func New(logger *log.Logger, opts ...Option) *Service {
	s := &Service{
		logger:   logger.WithPrefix("service"),
		clock:    quartz.NewReal(),
		notifier: discard{},
		ids:      gameid.NewGenerator(nil),
		games:    make(map[string]*table),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func notFound(gameID string) error {
	return &game.ActionError{Kind: game.ErrNotFound, Msg: fmt.Sprintf("game %q not found", gameID)}
}

func (s *Service) lookup(gameID string) (*table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.games[gameID]
	if !ok {
		return nil, notFound(gameID)
	}
	return t, nil
}

// CreateHand seats the players, deals the first hand and registers the game.
// It returns a snapshot of the new game.
func (s *Service) CreateHand(seats []game.Seat, smallBlind, bigBlind int, opts ...game.Option) (*game.Game, error) {
	id, err := s.ids.Generate()
	if err != nil {
		return nil, err
	}
	g, err := game.NewGame(seats, smallBlind, bigBlind, append(opts, game.WithID(id))...)
	if err != nil {
		return nil, err
	}

	t := &table{game: g}
	s.mu.Lock()
	s.games[id] = t
	s.mu.Unlock()

	s.logger.Info("Game created", "game", id, "players", len(seats), "blinds", fmt.Sprintf("%d/%d", smallBlind, bigBlind))

	t.mu.Lock()
	s.handStarted(t)
	snapshot := g.Clone()
	s.publish(t.release()...)
	return snapshot, nil
}

// ApplyAction applies one action on behalf of playerID and returns a
// snapshot of the game after it.
func (s *Service) ApplyAction(gameID, playerID string, action game.Action) (*game.Game, error) {
	t, err := s.lookup(gameID)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	if err := s.apply(t, playerID, action, false); err != nil {
		t.mu.Unlock()
		return nil, err
	}
	snapshot := t.game.Clone()
	s.publish(t.release()...)
	return snapshot, nil
}

// apply runs with t.mu held. Events are queued on t and published by the
// caller after release.
func (s *Service) apply(t *table, playerID string, action game.Action, forced bool) error {
	g := t.game
	logger := s.logger.With("game", g.ID, "hand", g.HandNumber, "player", playerID)
	phase := g.Phase

	if err := g.Apply(playerID, action); err != nil {
		logger.Debug("Action rejected", "action", game.FormatAction(action), "code", game.Code(err), "error", err)
		return err
	}
	t.seq++
	logger.Debug("Action applied", "action", game.FormatAction(action), "forced", forced, "pot", g.Pot)

	s.emit(t, ActionApplied{
		eventBase:  s.base(g.ID),
		HandNumber: g.HandNumber,
		PlayerID:   playerID,
		Action:     action,
		Forced:     forced,
		Pot:        g.Pot,
	})
	if g.Phase != phase && g.Phase != game.Showdown {
		s.emit(t, PhaseChanged{
			eventBase:  s.base(g.ID),
			HandNumber: g.HandNumber,
			Phase:      g.Phase,
			Board:      deck.FormatCards(g.CommunityCards),
		})
	}
	if g.Finished {
		s.handFinished(t)
		return nil
	}
	s.arm(t)
	return nil
}

// ResolveShowdown returns the settlement of the game's finished hand.
func (s *Service) ResolveShowdown(gameID string) (*game.ShowdownResult, error) {
	t, err := s.lookup(gameID)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.game.ResolveShowdown()
}

// StartNewHand deals the next hand. When fewer than two players have chips
// the game is removed and game.ErrNotEnoughPlayers returned.
func (s *Service) StartNewHand(gameID string, opts ...game.Option) (*game.Game, error) {
	t, err := s.lookup(gameID)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	if err := t.game.StartNewHand(opts...); err != nil {
		if errors.Is(err, game.ErrNotEnoughPlayers) {
			s.close(t, err.Error())
		}
		s.publish(t.release()...)
		return nil, err
	}
	t.seq++
	s.handStarted(t)
	snapshot := t.game.Clone()
	s.publish(t.release()...)
	return snapshot, nil
}

// Snapshot returns a deep copy of the game.
func (s *Service) Snapshot(gameID string) (*game.Game, error) {
	t, err := s.lookup(gameID)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.game.Clone(), nil
}

// IsTurn reports whether playerID is the player to act.
func (s *Service) IsTurn(gameID, playerID string) (bool, error) {
	t, err := s.lookup(gameID)
	if err != nil {
		return false, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.game.IsTurn(playerID), nil
}

// Games returns the ids of all live games, sorted.
func (s *Service) Games() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := funk.Keys(s.games).([]string)
	slices.Sort(ids)
	return ids
}

// Remove stops the game's timer and drops it from the registry.
func (s *Service) Remove(gameID string) error {
	t, err := s.lookup(gameID)
	if err != nil {
		return err
	}
	t.mu.Lock()
	s.close(t, "removed")
	s.publish(t.release()...)
	return nil
}

// Stop cancels every pending turn timer.
func (s *Service) Stop() {
	s.mu.RLock()
	tables := funk.Values(s.games).([]*table)
	s.mu.RUnlock()
	for _, t := range tables {
		t.mu.Lock()
		t.disarm()
		t.seq++
		t.mu.Unlock()
	}
}

// close runs with t.mu held.
func (s *Service) close(t *table, reason string) {
	t.disarm()
	t.seq++
	s.mu.Lock()
	delete(s.games, t.game.ID)
	s.mu.Unlock()

	s.logger.Info("Game closed", "game", t.game.ID, "reason", reason, "hands", t.game.HandNumber)
	s.emit(t, TableClosed{eventBase: s.base(t.game.ID), Reason: reason})
}

func (s *Service) handStarted(t *table) {
	g := t.game
	players := make([]string, len(g.Players))
	for i, p := range g.Players {
		players[i] = p.ID
	}
	s.logger.Debug("Hand started", "game", g.ID, "hand", g.HandNumber, "dealer", g.Dealer, "players", len(players))
	s.emit(t, HandStarted{
		eventBase:  s.base(g.ID),
		HandNumber: g.HandNumber,
		Dealer:     g.Dealer,
		Players:    players,
		Pot:        g.Pot,
	})
	if g.Finished {
		// blinds put everyone all-in and the board ran out
		s.handFinished(t)
		return
	}
	s.arm(t)
}

func (s *Service) handFinished(t *table) {
	g := t.game
	t.disarm()
	res, err := g.ResolveShowdown()
	if err != nil {
		s.logger.Error("Finished hand has no result", "game", g.ID, "error", err)
		return
	}
	if err := g.CheckConservation(); err != nil {
		s.logger.Error("Chip conservation violated", "game", g.ID, "hand", g.HandNumber, "error", err)
	}
	s.logger.Info("Hand complete",
		"game", g.ID,
		"hand", g.HandNumber,
		"pot", res.TotalPot,
		"winners", g.WinnerName,
		"hand_description", g.WinningHandDescription)

	s.emit(t, HandFinished{
		eventBase:   s.base(g.ID),
		HandNumber:  g.HandNumber,
		Result:      res,
		WinnerIDs:   funk.UniqString(g.WinnerIDs),
		Description: g.WinningHandDescription,
	})
}

func (s *Service) base(gameID string) eventBase {
	return eventBase{Game: gameID, At: s.clock.Now()}
}

// emit queues e for delivery once t.mu is released, so a notifier may call
// back into the service for the same game.
func (s *Service) emit(t *table, e Event) {
	t.pending = append(t.pending, e)
}

// publish must be called without any table lock held.
func (s *Service) publish(events ...Event) {
	for _, e := range events {
		s.notify(e)
	}
}

func (s *Service) notify(e Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Notifier panicked", "event", e.EventType(), "game", e.GameID(), "panic", r)
		}
	}()
	s.notifier.Notify(e)
}

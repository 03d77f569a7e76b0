package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem/internal/deck"
	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/randutil"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]EventType, len(r.events))
	for i, e := range r.events {
		types[i] = e.EventType()
	}
	return types
}

func (r *recorder) last() Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func threeSeats() []game.Seat {
	return []game.Seat{
		{ID: "alice", Name: "Alice", Chips: 1000},
		{ID: "bob", Name: "Bob", Chips: 1000},
		{ID: "charlie", Name: "Charlie", Chips: 1000},
	}
}

func TestCreateAndApply(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	svc := New(testLogger(), WithClock(quartz.NewMock(t)), WithNotifier(rec))

	g, err := svc.CreateHand(threeSeats(), 5, 10, game.WithSeed(1))
	require.NoError(t, err)
	require.NotEmpty(t, g.ID)
	assert.Equal(t, []string{g.ID}, svc.Games())

	ok, err := svc.IsTurn(g.ID, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	after, err := svc.ApplyAction(g.ID, "alice", game.Call{})
	require.NoError(t, err)
	assert.Equal(t, 25, after.Pot)
	assert.Equal(t, 15, g.Pot, "earlier snapshot is unaffected")

	after.Players[0].Chips = 0
	snap, err := svc.Snapshot(g.ID)
	require.NoError(t, err)
	assert.Equal(t, 990, snap.Players[0].Chips, "snapshots are copies")

	assert.Equal(t, []EventType{EventHandStarted, EventActionApplied}, rec.types())
	applied := rec.last().(ActionApplied)
	assert.Equal(t, "alice", applied.PlayerID)
	assert.Equal(t, game.Call{}, applied.Action)
	assert.False(t, applied.Forced)
	assert.Equal(t, g.ID, applied.GameID())
}

func TestErrors(t *testing.T) {
	t.Parallel()
	svc := New(testLogger(), WithClock(quartz.NewMock(t)))

	_, err := svc.ApplyAction("nope", "alice", game.Fold{})
	assert.ErrorIs(t, err, game.ErrNotFound)
	assert.Equal(t, "NOT_FOUND", game.Code(err))
	_, err = svc.Snapshot("nope")
	assert.ErrorIs(t, err, game.ErrNotFound)
	_, err = svc.ResolveShowdown("nope")
	assert.ErrorIs(t, err, game.ErrNotFound)
	_, err = svc.StartNewHand("nope")
	assert.ErrorIs(t, err, game.ErrNotFound)
	assert.ErrorIs(t, svc.Remove("nope"), game.ErrNotFound)

	_, err = svc.CreateHand(threeSeats()[:1], 5, 10)
	assert.ErrorIs(t, err, game.ErrBadRequest)
	assert.Empty(t, svc.Games())

	g, err := svc.CreateHand(threeSeats(), 5, 10)
	require.NoError(t, err)

	_, err = svc.ApplyAction(g.ID, "mallory", game.Fold{})
	assert.ErrorIs(t, err, game.ErrNotFound)
	_, err = svc.ApplyAction(g.ID, "bob", game.Fold{})
	assert.Equal(t, "CONFLICT", game.Code(err))
	_, err = svc.ApplyAction(g.ID, "alice", game.Raise{Amount: 11})
	assert.Equal(t, "BAD_REQUEST", game.Code(err))
	_, err = svc.ResolveShowdown(g.ID)
	assert.ErrorIs(t, err, game.ErrConflict)
	_, err = svc.StartNewHand(g.ID)
	assert.ErrorIs(t, err, game.ErrConflict)
}

func TestHandEvents(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	svc := New(testLogger(), WithClock(quartz.NewMock(t)), WithNotifier(rec))
	g, err := svc.CreateHand(threeSeats(), 5, 10, game.WithSeed(3))
	require.NoError(t, err)

	for _, step := range []struct {
		player string
		action game.Action
	}{
		{"alice", game.Call{}},
		{"bob", game.Call{}},
		{"charlie", game.Check{}},
		{"bob", game.Bet{Amount: 20}},
		{"charlie", game.Fold{}},
		{"alice", game.Fold{}},
	} {
		_, err := svc.ApplyAction(g.ID, step.player, step.action)
		require.NoError(t, err, "%s %s", step.player, game.FormatAction(step.action))
	}

	assert.Equal(t, []EventType{
		EventHandStarted,
		EventActionApplied, EventActionApplied, EventActionApplied,
		EventPhaseChanged,
		EventActionApplied, EventActionApplied, EventActionApplied,
		EventHandFinished,
	}, rec.types())

	finished := rec.last().(HandFinished)
	assert.Equal(t, []string{"bob"}, finished.WinnerIDs)
	assert.Equal(t, game.FoldOutDescription, finished.Description)
	assert.Equal(t, 50, finished.Result.TotalPot)

	res, err := svc.ResolveShowdown(g.ID)
	require.NoError(t, err)
	assert.Equal(t, res, finished.Result)

	next, err := svc.StartNewHand(g.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, next.HandNumber)
	assert.Equal(t, EventHandStarted, rec.last().EventType())
}

func TestPanickingNotifier(t *testing.T) {
	t.Parallel()
	bus := NewEventBus()
	rec := &recorder{}
	bus.Subscribe(rec)
	unsubscribe := bus.Subscribe(NotifierFunc(func(Event) { panic("sink down") }))

	svc := New(testLogger(), WithClock(quartz.NewMock(t)), WithNotifier(bus))
	g, err := svc.CreateHand(threeSeats(), 5, 10)
	require.NoError(t, err)

	_, err = svc.ApplyAction(g.ID, "alice", game.Fold{})
	require.NoError(t, err)
	snap, err := svc.Snapshot(g.ID)
	require.NoError(t, err)
	assert.True(t, snap.Players[0].Folded)
	assert.Len(t, rec.types(), 2)

	unsubscribe()
	_, err = svc.ApplyAction(g.ID, "bob", game.Call{})
	require.NoError(t, err)
	assert.Len(t, rec.types(), 3)
}

func TestNotifierCanReadGame(t *testing.T) {
	t.Parallel()
	var (
		svc     *Service
		mu      sync.Mutex
		pots    []int
		results []int
	)
	reader := NotifierFunc(func(e Event) {
		snap, err := svc.Snapshot(e.GameID())
		if err != nil {
			return
		}
		_, err = svc.IsTurn(e.GameID(), "alice")
		assert.NoError(t, err)

		mu.Lock()
		defer mu.Unlock()
		pots = append(pots, snap.Pot)
		if _, ok := e.(HandFinished); ok {
			res, err := svc.ResolveShowdown(e.GameID())
			assert.NoError(t, err)
			results = append(results, res.TotalPot)
		}
	})
	svc = New(testLogger(), WithClock(quartz.NewMock(t)), WithNotifier(reader))

	done := make(chan struct{})
	go func() {
		defer close(done)
		g, err := svc.CreateHand(threeSeats(), 5, 10)
		if !assert.NoError(t, err) {
			return
		}
		_, err = svc.ApplyAction(g.ID, "alice", game.Fold{})
		assert.NoError(t, err)
		_, err = svc.ApplyAction(g.ID, "bob", game.Fold{})
		assert.NoError(t, err)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("notifier reading the game blocked the service")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{15, 15, 0, 0}, pots)
	assert.Equal(t, []int{15}, results)
}

func TestTableClosesWhenPlayersBust(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	svc := New(testLogger(), WithClock(quartz.NewMock(t)), WithNotifier(rec))

	// Heads-up deals start left of the button: Bob, Alice, Bob, Alice.
	cards := deck.MustParseCards("KsAsKhAh2c7d9hJd3h")
	for _, c := range deck.FullDeck() {
		if !containsCard(cards, c) {
			cards = append(cards, c)
		}
	}
	d, err := deck.NewDeckFromCards(cards)
	require.NoError(t, err)

	seats := []game.Seat{{ID: "alice", Chips: 100}, {ID: "bob", Chips: 100}}
	g, err := svc.CreateHand(seats, 5, 10, game.WithDeck(d))
	require.NoError(t, err)

	_, err = svc.ApplyAction(g.ID, "alice", game.AllIn{})
	require.NoError(t, err)
	final, err := svc.ApplyAction(g.ID, "bob", game.Call{})
	require.NoError(t, err)
	require.True(t, final.Finished)
	assert.Equal(t, 200, final.Players[0].Chips)

	_, err = svc.StartNewHand(g.ID)
	assert.ErrorIs(t, err, game.ErrNotEnoughPlayers)
	assert.Empty(t, svc.Games())
	assert.Equal(t, EventTableClosed, rec.last().EventType())

	_, err = svc.Snapshot(g.ID)
	assert.ErrorIs(t, err, game.ErrNotFound)
}

func containsCard(cards []deck.Card, c deck.Card) bool {
	for _, x := range cards {
		if x == c {
			return true
		}
	}
	return false
}

func TestTimeoutFoldsFacingBet(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	rec := &recorder{}
	svc := New(testLogger(), WithClock(clock), WithNotifier(rec), WithActionTimeout(10*time.Second))
	t.Cleanup(svc.Stop)

	g, err := svc.CreateHand(threeSeats(), 5, 10)
	require.NoError(t, err)

	clock.Advance(10 * time.Second).MustWait(ctx)

	snap, err := svc.Snapshot(g.ID)
	require.NoError(t, err)
	assert.True(t, snap.Players[0].Folded, "Alice timed out facing the big blind")
	forced := rec.last().(ActionApplied)
	assert.True(t, forced.Forced)
	assert.Equal(t, game.Fold{}, forced.Action)
	assert.Equal(t, "Bob", snap.CurrentPlayer().Name)

	clock.Advance(10 * time.Second).MustWait(ctx)
	snap, err = svc.Snapshot(g.ID)
	require.NoError(t, err)
	assert.True(t, snap.Finished)
	assert.Equal(t, []string{"charlie"}, snap.WinnerIDs)
}

func TestTimeoutChecksWhenFree(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	svc := New(testLogger(), WithClock(clock), WithActionTimeout(10*time.Second))
	t.Cleanup(svc.Stop)

	g, err := svc.CreateHand(threeSeats(), 5, 10)
	require.NoError(t, err)
	_, err = svc.ApplyAction(g.ID, "alice", game.Call{})
	require.NoError(t, err)
	_, err = svc.ApplyAction(g.ID, "bob", game.Call{})
	require.NoError(t, err)

	clock.Advance(10 * time.Second).MustWait(ctx)

	snap, err := svc.Snapshot(g.ID)
	require.NoError(t, err)
	assert.False(t, snap.Players[2].Folded)
	assert.Equal(t, game.Flop, snap.Phase, "big blind checked its option")
}

func TestTimerResetsOnAction(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	svc := New(testLogger(), WithClock(clock), WithActionTimeout(10*time.Second))
	t.Cleanup(svc.Stop)

	g, err := svc.CreateHand(threeSeats(), 5, 10)
	require.NoError(t, err)

	clock.Advance(5 * time.Second).MustWait(ctx)
	_, err = svc.ApplyAction(g.ID, "alice", game.Call{})
	require.NoError(t, err)

	clock.Advance(5 * time.Second).MustWait(ctx)
	snap, err := svc.Snapshot(g.ID)
	require.NoError(t, err)
	assert.False(t, snap.Players[1].Folded, "Bob still has time")
	assert.Equal(t, "Bob", snap.CurrentPlayer().Name)

	clock.Advance(5 * time.Second).MustWait(ctx)
	snap, err = svc.Snapshot(g.ID)
	require.NoError(t, err)
	assert.True(t, snap.Players[1].Folded)
}

func TestConcurrentGames(t *testing.T) {
	t.Parallel()
	svc := New(testLogger(), WithClock(quartz.NewMock(t)))

	var eg errgroup.Group
	for i := 0; i < 8; i++ {
		eg.Go(func() error {
			rng := randutil.New(int64(i))
			g, err := svc.CreateHand(threeSeats(), 5, 10, game.WithSeed(int64(i)))
			if err != nil {
				return err
			}
			for hand := 0; hand < 20; hand++ {
				for !g.Finished {
					options := g.ValidActions(g.CurrentActor)
					choice := options[rng.IntN(len(options))]
					amount := choice.MinAmount + rng.IntN(choice.MaxAmount-choice.MinAmount+1)
					if g, err = svc.ApplyAction(g.ID, g.CurrentPlayer().ID, choice.Action(amount)); err != nil {
						return fmt.Errorf("game %d: %w", i, err)
					}
				}
				if got := g.TotalChips(); got != 3000 {
					return fmt.Errorf("game %d: %d chips after hand %d", i, got, g.HandNumber)
				}
				if g, err = svc.StartNewHand(g.ID); err != nil {
					if errors.Is(err, game.ErrNotEnoughPlayers) {
						return nil
					}
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())
}

package service

import (
	"github.com/thoas/go-funk"

	"github.com/lox/holdem/internal/game"
)

// arm starts the turn timer for the player to act. Runs with t.mu held.
func (s *Service) arm(t *table) {
	t.disarm()
	if s.timeout <= 0 || t.game.Finished {
		return
	}
	p := t.game.CurrentPlayer()
	if p == nil {
		return
	}
	gameID, playerID, seq := t.game.ID, p.ID, t.seq
	t.timer = s.clock.AfterFunc(s.timeout, func() {
		s.expire(gameID, playerID, seq)
	}, "turn", gameID)
}

func (t *table) disarm() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// expire acts for a player whose timer ran out: a check when that is legal,
// otherwise a fold. Timers armed before the latest mutation are ignored.
func (s *Service) expire(gameID, playerID string, seq uint64) {
	t, err := s.lookup(gameID)
	if err != nil {
		return
	}
	t.mu.Lock()
	if t.seq != seq || !t.game.IsTurn(playerID) {
		t.mu.Unlock()
		return
	}
	t.timer = nil

	action := forcedAction(t.game)
	s.logger.Warn("Action timeout", "game", gameID, "player", playerID, "timeout", s.timeout, "action", game.FormatAction(action))
	if err := s.apply(t, playerID, action, true); err != nil {
		s.logger.Error("Forced action rejected", "game", gameID, "player", playerID, "error", err)
	}
	s.publish(t.release()...)
}

func forcedAction(g *game.Game) game.Action {
	kinds := funk.Map(g.ValidActions(g.CurrentActor), func(v game.ValidAction) game.ActionKind {
		return v.Kind
	}).([]game.ActionKind)
	if funk.Contains(kinds, game.ActionCheck) {
		return game.Check{}
	}
	return game.Fold{}
}

package game

// Apply validates and applies one action for playerID. A rejected action
// returns an *ActionError and leaves the game unchanged. An accepted action
// advances the turn and, when the round is over, deals the next street or
// settles the hand.
func (g *Game) Apply(playerID string, action Action) error {
	idx := g.PlayerIndex(playerID)
	if idx < 0 {
		return notFound("player %q is not seated", playerID)
	}
	if g.Finished {
		return conflict("hand %d is finished", g.HandNumber)
	}
	if idx != g.CurrentActor {
		return conflict("not your turn")
	}
	p := &g.Players[idx]
	if p.Folded {
		return conflict("%s has folded", p.Name)
	}
	if p.AllIn {
		return conflict("%s is all-in", p.Name)
	}
	if action == nil {
		return badRequest("missing action")
	}

	action = g.normalize(idx, action)
	if err := g.validate(idx, action); err != nil {
		return err
	}

	switch a := action.(type) {
	case Fold:
		p.Folded = true
	case Check:
	case Call:
		g.commit(idx, min(g.toCall(idx), p.Chips))
	case Bet:
		g.commit(idx, a.Amount-p.BetAmount)
		g.CurrentBet = a.Amount
		g.MinRaise = max(a.Amount, g.BigBlind)
		g.reopen(idx)
	case Raise:
		increment := a.Amount - g.CurrentBet
		g.commit(idx, a.Amount-p.BetAmount)
		g.CurrentBet = a.Amount
		// A short all-in raise moves the bet but does not reopen action
		// for players who already acted.
		if increment >= g.MinRaise {
			g.MinRaise = increment
			g.reopen(idx)
		}
	}
	p.HasActed = true

	g.advance(idx)
	return nil
}

// normalize turns AllIn into the call, bet or raise it amounts to.
func (g *Game) normalize(idx int, action Action) Action {
	if _, ok := action.(AllIn); !ok {
		return action
	}
	p := &g.Players[idx]
	total := p.BetAmount + p.Chips
	switch {
	case total <= g.CurrentBet || !g.opponentCanAct(idx):
		return Call{}
	case g.CurrentBet == 0:
		return Bet{Amount: total}
	default:
		return Raise{Amount: total}
	}
}

func (g *Game) validate(idx int, action Action) error {
	p := &g.Players[idx]
	stack := p.BetAmount + p.Chips

	switch a := action.(type) {
	case Fold, Call:
		return nil
	case Check:
		if p.BetAmount < g.CurrentBet {
			return conflict("cannot check facing a bet of %d", g.CurrentBet)
		}
		return nil
	case Bet:
		if g.CurrentBet > 0 {
			return conflict("cannot bet into a bet of %d", g.CurrentBet)
		}
		if a.Amount <= 0 {
			return badRequest("bet must be positive, got %d", a.Amount)
		}
		if a.Amount > stack {
			return badRequest("bet of %d exceeds stack of %d", a.Amount, stack)
		}
		if a.Amount < g.BigBlind && a.Amount != stack {
			return badRequest("minimum bet is %d", g.BigBlind)
		}
		if !g.opponentCanAct(idx) {
			return conflict("no opponent can call a bet")
		}
		return nil
	case Raise:
		if g.CurrentBet == 0 {
			return conflict("nothing to raise")
		}
		if a.Amount <= g.CurrentBet {
			return badRequest("raise to %d does not exceed the bet of %d", a.Amount, g.CurrentBet)
		}
		if a.Amount > stack {
			return badRequest("raise to %d exceeds stack of %d", a.Amount, stack)
		}
		if p.HasActed {
			return conflict("betting was not reopened")
		}
		if !g.opponentCanAct(idx) {
			return conflict("no opponent can call a raise")
		}
		if minTo := g.CurrentBet + g.MinRaise; a.Amount < minTo && a.Amount != stack {
			return badRequest("minimum raise is to %d", minTo)
		}
		return nil
	default:
		return badRequest("unsupported action %T", action)
	}
}

// commit moves chips from a player's stack into the pot.
func (g *Game) commit(idx, amount int) {
	p := &g.Players[idx]
	p.Chips -= amount
	p.BetAmount += amount
	p.TotalBetInRound += amount
	g.Pot += amount
	if p.Chips == 0 {
		p.AllIn = true
	}
}

func (g *Game) toCall(idx int) int {
	return max(g.CurrentBet-g.Players[idx].BetAmount, 0)
}

// reopen invalidates the earlier actions of everyone still able to act.
func (g *Game) reopen(idx int) {
	for i := range g.Players {
		if i != idx && g.Players[i].CanAct() {
			g.Players[i].HasActed = false
		}
	}
}

func (g *Game) opponentCanAct(idx int) bool {
	for i := range g.Players {
		if i != idx && g.Players[i].CanAct() {
			return true
		}
	}
	return false
}

func (g *Game) advance(idx int) {
	if g.InHandCount() == 1 {
		g.foldOut()
		return
	}
	if g.roundComplete() {
		g.endRound()
		return
	}
	g.CurrentActor = g.nextActor(idx)
}

// roundComplete reports whether every player able to act has acted and
// matched the bet. A lone player able to act who has matched has nobody left
// to bet against.
func (g *Game) roundComplete() bool {
	canAct, pending := 0, false
	for i := range g.Players {
		p := &g.Players[i]
		if !p.CanAct() {
			continue
		}
		canAct++
		if p.BetAmount < g.CurrentBet {
			return false
		}
		if !p.HasActed {
			pending = true
		}
	}
	return canAct <= 1 || !pending
}

// nextActor returns the next player after idx who still owes an action.
func (g *Game) nextActor(idx int) int {
	n := len(g.Players)
	for k := 1; k <= n; k++ {
		i := (idx + k) % n
		p := &g.Players[i]
		if p.CanAct() && (!p.HasActed || p.BetAmount < g.CurrentBet) {
			return i
		}
	}
	return g.seekActor(idx + 1)
}

// endRound deals the following streets. When fewer than two players can act
// the board is run out and the hand goes to showdown.
func (g *Game) endRound() {
	for {
		if g.Phase == River {
			g.showdown()
			return
		}
		g.nextStreet()
		if g.canActCount() >= 2 {
			g.CurrentActor = g.seekActor(g.Dealer + 1)
			return
		}
	}
}

func (g *Game) nextStreet() {
	for i := range g.Players {
		g.Players[i].resetForRound()
	}
	g.CurrentBet = 0
	g.MinRaise = g.BigBlind

	switch g.Phase {
	case PreFlop:
		g.CommunityCards = append(g.CommunityCards, g.draw(3)...)
		g.Phase = Flop
	case Flop:
		g.CommunityCards = append(g.CommunityCards, g.draw(1)...)
		g.Phase = Turn
	case Turn:
		g.CommunityCards = append(g.CommunityCards, g.draw(1)...)
		g.Phase = River
	}
}

// ValidActions returns the legal choices for the player at idx, or nil when
// it is not their turn.
func (g *Game) ValidActions(idx int) []ValidAction {
	if g.Finished || idx != g.CurrentActor || idx < 0 || idx >= len(g.Players) {
		return nil
	}
	p := &g.Players[idx]
	stack := p.BetAmount + p.Chips
	live := g.opponentCanAct(idx)

	actions := []ValidAction{{Kind: ActionFold}}
	if owed := g.toCall(idx); owed == 0 {
		actions = append(actions, ValidAction{Kind: ActionCheck, MinAmount: p.BetAmount, MaxAmount: p.BetAmount})
	} else {
		to := p.BetAmount + min(owed, p.Chips)
		actions = append(actions, ValidAction{Kind: ActionCall, MinAmount: to, MaxAmount: to})
	}

	aggressive := false
	switch {
	case !live:
	case g.CurrentBet == 0 && p.Chips > 0:
		actions = append(actions, ValidAction{Kind: ActionBet, MinAmount: min(g.BigBlind, stack), MaxAmount: stack})
		aggressive = true
	case g.CurrentBet > 0 && !p.HasActed && stack > g.CurrentBet:
		actions = append(actions, ValidAction{Kind: ActionRaise, MinAmount: min(g.CurrentBet+g.MinRaise, stack), MaxAmount: stack})
		aggressive = true
	}
	if p.Chips > 0 && (aggressive || stack <= g.CurrentBet) {
		actions = append(actions, ValidAction{Kind: ActionAllIn, MinAmount: stack, MaxAmount: stack})
	}
	return actions
}

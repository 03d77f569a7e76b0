package main

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem/internal/config"
	"github.com/lox/holdem/internal/fileutil"
	"github.com/lox/holdem/internal/game"
	"github.com/lox/holdem/internal/randutil"
	"github.com/lox/holdem/internal/service"
)

type SimulateCmd struct {
	Config string `short:"c" default:"holdem.hcl" type:"path" help:"HCL table configuration (defaults apply when missing)"`
	Tables int    `short:"t" help:"Number of tables to run; configured tables are reused in turn (0 runs each once)"`
	Hands  int    `short:"n" help:"Hands per table, overrides the configuration"`
	Seed   *int64 `help:"Deterministic seed, overrides the configuration"`
	Out    string `short:"o" type:"path" help:"Write a JSON report to this file"`
	Debug  bool   `help:"Enable debug logging"`
}

// TableReport summarises one simulated table.
type TableReport struct {
	Table       string         `json:"table"`
	GameID      string         `json:"game_id"`
	Seed        int64          `json:"seed"`
	Hands       int            `json:"hands"`
	Showdowns   int            `json:"showdowns"`
	FoldOuts    int            `json:"fold_outs"`
	BiggestPot  int            `json:"biggest_pot"`
	Chips       map[string]int `json:"chips"`
	TotalChips  int            `json:"total_chips"`
	Conserved   bool           `json:"conserved"`
	TableClosed bool           `json:"table_closed"`
}

// Report is written by --out.
type Report struct {
	Seed     int64         `json:"seed"`
	Started  time.Time     `json:"started"`
	Duration string        `json:"duration"`
	Tables   []TableReport `json:"tables"`
}

func (c *SimulateCmd) Run(ctx context.Context) error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.LogLevel, c.Debug)

	seed := cfg.Seed
	if c.Seed != nil {
		seed = *c.Seed
	}
	if seed == 0 {
		seed = randutil.TimeSeed()
	}

	count := c.Tables
	if count <= 0 {
		count = len(cfg.Tables)
	}

	logger.Info("Starting simulation", "tables", count, "seed", seed)
	started := time.Now()

	reports := make([]TableReport, count)
	eg, ctx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		tc := cfg.Tables[i%len(cfg.Tables)]
		if c.Hands > 0 {
			tc.Hands = c.Hands
		}
		eg.Go(func() error {
			report, err := simulateTable(ctx, logger, tc, randutil.Derive(seed, i))
			if err != nil {
				return fmt.Errorf("table %s #%d: %w", tc.Name, i, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	report := Report{Seed: seed, Started: started, Duration: time.Since(started).Round(time.Millisecond).String(), Tables: reports}
	printReport(report)

	if c.Out != "" {
		if err := fileutil.WriteJSONAtomic(c.Out, report, 0o644); err != nil {
			return err
		}
		logger.Info("Report written", "path", c.Out)
	}

	for _, r := range reports {
		if !r.Conserved {
			return errors.New("chip conservation violated")
		}
	}
	return nil
}

// handStats counts how hands end, fed by service events.
type handStats struct {
	mu         sync.Mutex
	showdowns  int
	foldOuts   int
	biggestPot int
	closed     bool
}

func (h *handStats) Notify(e service.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch e := e.(type) {
	case service.HandFinished:
		if e.Description == game.FoldOutDescription {
			h.foldOuts++
		} else {
			h.showdowns++
		}
		h.biggestPot = max(h.biggestPot, e.Result.TotalPot)
	case service.TableClosed:
		h.closed = true
	}
}

func simulateTable(ctx context.Context, logger *log.Logger, tc config.TableConfig, seed int64) (TableReport, error) {
	stats := &handStats{}
	svc := service.New(logger.With("table", tc.Name),
		service.WithNotifier(stats),
		service.WithActionTimeout(tc.Timeout),
	)
	defer svc.Stop()

	seats := make([]game.Seat, tc.Seats)
	for i := range seats {
		seats[i] = game.Seat{ID: fmt.Sprintf("bot%d", i+1), Name: fmt.Sprintf("Bot %d", i+1), Chips: tc.StartChips}
	}
	total := tc.Seats * tc.StartChips
	rng := randutil.New(seed)

	g, err := svc.CreateHand(seats, tc.SmallBlind, tc.BigBlind, game.WithRNG(randutil.New(randutil.Derive(seed, 0))))
	if err != nil {
		return TableReport{}, err
	}
	report := TableReport{Table: tc.Name, GameID: g.ID, Seed: seed, TotalChips: total, Conserved: true}

	for report.Hands < tc.Hands {
		for !g.Finished {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			if g, err = svc.ApplyAction(g.ID, g.CurrentPlayer().ID, randomAction(rng, g)); err != nil {
				return report, err
			}
		}
		report.Hands++
		if g.TotalChips() != total {
			report.Conserved = false
			logger.Error(errorStyle.Render("Chip conservation violated"), "table", tc.Name, "hand", g.HandNumber, "total", g.TotalChips(), "expected", total)
		}

		if report.Hands == tc.Hands {
			break
		}
		next, err := svc.StartNewHand(g.ID)
		if errors.Is(err, game.ErrNotEnoughPlayers) {
			break
		}
		if err != nil {
			return report, err
		}
		g = next
	}

	report.Chips = make(map[string]int, len(g.Players))
	for _, p := range g.Players {
		report.Chips[p.Name] = p.Chips
	}

	stats.mu.Lock()
	report.Showdowns, report.FoldOuts, report.BiggestPot, report.TableClosed = stats.showdowns, stats.foldOuts, stats.biggestPot, stats.closed
	stats.mu.Unlock()
	return report, nil
}

// randomAction picks uniformly among the legal actions, with a uniform size
// for bets and raises. Folding is skipped when checking is free.
func randomAction(rng *rand.Rand, g *game.Game) game.Action {
	options := g.ValidActions(g.CurrentActor)
	canCheck := false
	for _, o := range options {
		if o.Kind == game.ActionCheck {
			canCheck = true
		}
	}
	for {
		o := options[rng.IntN(len(options))]
		if o.Kind == game.ActionFold && canCheck {
			continue
		}
		return o.Action(o.MinAmount + rng.IntN(o.MaxAmount-o.MinAmount+1))
	}
}

func printReport(r Report) {
	fmt.Println(titleStyle.Render(" ♠ ♥ Hold'em simulation ♦ ♣ "))
	fmt.Println()
	fmt.Println(headerStyle.Render(fmt.Sprintf("%-12s %6s %10s %9s %11s  %s", "Table", "Hands", "Showdowns", "Fold-outs", "Biggest pot", "Leader")))
	for _, t := range r.Tables {
		leader, chips := "", -1
		names := make([]string, 0, len(t.Chips))
		for name := range t.Chips {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if t.Chips[name] > chips {
				leader, chips = name, t.Chips[name]
			}
		}
		line := fmt.Sprintf("%-12s %6d %10d %9d %11d  %s (%d)", t.Table, t.Hands, t.Showdowns, t.FoldOuts, t.BiggestPot, leader, chips)
		if !t.Conserved {
			fmt.Println(errorStyle.Render(line + "  chips not conserved"))
			continue
		}
		fmt.Println(line)
	}
	fmt.Println()
	fmt.Printf("seed %d, %s\n", r.Seed, r.Duration)
}

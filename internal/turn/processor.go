// Package turn drives the hourly simulation turn: take one price snapshot,
// compute every corporation's statement against it, and persist the results.
package turn

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"corpsim/internal/balance"
	"corpsim/internal/corp"
	"corpsim/internal/econ"
)

// PriceSource supplies the commodity and product snapshots for one turn.
type PriceSource interface {
	Snapshot(ctx context.Context, seasonID int64) (commodities, products econ.PriceSnapshot, err error)
}

// Ledger is the slice of the corporation store a turn needs.
type Ledger interface {
	ListCorporations(ctx context.Context, seasonID int64) ([]corp.Corporation, error)
	SaveStatement(ctx context.Context, corpID int64, stmt econ.ConsolidatedStatement) (string, error)
}

type Processor struct {
	prices  PriceSource
	ledger  Ledger
	cfg     balance.Config
	log     *slog.Logger
	metrics *Metrics

	// PeriodHours is the accounting window each statement covers.
	PeriodHours float64
	// Workers bounds the per-corporation fan-out.
	Workers int
}

func NewProcessor(prices PriceSource, ledger Ledger, cfg balance.Config, logger *slog.Logger, metrics *Metrics) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Processor{
		prices:      prices,
		ledger:      ledger,
		cfg:         cfg,
		log:         logger,
		metrics:     metrics,
		PeriodHours: econ.DefaultPeriodHours,
		Workers:     4,
	}
}

// Run executes one full turn. The snapshot is taken once so every
// corporation prices against the same market state. Per-corporation failures
// are counted and logged but do not abort the turn.
func (p *Processor) Run(ctx context.Context, seasonID int64) error {
	start := time.Now()

	commodities, products, err := p.prices.Snapshot(ctx, seasonID)
	if err != nil {
		p.metrics.SnapshotFailures.Inc()
		return err
	}
	corps, err := p.ledger.ListCorporations(ctx, seasonID)
	if err != nil {
		return err
	}

	flows := p.cfg.Flows()
	economics := p.cfg.UnitEconomics

	workers := p.Workers
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan corp.Corporation)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				p.processOne(ctx, c, flows, commodities, products, economics)
			}
		}()
	}
	for _, c := range corps {
		select {
		case jobs <- c:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	p.metrics.Turns.Inc()
	p.metrics.TurnDuration.Observe(time.Since(start).Seconds())
	p.log.Info("turn complete",
		"season_id", seasonID,
		"corporations", len(corps),
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
	return nil
}

func (p *Processor) processOne(ctx context.Context, c corp.Corporation, flows econ.SectorFlows, commodities, products econ.PriceSnapshot, economics econ.UnitEconomics) {
	params := p.cfg.Params(p.PeriodHours, c.DividendPercentage)
	stmt := econ.ComputeStatements(c.Entries, flows, commodities, products, economics, params)

	turnID, err := p.ledger.SaveStatement(ctx, c.ID, stmt)
	if err != nil {
		p.metrics.Failures.Inc()
		p.log.Error("save statement failed", "corporation_id", c.ID, "error", err)
		return
	}
	p.metrics.Corporations.Inc()
	if len(stmt.Errors) > 0 {
		p.log.Warn("statement computed with errors", "corporation_id", c.ID, "turn_id", turnID, "errors", stmt.Errors)
	}
}

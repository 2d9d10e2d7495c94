package corp

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"corpsim/internal/balance"
	"corpsim/internal/econ"
)

type Store struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewStore(db *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, log: logger}
}

func (s *Store) ActiveSeasonID(ctx context.Context) (int64, error) {
	var seasonID int64
	err := s.db.QueryRow(ctx, `
		SELECT id
		FROM sim.seasons
		WHERE status = 'active'
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&seasonID)
	if err == nil {
		return seasonID, nil
	}
	if err != pgx.ErrNoRows {
		return 0, err
	}

	err = s.db.QueryRow(ctx, `
		INSERT INTO sim.seasons (name, status, starts_at, ends_at)
		VALUES ($1, 'active', now(), now() + interval '90 days')
		RETURNING id
	`, "Season 1").Scan(&seasonID)
	if err != nil {
		return 0, err
	}
	return seasonID, nil
}

// SeedDefaults populates an empty season with the default market items and a
// handful of demo corporations so a fresh deployment has something to price.
func (s *Store) SeedDefaults(ctx context.Context, seasonID int64) error {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(1) FROM sim.market_items WHERE season_id = $1`, seasonID).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, item := range balance.ReferenceItems() {
		_, err := tx.Exec(ctx, `
			INSERT INTO sim.market_items (season_id, name, class, reference_price, supply, demand, reference_supply)
			VALUES ($1, $2, $3, $4, $5, $5, $5)
		`, seasonID, item.Name, item.Class, item.ReferencePrice, item.Supply)
		if err != nil {
			return err
		}
	}

	seed := []struct {
		Name     string
		Capital  float64
		Dividend float64
		Entries  []econ.MarketEntry
	}{
		{"Helios Manufacturing", 250_000, 20, []econ.MarketEntry{
			{Sector: "Manufacturing", Region: "north", ProductionCount: 4, RetailCount: 2},
			{Sector: "Mining", Region: "north", ExtractionCount: 3},
		}},
		{"Meridian Energy Group", 400_000, 35, []econ.MarketEntry{
			{Sector: "Energy", Region: "east", ExtractionCount: 5, ProductionCount: 3, ServiceCount: 2},
		}},
		{"Aegis Defense Works", 600_000, 10, []econ.MarketEntry{
			{Sector: "Defense", Region: "west", ProductionCount: 2, RetailCount: 1, ServiceCount: 1},
			{Sector: "Manufacturing", Region: "west", ProductionCount: 1},
		}},
		{"Harvest & Field Co", 120_000, 50, []econ.MarketEntry{
			{Sector: "Agriculture", Region: "south", ExtractionCount: 6, ProductionCount: 2, RetailCount: 4},
		}},
	}
	for _, c := range seed {
		var corpID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO sim.corporations (season_id, name, capital, dividend_percentage)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, seasonID, c.Name, c.Capital, c.Dividend).Scan(&corpID)
		if err != nil {
			return err
		}
		for _, e := range c.Entries {
			_, err := tx.Exec(ctx, `
				INSERT INTO sim.market_entries
				    (corporation_id, season_id, sector, region, retail_count, production_count, service_count, extraction_count)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`, corpID, seasonID, e.Sector, e.Region, e.RetailCount, e.ProductionCount, e.ServiceCount, e.ExtractionCount)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) ListCorporations(ctx context.Context, seasonID int64) ([]Corporation, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, season_id, name, capital, dividend_percentage
		FROM sim.corporations
		WHERE season_id = $1
		ORDER BY id
	`, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Corporation
	byID := map[int64]int{}
	for rows.Next() {
		var c Corporation
		if err := rows.Scan(&c.ID, &c.SeasonID, &c.Name, &c.Capital, &c.DividendPercentage); err != nil {
			return nil, err
		}
		byID[c.ID] = len(out)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	eRows, err := s.db.Query(ctx, `
		SELECT corporation_id, sector, region, retail_count, production_count, service_count, extraction_count
		FROM sim.market_entries
		WHERE season_id = $1
		ORDER BY corporation_id, id
	`, seasonID)
	if err != nil {
		return nil, err
	}
	defer eRows.Close()
	for eRows.Next() {
		var corpID int64
		var e econ.MarketEntry
		if err := eRows.Scan(&corpID, &e.Sector, &e.Region, &e.RetailCount, &e.ProductionCount, &e.ServiceCount, &e.ExtractionCount); err != nil {
			return nil, err
		}
		if idx, ok := byID[corpID]; ok {
			out[idx].Entries = append(out[idx].Entries, e)
		}
	}
	return out, eRows.Err()
}

func (s *Store) GetCorporation(ctx context.Context, seasonID, corpID int64) (Corporation, error) {
	var c Corporation
	err := s.db.QueryRow(ctx, `
		SELECT id, season_id, name, capital, dividend_percentage
		FROM sim.corporations
		WHERE season_id = $1 AND id = $2
	`, seasonID, corpID).Scan(&c.ID, &c.SeasonID, &c.Name, &c.Capital, &c.DividendPercentage)
	if err == pgx.ErrNoRows {
		return c, ErrCorporationNotFound
	}
	if err != nil {
		return c, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT sector, region, retail_count, production_count, service_count, extraction_count
		FROM sim.market_entries
		WHERE season_id = $1 AND corporation_id = $2
		ORDER BY id
	`, seasonID, corpID)
	if err != nil {
		return c, err
	}
	defer rows.Close()
	for rows.Next() {
		var e econ.MarketEntry
		if err := rows.Scan(&e.Sector, &e.Region, &e.RetailCount, &e.ProductionCount, &e.ServiceCount, &e.ExtractionCount); err != nil {
			return c, err
		}
		c.Entries = append(c.Entries, e)
	}
	return c, rows.Err()
}

// SaveStatement persists a computed statement and applies its capital and
// dividend effects in one transaction. Retained earnings accrue to capital;
// dividends are recorded as distributions.
func (s *Store) SaveStatement(ctx context.Context, corpID int64, stmt econ.ConsolidatedStatement) (string, error) {
	turnID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	payload, err := json.Marshal(stmt)
	if err != nil {
		return "", err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO sim.statements
		    (turn_id, corporation_id, revenue, variable_costs, fixed_costs, operating_income,
		     dividends, retained_earnings, net_income, period_hours, detail, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, now())
	`, turnID, corpID, stmt.Revenue, stmt.VariableCosts, stmt.FixedCosts, stmt.OperatingIncome,
		stmt.Dividends, stmt.RetainedEarnings, stmt.NetIncome, stmt.PeriodHours, string(payload))
	if err != nil {
		return "", err
	}

	for _, sector := range stmt.Sectors {
		_, err := tx.Exec(ctx, `
			INSERT INTO sim.statement_sectors (turn_id, corporation_id, sector, revenue, variable_costs)
			VALUES ($1, $2, $3, $4, $5)
		`, turnID, corpID, sector.SectorType, sector.Revenue, sector.VariableCosts)
		if err != nil {
			return "", err
		}
	}

	cmd, err := tx.Exec(ctx, `
		UPDATE sim.corporations
		SET capital = capital + $1, updated_at = now()
		WHERE id = $2
	`, stmt.RetainedEarnings, corpID)
	if err != nil {
		return "", err
	}
	if cmd.RowsAffected() == 0 {
		return "", ErrCorporationNotFound
	}

	if stmt.Dividends > 0 {
		_, err = tx.Exec(ctx, `
			INSERT INTO sim.dividend_distributions (turn_id, corporation_id, amount, distributed_at)
			VALUES ($1, $2, $3, now())
		`, turnID, corpID, stmt.Dividends)
		if err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	s.log.Debug("statement saved", "corporation_id", corpID, "turn_id", turnID, "net_income", stmt.NetIncome)
	return turnID, nil
}

// LatestStatement returns the most recent persisted statement for a
// corporation, unmarshalled from its stored detail.
func (s *Store) LatestStatement(ctx context.Context, seasonID, corpID int64) (StatementRecord, error) {
	var rec StatementRecord
	var payload []byte
	err := s.db.QueryRow(ctx, `
		SELECT st.turn_id, st.corporation_id, st.computed_at, st.detail
		FROM sim.statements st
		JOIN sim.corporations c ON c.id = st.corporation_id
		WHERE c.season_id = $1 AND st.corporation_id = $2
		ORDER BY st.computed_at DESC
		LIMIT 1
	`, seasonID, corpID).Scan(&rec.TurnID, &rec.CorporationID, &rec.ComputedAt, &payload)
	if err == pgx.ErrNoRows {
		return rec, ErrCorporationNotFound
	}
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(payload, &rec.Statement); err != nil {
		return rec, err
	}
	return rec, nil
}

func (s *Store) Leaderboard(ctx context.Context, seasonID int64, limit int) ([]LeaderboardRow, error) {
	rows, err := s.db.Query(ctx, `
		WITH latest AS (
			SELECT DISTINCT ON (corporation_id) corporation_id, net_income
			FROM sim.statements
			ORDER BY corporation_id, computed_at DESC
		)
		SELECT c.id, c.name, c.capital, COALESCE(l.net_income, 0)
		FROM sim.corporations c
		LEFT JOIN latest l ON l.corporation_id = c.id
		WHERE c.season_id = $1
		ORDER BY c.capital DESC
		LIMIT $2
	`, seasonID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaderboardRow
	var rank int64 = 1
	for rows.Next() {
		var r LeaderboardRow
		if err := rows.Scan(&r.CorporationID, &r.Name, &r.Capital, &r.LastNetIncome); err != nil {
			return nil, err
		}
		r.Rank = rank
		rank++
		out = append(out, r)
	}
	return out, rows.Err()
}

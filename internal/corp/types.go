// Package corp is the persistence layer for corporations: holdings,
// dividend policies, and the statements produced each turn.
package corp

import (
	"errors"
	"time"

	"corpsim/internal/econ"
)

var (
	ErrCorporationNotFound = errors.New("corporation not found")
	ErrSeasonNotFound      = errors.New("no active season")
)

type Corporation struct {
	ID                 int64              `json:"id"`
	SeasonID           int64              `json:"season_id"`
	Name               string             `json:"name"`
	Capital            float64            `json:"capital"`
	DividendPercentage float64            `json:"dividend_percentage"`
	Entries            []econ.MarketEntry `json:"entries,omitempty"`
}

// StatementRecord is one persisted turn result for a corporation.
type StatementRecord struct {
	TurnID        string                     `json:"turn_id"`
	CorporationID int64                      `json:"corporation_id"`
	ComputedAt    time.Time                  `json:"computed_at"`
	Statement     econ.ConsolidatedStatement `json:"statement"`
}

type LeaderboardRow struct {
	Rank          int64   `json:"rank"`
	CorporationID int64   `json:"corporation_id"`
	Name          string  `json:"name"`
	Capital       float64 `json:"capital"`
	LastNetIncome float64 `json:"last_net_income"`
}

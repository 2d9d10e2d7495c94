package market

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"corpsim/internal/econ"
)

// Loader reads the current market rows and builds one price snapshot per
// turn. The snapshot is a plain value; callers may share it across goroutines
// without locking.
type Loader struct {
	db *pgxpool.Pool
}

func NewLoader(db *pgxpool.Pool) *Loader {
	return &Loader{db: db}
}

func (l *Loader) LoadItems(ctx context.Context, seasonID int64) ([]Item, error) {
	rows, err := l.db.Query(ctx, `
		SELECT name, class, reference_price, supply, demand, reference_supply
		FROM sim.market_items
		WHERE season_id = $1
		ORDER BY name
	`, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		var class string
		if err := rows.Scan(&it.Name, &class, &it.ReferencePrice, &it.Supply, &it.Demand, &it.ReferenceSupply); err != nil {
			return nil, err
		}
		it.Class = ItemClass(class)
		items = append(items, it)
	}
	return items, rows.Err()
}

// Snapshot loads items and prices them in one step.
func (l *Loader) Snapshot(ctx context.Context, seasonID int64) (commodities, products econ.PriceSnapshot, err error) {
	items, err := l.LoadItems(ctx, seasonID)
	if err != nil {
		return nil, nil, err
	}
	commodities, products = Snapshot(items)
	return commodities, products, nil
}

// Package market derives commodity and product prices from supply and demand
// using the shared scarcity model, and snapshots them for the statement
// engine. One snapshot is computed per turn and treated as immutable while
// corporations are processed against it.
package market

import (
	"corpsim/internal/econ"
)

// ItemClass splits priced items into raw commodities and finished products.
// The two classes use different scarcity inputs.
type ItemClass string

const (
	ClassCommodity ItemClass = "commodity"
	ClassProduct   ItemClass = "product"
)

// Scarcity factor bounds. Neutral is 1.0; a starved market tops out at
// MaxScarcity rather than running away when supply approaches zero.
const (
	MinScarcity = 0.25
	MaxScarcity = 4.0
)

// Item is one priced commodity or product with its current market state.
type Item struct {
	Name            string    `json:"name"`
	Class           ItemClass `json:"class"`
	ReferencePrice  float64   `json:"reference_price"`
	Supply          float64   `json:"supply"`
	Demand          float64   `json:"demand"`
	ReferenceSupply float64   `json:"reference_supply"`
}

// ScarcityFactor is the multiplier applied to an item's reference price.
// Products compare demand against supply; commodities compare the reference
// supply level against actual supply. Exhausted supply prices at the ceiling.
func ScarcityFactor(it Item) float64 {
	var numerator float64
	switch it.Class {
	case ClassProduct:
		numerator = it.Demand
	default:
		numerator = it.ReferenceSupply
	}
	if it.Supply <= 0 {
		if numerator <= 0 {
			return 1.0
		}
		return MaxScarcity
	}
	if numerator <= 0 {
		return MinScarcity
	}
	factor := numerator / it.Supply
	if factor < MinScarcity {
		return MinScarcity
	}
	if factor > MaxScarcity {
		return MaxScarcity
	}
	return factor
}

// PriceOf returns the item's current price. Prices are never negative.
func PriceOf(it Item) float64 {
	if it.ReferencePrice <= 0 {
		return 0
	}
	return it.ReferencePrice * ScarcityFactor(it)
}

// Snapshot prices every item and splits the result by class into the two
// lookup tables the statement engine consumes.
func Snapshot(items []Item) (commodities, products econ.PriceSnapshot) {
	commodities = econ.PriceSnapshot{}
	products = econ.PriceSnapshot{}
	for _, it := range items {
		if it.Name == "" {
			continue
		}
		switch it.Class {
		case ClassProduct:
			products[it.Name] = PriceOf(it)
		default:
			commodities[it.Name] = PriceOf(it)
		}
	}
	return commodities, products
}

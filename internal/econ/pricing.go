package econ

// retailPricing selects the revenue formula for retail and service units.
// The set is closed on purpose: each variant is auditable and testable in
// isolation instead of being scattered through the aggregator.
type retailPricing int

const (
	// generalRetailPricing derives revenue from the market price of the
	// products a unit consumes.
	generalRetailPricing retailPricing = iota
	// costFloorRetailPricing floors revenue at a fraction of the unit's
	// full variable cost. Used by defense-class sectors whose output is
	// procured cost-plus rather than sold at market.
	costFloorRetailPricing
)

// CostFloorMultiplier is the fraction of full variable cost that cost-floor
// sectors are guaranteed as revenue. Calibrated, not derived; keep it in one
// place so recalibration against the acceptance corpus is a one-line change.
const CostFloorMultiplier = 0.95

func retailPricingFor(sector string, costFloorSectors map[string]bool) retailPricing {
	if costFloorSectors[sector] {
		return costFloorRetailPricing
	}
	return generalRetailPricing
}

// applyRetailPricing resolves demand-driven revenue for one retail or service
// unit line. priceRevenue is the product-price-driven figure; costBasis is the
// line's full variable cost (input spend plus labor).
func applyRetailPricing(kind retailPricing, priceRevenue, costBasis float64) float64 {
	switch kind {
	case costFloorRetailPricing:
		floor := costBasis * CostFloorMultiplier
		if priceRevenue < floor {
			return floor
		}
		return priceRevenue
	default:
		return priceRevenue
	}
}

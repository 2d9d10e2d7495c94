// Package econ computes corporation financial statements from market state.
// Every function in this package is pure: no I/O, no shared state, and no
// mutation of the tables passed in. Callers may share one set of flow and
// price tables across many corporations in a single turn.
package econ

// UnitType is one of the four operational archetypes a market entry can build.
type UnitType string

const (
	UnitRetail     UnitType = "retail"
	UnitProduction UnitType = "production"
	UnitService    UnitType = "service"
	UnitExtraction UnitType = "extraction"
)

// UnitTypes lists the archetypes in their statement display order.
var UnitTypes = [4]UnitType{UnitRetail, UnitProduction, UnitService, UnitExtraction}

// ElectricityProduct is the product name the service path prices separately
// from the rest of a unit's consumed product mix.
const ElectricityProduct = "Electricity"

// DefaultPeriodHours is the accounting period used whenever the caller
// supplies a non-positive period length. 96 hours = 4 days.
const DefaultPeriodHours = 96.0

// MarketEntry is a corporation's presence in one region operating one sector.
// Negative counts are treated as zero; they never contribute negative revenue
// or cost.
type MarketEntry struct {
	Sector          string `json:"sector"`
	Region          string `json:"region"`
	RetailCount     int64  `json:"retail_count"`
	ProductionCount int64  `json:"production_count"`
	ServiceCount    int64  `json:"service_count"`
	ExtractionCount int64  `json:"extraction_count"`
}

func (e MarketEntry) count(t UnitType) int64 {
	var n int64
	switch t {
	case UnitRetail:
		n = e.RetailCount
	case UnitProduction:
		n = e.ProductionCount
	case UnitService:
		n = e.ServiceCount
	case UnitExtraction:
		n = e.ExtractionCount
	}
	if n < 0 {
		return 0
	}
	return n
}

// FlowRates holds per-unit-per-hour rates keyed by commodity or product name.
type FlowRates struct {
	Resources map[string]float64 `json:"resources" yaml:"resources"`
	Products  map[string]float64 `json:"products" yaml:"products"`
}

// ProductionFlow is the declared input/output rates for one (sector, unit
// type) pair.
type ProductionFlow struct {
	Inputs  FlowRates `json:"inputs" yaml:"inputs"`
	Outputs FlowRates `json:"outputs" yaml:"outputs"`
}

// SectorFlows maps sector type -> unit type -> production-chain flow.
// A sector missing from this table is a configuration gap and is reported in
// the statement's error list; a unit type missing under a present sector
// silently falls back to base unit economics.
type SectorFlows map[string]map[UnitType]ProductionFlow

// PriceSnapshot is the current price of every known commodity or product.
// Lookup of an absent name yields 0: an unknown price is a normal transient
// state during price-table warm-up, not an error.
type PriceSnapshot map[string]float64

// Lookup returns the snapshot price for name, or 0 when absent.
func (p PriceSnapshot) Lookup(name string) float64 {
	if p == nil {
		return 0
	}
	return p[name]
}

// UnitCosts is the fallback base economics for one archetype, per unit-hour.
type UnitCosts struct {
	BaseRevenue float64 `json:"base_revenue" yaml:"base_revenue"`
	BaseCost    float64 `json:"base_cost" yaml:"base_cost"`
}

// UnitEconomics holds the fallback base economics for all four archetypes.
type UnitEconomics struct {
	Retail     UnitCosts `json:"retail" yaml:"retail"`
	Production UnitCosts `json:"production" yaml:"production"`
	Service    UnitCosts `json:"service" yaml:"service"`
	Extraction UnitCosts `json:"extraction" yaml:"extraction"`
}

// For returns the base economics for one archetype.
func (e UnitEconomics) For(t UnitType) UnitCosts {
	switch t {
	case UnitRetail:
		return e.Retail
	case UnitProduction:
		return e.Production
	case UnitService:
		return e.Service
	case UnitExtraction:
		return e.Extraction
	}
	return UnitCosts{}
}

// FixedCosts are period-level costs independent of unit activity.
type FixedCosts struct {
	CEOSalary float64 `json:"ceo_salary"`
	Overhead  float64 `json:"overhead"`
}

// Total sums the fixed-cost components, treating negatives as zero.
func (f FixedCosts) Total() float64 {
	total := 0.0
	if f.CEOSalary > 0 {
		total += f.CEOSalary
	}
	if f.Overhead > 0 {
		total += f.Overhead
	}
	return total
}

// StatementParams carries the caller-supplied knobs for one computation.
type StatementParams struct {
	// PeriodHours is the accounting period length; non-positive values
	// fall back to DefaultPeriodHours.
	PeriodHours float64
	// Fixed is added to costs once per statement, not per entry.
	Fixed FixedCosts
	// DividendPercentage of positive operating income paid out; clamped
	// to [0, 100].
	DividendPercentage float64
	// CostFloorSectors selects the sectors whose retail and service
	// revenue is floored at a cost-based figure instead of following
	// product prices alone.
	CostFloorSectors map[string]bool
}

// UnitActivity is the per-archetype display breakdown within one sector.
// Produced and demanded unit counts are rounded here, at the presentation
// boundary; all revenue and cost arithmetic uses the unrounded values.
type UnitActivity struct {
	Units         int64 `json:"units"`
	ProducedUnits int64 `json:"produced_units"`
	DemandedUnits int64 `json:"demanded_units"`
}

// UnitBreakdown groups activity for the four archetypes of one sector.
type UnitBreakdown struct {
	Retail     UnitActivity `json:"retail"`
	Production UnitActivity `json:"production"`
	Service    UnitActivity `json:"service"`
	Extraction UnitActivity `json:"extraction"`
}

func (b *UnitBreakdown) activity(t UnitType) *UnitActivity {
	switch t {
	case UnitRetail:
		return &b.Retail
	case UnitProduction:
		return &b.Production
	case UnitService:
		return &b.Service
	case UnitExtraction:
		return &b.Extraction
	}
	return nil
}

// SectorStatement is the aggregated result for one sector type across all of
// a corporation's regions.
type SectorStatement struct {
	SectorType    string        `json:"sector_type"`
	Revenue       float64       `json:"revenue"`
	VariableCosts float64       `json:"variable_costs"`
	Units         UnitBreakdown `json:"unit_breakdown"`
}

// ConsolidatedStatement is the aggregated revenue/cost/income/dividend result
// for one corporation over one period. It has no persisted identity; callers
// persist or discard it.
type ConsolidatedStatement struct {
	Revenue          float64           `json:"revenue"`
	VariableCosts    float64           `json:"variable_costs"`
	FixedCosts       float64           `json:"fixed_costs"`
	OperatingIncome  float64           `json:"operating_income"`
	Dividends        float64           `json:"dividends"`
	RetainedEarnings float64           `json:"retained_earnings"`
	NetIncome        float64           `json:"net_income"`
	PeriodHours      float64           `json:"period_hours"`
	Errors           []string          `json:"errors"`
	Sectors          []SectorStatement `json:"sectors"`
}

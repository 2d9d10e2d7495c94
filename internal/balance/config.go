// Package balance holds the game-balance tables: per-sector production
// chains, fallback unit economics, sector pricing classes, and period fixed
// costs. Tables are loaded once at startup from YAML (or the compiled-in
// defaults) and treated as read-only afterwards.
package balance

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"corpsim/internal/econ"
)

// ClassCostFloor marks a sector whose retail/service revenue is floored at a
// cost-based figure instead of following product prices alone.
const ClassCostFloor = "cost_floor"

type Config struct {
	Sectors       map[string]SectorChain `yaml:"sectors"`
	UnitEconomics econ.UnitEconomics     `yaml:"unit_economics"`
	SectorClasses map[string]string      `yaml:"sector_classes"`
	FixedCosts    FixedCostsConfig       `yaml:"fixed_costs"`
	// DividendPercentage is the default payout for corporations without
	// their own policy.
	DividendPercentage float64 `yaml:"dividend_percentage"`
}

// SectorChain maps unit type -> declared flow for one sector.
type SectorChain map[string]econ.ProductionFlow

type FixedCostsConfig struct {
	CEOSalary float64 `yaml:"ceo_salary"`
	Overhead  float64 `yaml:"overhead"`
}

var validUnitTypes = map[string]bool{
	string(econ.UnitRetail):     true,
	string(econ.UnitProduction): true,
	string(econ.UnitService):    true,
	string(econ.UnitExtraction): true,
}

// Load reads a balance file, or returns the compiled-in defaults when path
// is empty.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read balance file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse balance file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine would silently misread.
func (c Config) Validate() error {
	if len(c.Sectors) == 0 {
		return fmt.Errorf("balance config declares no sectors")
	}
	for sector, chain := range c.Sectors {
		for unitType, flow := range chain {
			if !validUnitTypes[unitType] {
				return fmt.Errorf("sector %s: unknown unit type %q", sector, unitType)
			}
			for _, rates := range []map[string]float64{
				flow.Inputs.Resources, flow.Inputs.Products,
				flow.Outputs.Resources, flow.Outputs.Products,
			} {
				for name, rate := range rates {
					if rate < 0 {
						return fmt.Errorf("sector %s/%s: negative rate for %s", sector, unitType, name)
					}
				}
			}
		}
	}
	for sector, class := range c.SectorClasses {
		if class != ClassCostFloor && class != "general" {
			return fmt.Errorf("sector %s: unknown class %q", sector, class)
		}
	}
	if c.DividendPercentage < 0 || c.DividendPercentage > 100 {
		return fmt.Errorf("dividend_percentage must be in [0,100], got %v", c.DividendPercentage)
	}
	return nil
}

// Flows converts the config into the engine's sector flow table.
func (c Config) Flows() econ.SectorFlows {
	flows := econ.SectorFlows{}
	for sector, chain := range c.Sectors {
		unitFlows := map[econ.UnitType]econ.ProductionFlow{}
		for unitType, flow := range chain {
			unitFlows[econ.UnitType(unitType)] = flow
		}
		flows[sector] = unitFlows
	}
	return flows
}

// CostFloorSectors returns the set of sectors on cost-floor pricing.
func (c Config) CostFloorSectors() map[string]bool {
	out := map[string]bool{}
	for sector, class := range c.SectorClasses {
		if class == ClassCostFloor {
			out[sector] = true
		}
	}
	return out
}

// Params assembles statement parameters for one computation. dividendPct
// overrides the configured default when non-negative.
func (c Config) Params(periodHours, dividendPct float64) econ.StatementParams {
	pct := c.DividendPercentage
	if dividendPct >= 0 {
		pct = dividendPct
	}
	return econ.StatementParams{
		PeriodHours:        periodHours,
		Fixed:              econ.FixedCosts{CEOSalary: c.FixedCosts.CEOSalary, Overhead: c.FixedCosts.Overhead},
		DividendPercentage: pct,
		CostFloorSectors:   c.CostFloorSectors(),
	}
}

// Default is the built-in balance used when no file is configured.
func Default() Config {
	return Config{
		Sectors: map[string]SectorChain{
			"Mining": {
				string(econ.UnitExtraction): {
					Inputs:  econ.FlowRates{Products: map[string]float64{"Electricity": 0.3}},
					Outputs: econ.FlowRates{Resources: map[string]float64{"Steel": 1.2}},
				},
			},
			"Energy": {
				string(econ.UnitExtraction): {
					Outputs: econ.FlowRates{Resources: map[string]float64{"Oil": 2.0}},
				},
				string(econ.UnitProduction): {
					Inputs:  econ.FlowRates{Resources: map[string]float64{"Oil": 1.0}},
					Outputs: econ.FlowRates{Products: map[string]float64{"Electricity": 3.0}},
				},
				string(econ.UnitService): {
					Inputs: econ.FlowRates{Products: map[string]float64{"Electricity": 0.2}},
				},
			},
			"Manufacturing": {
				string(econ.UnitProduction): {
					Inputs: econ.FlowRates{
						Resources: map[string]float64{"Steel": 0.5},
						Products:  map[string]float64{"Electricity": 0.5},
					},
					Outputs: econ.FlowRates{Products: map[string]float64{"Manufactured Goods": 1.0}},
				},
				string(econ.UnitRetail): {
					Inputs: econ.FlowRates{Products: map[string]float64{"Manufactured Goods": 0.8}},
				},
				string(econ.UnitService): {
					Inputs: econ.FlowRates{Products: map[string]float64{
						"Electricity":        0.4,
						"Manufactured Goods": 0.1,
					}},
				},
			},
			"Agriculture": {
				string(econ.UnitExtraction): {
					Outputs: econ.FlowRates{Resources: map[string]float64{"Grain": 1.8}},
				},
				string(econ.UnitProduction): {
					Inputs:  econ.FlowRates{Resources: map[string]float64{"Grain": 1.0}},
					Outputs: econ.FlowRates{Products: map[string]float64{"Food": 1.2}},
				},
				string(econ.UnitRetail): {
					Inputs: econ.FlowRates{Products: map[string]float64{"Food": 1.0}},
				},
			},
			"Defense": {
				string(econ.UnitProduction): {
					Inputs: econ.FlowRates{
						Resources: map[string]float64{"Steel": 0.8},
						Products:  map[string]float64{"Electricity": 0.6},
					},
					Outputs: econ.FlowRates{Products: map[string]float64{"Defense Systems": 0.4}},
				},
				string(econ.UnitRetail): {
					Inputs: econ.FlowRates{Products: map[string]float64{"Defense Systems": 0.2}},
				},
				string(econ.UnitService): {
					Inputs: econ.FlowRates{Products: map[string]float64{"Electricity": 0.5}},
				},
			},
		},
		UnitEconomics: econ.UnitEconomics{
			Retail:     econ.UnitCosts{BaseRevenue: 40, BaseCost: 25},
			Production: econ.UnitCosts{BaseRevenue: 60, BaseCost: 35},
			Service:    econ.UnitCosts{BaseRevenue: 30, BaseCost: 18},
			Extraction: econ.UnitCosts{BaseRevenue: 50, BaseCost: 28},
		},
		SectorClasses: map[string]string{
			"Defense": ClassCostFloor,
		},
		FixedCosts: FixedCostsConfig{
			CEOSalary: 5000,
			Overhead:  2500,
		},
		DividendPercentage: 20,
	}
}

// ReferenceItems seeds a neutral market for the default balance: every
// commodity and product the default chains reference, at its reference price
// with balanced supply and demand.
func ReferenceItems() []ReferenceItem {
	return []ReferenceItem{
		{Name: "Steel", Class: "commodity", ReferencePrice: 850, Supply: 1000},
		{Name: "Oil", Class: "commodity", ReferencePrice: 75, Supply: 5000},
		{Name: "Grain", Class: "commodity", ReferencePrice: 40, Supply: 8000},
		{Name: "Electricity", Class: "product", ReferencePrice: 200, Supply: 4000},
		{Name: "Manufactured Goods", Class: "product", ReferencePrice: 1500, Supply: 600},
		{Name: "Food", Class: "product", ReferencePrice: 90, Supply: 7000},
		{Name: "Defense Systems", Class: "product", ReferencePrice: 6000, Supply: 120},
	}
}

// ReferenceItem is a seed row for sim.market_items.
type ReferenceItem struct {
	Name           string
	Class          string
	ReferencePrice float64
	Supply         float64
}

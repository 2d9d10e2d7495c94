package econ

import (
	"math"
	"sort"
)

// ComputeStatements derives a corporation's consolidated financial statement
// from its market entries and the current market state. The function is
// deterministic and never panics or returns an error: malformed or missing
// lookups degrade to zero contributions, with configuration gaps tagged in
// the statement's Errors list. It runs inside a batch turn processor where
// one corporation's bad data must never abort the run for the rest.
func ComputeStatements(entries []MarketEntry, flows SectorFlows, commodityPrices, productPrices PriceSnapshot, economics UnitEconomics, params StatementParams) ConsolidatedStatement {
	hours := params.PeriodHours
	if hours <= 0 {
		hours = DefaultPeriodHours
	}

	out := ConsolidatedStatement{
		PeriodHours: hours,
		Errors:      []string{},
		Sectors:     []SectorStatement{},
	}

	type sectorAccum struct {
		revenue  float64
		costs    float64
		units    map[UnitType]int64
		produced map[UnitType]float64
		demanded map[UnitType]float64
	}
	accums := map[string]*sectorAccum{}
	var sectorOrder []string
	missing := map[string]bool{}

	for _, entry := range entries {
		unitFlows, ok := flows[entry.Sector]
		if !ok {
			if !missing[entry.Sector] {
				missing[entry.Sector] = true
				out.Errors = append(out.Errors, "missing_flow_"+entry.Sector)
			}
			continue
		}

		acc := accums[entry.Sector]
		if acc == nil {
			acc = &sectorAccum{
				units:    map[UnitType]int64{},
				produced: map[UnitType]float64{},
				demanded: map[UnitType]float64{},
			}
			accums[entry.Sector] = acc
			sectorOrder = append(sectorOrder, entry.Sector)
		}

		pricing := retailPricingFor(entry.Sector, params.CostFloorSectors)
		for _, t := range UnitTypes {
			count := entry.count(t)
			acc.units[t] += count
			if count == 0 {
				continue
			}
			flow, declared := unitFlows[t]
			line := computeUnitLine(t, float64(count), flow, declared, commodityPrices, productPrices, economics.For(t), pricing, hours)
			acc.revenue += line.revenue
			acc.costs += line.cost
			acc.produced[t] += line.produced
			acc.demanded[t] += line.demanded
		}
	}

	for _, sector := range sectorOrder {
		acc := accums[sector]
		st := SectorStatement{
			SectorType:    sector,
			Revenue:       acc.revenue,
			VariableCosts: acc.costs,
		}
		for _, t := range UnitTypes {
			a := st.Units.activity(t)
			a.Units = acc.units[t]
			a.ProducedUnits = int64(math.Round(acc.produced[t]))
			a.DemandedUnits = int64(math.Round(acc.demanded[t]))
		}
		out.Sectors = append(out.Sectors, st)
		out.Revenue += acc.revenue
		out.VariableCosts += acc.costs
	}

	out.FixedCosts = params.Fixed.Total()
	out.OperatingIncome = out.Revenue - out.VariableCosts - out.FixedCosts

	divPct := params.DividendPercentage
	if divPct < 0 {
		divPct = 0
	}
	if divPct > 100 {
		divPct = 100
	}
	if out.OperatingIncome > 0 {
		out.Dividends = out.OperatingIncome * divPct / 100
	}
	out.NetIncome = out.OperatingIncome - out.Dividends
	out.RetainedEarnings = out.NetIncome
	return out
}

// unitLine is one (entry, unit type) contribution, unrounded.
type unitLine struct {
	revenue  float64
	cost     float64
	produced float64
	demanded float64
}

func computeUnitLine(t UnitType, count float64, flow ProductionFlow, declared bool, commodity, product PriceSnapshot, base UnitCosts, pricing retailPricing, hours float64) unitLine {
	scale := hours * count
	var line unitLine

	// Labor/base cost applies to every archetype. Input spend is added on
	// top for declared flows.
	line.cost = base.BaseCost * scale
	if declared {
		line.cost += inputSpend(flow.Inputs, commodity, product, scale)
	}

	switch t {
	case UnitExtraction:
		if declared && len(flow.Outputs.Resources) > 0 {
			for _, name := range sortedKeys(flow.Outputs.Resources) {
				rate := flow.Outputs.Resources[name]
				line.produced += rate * scale
				line.revenue += commodity.Lookup(name) * rate * scale
			}
		} else {
			line.revenue = base.BaseRevenue * scale
		}
	case UnitProduction:
		if declared && len(flow.Outputs.Products) > 0 {
			for _, name := range sortedKeys(flow.Outputs.Products) {
				rate := flow.Outputs.Products[name]
				line.produced += rate * scale
				line.revenue += product.Lookup(name) * rate * scale
			}
		} else {
			line.revenue = base.BaseRevenue * scale
		}
	case UnitRetail:
		if declared && flowDeclaresInputs(flow) {
			priceRevenue := 0.0
			for _, name := range sortedKeys(flow.Inputs.Products) {
				rate := flow.Inputs.Products[name]
				priceRevenue += product.Lookup(name) * rate * scale
				line.demanded += rate * scale
			}
			for _, name := range sortedKeys(flow.Inputs.Resources) {
				line.demanded += flow.Inputs.Resources[name] * scale
			}
			line.revenue = applyRetailPricing(pricing, priceRevenue, line.cost)
		} else {
			line.revenue = base.BaseRevenue * scale
		}
	case UnitService:
		if declared && flowDeclaresInputs(flow) {
			// Electricity is priced on its own leg; the rest of the
			// product mix shares one accumulator.
			elecRate := flow.Inputs.Products[ElectricityProduct]
			elecRevenue := product.Lookup(ElectricityProduct) * elecRate * scale
			line.demanded += elecRate * scale

			priceRevenue := 0.0
			for _, name := range sortedKeys(flow.Inputs.Products) {
				if name == ElectricityProduct {
					continue
				}
				rate := flow.Inputs.Products[name]
				priceRevenue += product.Lookup(name) * rate * scale
				line.demanded += rate * scale
			}
			for _, name := range sortedKeys(flow.Inputs.Resources) {
				line.demanded += flow.Inputs.Resources[name] * scale
			}
			line.revenue = applyRetailPricing(pricing, priceRevenue+elecRevenue, line.cost)
		} else {
			line.revenue = base.BaseRevenue * scale
		}
	}
	return line
}

// inputSpend prices a flow's declared inputs: resources against the commodity
// snapshot, products against the product snapshot.
func inputSpend(in FlowRates, commodity, product PriceSnapshot, scale float64) float64 {
	spend := 0.0
	for _, name := range sortedKeys(in.Resources) {
		spend += commodity.Lookup(name) * in.Resources[name] * scale
	}
	for _, name := range sortedKeys(in.Products) {
		spend += product.Lookup(name) * in.Products[name] * scale
	}
	return spend
}

func flowDeclaresInputs(flow ProductionFlow) bool {
	return len(flow.Inputs.Resources) > 0 || len(flow.Inputs.Products) > 0
}

// sortedKeys fixes an iteration order so float accumulation is reproducible:
// identical inputs must yield bit-identical statements.
func sortedKeys(m map[string]float64) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

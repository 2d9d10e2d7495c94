package econ

import (
	"math"
	"reflect"
	"testing"
)

func testFlows() SectorFlows {
	return SectorFlows{
		"Manufacturing": {
			UnitProduction: {
				Inputs: FlowRates{
					Resources: map[string]float64{"Steel": 0.5},
					Products:  map[string]float64{"Electricity": 0.5},
				},
				Outputs: FlowRates{
					Products: map[string]float64{"Manufactured Goods": 1.0},
				},
			},
			UnitRetail: {
				Inputs: FlowRates{
					Products: map[string]float64{"Manufactured Goods": 0.8},
				},
			},
		},
		"Energy": {
			UnitExtraction: {
				Outputs: FlowRates{
					Resources: map[string]float64{"Oil": 2.0},
				},
			},
			UnitService: {
				Inputs: FlowRates{
					Products: map[string]float64{"Electricity": 0.2},
				},
			},
		},
		"Defense": {
			UnitRetail: {
				Inputs: FlowRates{
					Products: map[string]float64{"Defense Systems": 0.2},
				},
			},
		},
	}
}

func testEconomics() UnitEconomics {
	return UnitEconomics{
		Retail:     UnitCosts{BaseRevenue: 40, BaseCost: 25},
		Production: UnitCosts{BaseRevenue: 60, BaseCost: 35},
		Service:    UnitCosts{BaseRevenue: 30, BaseCost: 18},
		Extraction: UnitCosts{BaseRevenue: 50, BaseCost: 28},
	}
}

func testCommodityPrices() PriceSnapshot {
	return PriceSnapshot{"Steel": 850, "Oil": 75}
}

func testProductPrices() PriceSnapshot {
	return PriceSnapshot{"Electricity": 200, "Manufactured Goods": 1500}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func TestManufacturingProductionExample(t *testing.T) {
	entries := []MarketEntry{{Sector: "Manufacturing", ProductionCount: 1}}
	st := ComputeStatements(entries, testFlows(), testCommodityPrices(), testProductPrices(), testEconomics(), StatementParams{PeriodHours: 96})

	if st.Revenue != 144_000 {
		t.Fatalf("revenue = %v, want 144000", st.Revenue)
	}
	wantCost := 50_400 + 35*96.0
	if !approx(st.VariableCosts, wantCost) {
		t.Fatalf("variable costs = %v, want %v", st.VariableCosts, wantCost)
	}
	if len(st.Sectors) != 1 {
		t.Fatalf("expected one sector, got %d", len(st.Sectors))
	}
	prod := st.Sectors[0].Units.Production
	if prod.Units != 1 || prod.ProducedUnits != 96 {
		t.Fatalf("production breakdown = %+v", prod)
	}
	if len(st.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", st.Errors)
	}
}

func TestExtractionExample(t *testing.T) {
	entries := []MarketEntry{{Sector: "Energy", ExtractionCount: 2}}
	st := ComputeStatements(entries, testFlows(), testCommodityPrices(), testProductPrices(), testEconomics(), StatementParams{PeriodHours: 10})

	if st.Revenue != 3000 {
		t.Fatalf("revenue = %v, want 3000", st.Revenue)
	}
	ext := st.Sectors[0].Units.Extraction
	if ext.ProducedUnits != 40 {
		t.Fatalf("produced units = %d, want 40", ext.ProducedUnits)
	}
	// No declared inputs: cost is the labor component only.
	if !approx(st.VariableCosts, 28*10*2) {
		t.Fatalf("variable costs = %v, want %v", st.VariableCosts, 28*10*2.0)
	}
}

func TestPeriodHoursDefault(t *testing.T) {
	for _, hours := range []float64{0, -1, -96} {
		st := ComputeStatements(nil, testFlows(), nil, nil, testEconomics(), StatementParams{PeriodHours: hours})
		if st.PeriodHours != DefaultPeriodHours {
			t.Fatalf("periodHours=%v: effective = %v, want %v", hours, st.PeriodHours, DefaultPeriodHours)
		}
	}
}

func TestMissingSectorFlow(t *testing.T) {
	entries := []MarketEntry{
		{Sector: "Aerospace", ProductionCount: 3},
		{Sector: "Energy", ExtractionCount: 2},
	}
	st := ComputeStatements(entries, testFlows(), testCommodityPrices(), testProductPrices(), testEconomics(), StatementParams{PeriodHours: 10})

	if len(st.Errors) != 1 || st.Errors[0] != "missing_flow_Aerospace" {
		t.Fatalf("errors = %v, want [missing_flow_Aerospace]", st.Errors)
	}
	// Processing continues: the Energy entry still contributes.
	if st.Revenue != 3000 {
		t.Fatalf("revenue = %v, want 3000 from Energy only", st.Revenue)
	}
	if len(st.Sectors) != 1 || st.Sectors[0].SectorType != "Energy" {
		t.Fatalf("sectors = %+v, want Energy only", st.Sectors)
	}
}

func TestMissingPriceIsNotAnError(t *testing.T) {
	entries := []MarketEntry{{Sector: "Manufacturing", ProductionCount: 1}}
	products := PriceSnapshot{"Electricity": 200} // no Manufactured Goods price
	st := ComputeStatements(entries, testFlows(), testCommodityPrices(), products, testEconomics(), StatementParams{PeriodHours: 96})

	if len(st.Errors) != 0 {
		t.Fatalf("price gap must not be tagged: %v", st.Errors)
	}
	if st.Revenue != 0 {
		t.Fatalf("revenue = %v, want 0 with unpriced output", st.Revenue)
	}
	// Output is still produced even when unpriced.
	if st.Sectors[0].Units.Production.ProducedUnits != 96 {
		t.Fatalf("produced = %d, want 96", st.Sectors[0].Units.Production.ProducedUnits)
	}
}

func TestNegativeCountsClampedToZero(t *testing.T) {
	entries := []MarketEntry{{
		Sector:          "Manufacturing",
		RetailCount:     -4,
		ProductionCount: -1,
		ServiceCount:    -9,
		ExtractionCount: -2,
	}}
	st := ComputeStatements(entries, testFlows(), testCommodityPrices(), testProductPrices(), testEconomics(), StatementParams{PeriodHours: 96})

	if st.Revenue != 0 || st.VariableCosts != 0 {
		t.Fatalf("negative counts contributed: revenue=%v costs=%v", st.Revenue, st.VariableCosts)
	}
	b := st.Sectors[0].Units
	for _, a := range []UnitActivity{b.Retail, b.Production, b.Service, b.Extraction} {
		if a.Units != 0 {
			t.Fatalf("clamped unit count leaked: %+v", b)
		}
	}
}

func TestFallbackToBaseEconomics(t *testing.T) {
	flows := SectorFlows{
		"Logistics": {
			UnitProduction: {
				Inputs: FlowRates{Products: map[string]float64{"Electricity": 0.1}},
				// No declared output product.
			},
		},
	}
	entries := []MarketEntry{{Sector: "Logistics", ProductionCount: 2}}
	st := ComputeStatements(entries, flows, nil, testProductPrices(), testEconomics(), StatementParams{PeriodHours: 96})

	if !approx(st.Revenue, 60*96*2) {
		t.Fatalf("fallback revenue = %v, want %v", st.Revenue, 60*96*2.0)
	}
	wantCost := 35*96*2 + 0.1*200*96*2
	if !approx(st.VariableCosts, wantCost) {
		t.Fatalf("fallback cost = %v, want %v", st.VariableCosts, wantCost)
	}
}

func TestUndeclaredUnitTypeFallsBack(t *testing.T) {
	// Energy declares no retail flow: retail units run on base economics
	// without raising a configuration error.
	entries := []MarketEntry{{Sector: "Energy", RetailCount: 3}}
	st := ComputeStatements(entries, testFlows(), testCommodityPrices(), testProductPrices(), testEconomics(), StatementParams{PeriodHours: 10})

	if len(st.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", st.Errors)
	}
	if !approx(st.Revenue, 40*10*3) {
		t.Fatalf("revenue = %v, want %v", st.Revenue, 40*10*3.0)
	}
	if !approx(st.VariableCosts, 25*10*3) {
		t.Fatalf("costs = %v, want %v", st.VariableCosts, 25*10*3.0)
	}
}

func TestOperatingIncomeIdentity(t *testing.T) {
	entries := []MarketEntry{
		{Sector: "Manufacturing", ProductionCount: 2, RetailCount: 1},
		{Sector: "Energy", ExtractionCount: 4, ServiceCount: 2},
	}
	params := StatementParams{
		PeriodHours:        96,
		Fixed:              FixedCosts{CEOSalary: 5000, Overhead: 2500},
		DividendPercentage: 20,
	}
	st := ComputeStatements(entries, testFlows(), testCommodityPrices(), testProductPrices(), testEconomics(), params)

	if st.Revenue < 0 || st.VariableCosts < 0 {
		t.Fatalf("negative totals: revenue=%v costs=%v", st.Revenue, st.VariableCosts)
	}
	if st.FixedCosts != 7500 {
		t.Fatalf("fixed costs = %v, want 7500", st.FixedCosts)
	}
	if st.OperatingIncome != st.Revenue-st.VariableCosts-st.FixedCosts {
		t.Fatalf("operating income identity broken: %+v", st)
	}
	if st.NetIncome != st.OperatingIncome-st.Dividends {
		t.Fatalf("net income identity broken: %+v", st)
	}
	if st.RetainedEarnings != st.NetIncome {
		t.Fatalf("retained earnings = %v, want %v", st.RetainedEarnings, st.NetIncome)
	}
}

func TestDividendPolicy(t *testing.T) {
	entries := []MarketEntry{{Sector: "Manufacturing", ProductionCount: 1}}

	tests := []struct {
		name  string
		pct   float64
		fixed FixedCosts
	}{
		{name: "zero pct", pct: 0},
		{name: "mid pct", pct: 35},
		{name: "full payout", pct: 100},
		{name: "over 100 clamps", pct: 250},
		{name: "negative clamps", pct: -10},
	}
	for _, tc := range tests {
		params := StatementParams{PeriodHours: 96, DividendPercentage: tc.pct, Fixed: tc.fixed}
		st := ComputeStatements(entries, testFlows(), testCommodityPrices(), testProductPrices(), testEconomics(), params)

		if st.Dividends < 0 {
			t.Fatalf("%s: negative dividends %v", tc.name, st.Dividends)
		}
		if st.Dividends > st.OperatingIncome {
			t.Fatalf("%s: dividends %v exceed operating income %v", tc.name, st.Dividends, st.OperatingIncome)
		}
		pct := math.Min(math.Max(tc.pct, 0), 100)
		if want := st.OperatingIncome * pct / 100; st.OperatingIncome > 0 && st.Dividends != want {
			t.Fatalf("%s: dividends = %v, want %v", tc.name, st.Dividends, want)
		}
	}
}

func TestNoDividendsOnLoss(t *testing.T) {
	// Fixed costs large enough to push operating income negative.
	entries := []MarketEntry{{Sector: "Energy", ExtractionCount: 1}}
	params := StatementParams{
		PeriodHours:        10,
		Fixed:              FixedCosts{CEOSalary: 1_000_000},
		DividendPercentage: 50,
	}
	st := ComputeStatements(entries, testFlows(), testCommodityPrices(), testProductPrices(), testEconomics(), params)

	if st.OperatingIncome >= 0 {
		t.Fatalf("expected a loss, got operating income %v", st.OperatingIncome)
	}
	if st.Dividends != 0 {
		t.Fatalf("dividends on a loss: %v", st.Dividends)
	}
	if st.NetIncome != st.OperatingIncome {
		t.Fatalf("net income = %v, want %v", st.NetIncome, st.OperatingIncome)
	}
}

func TestIdempotence(t *testing.T) {
	entries := []MarketEntry{
		{Sector: "Manufacturing", ProductionCount: 3, RetailCount: 2, ServiceCount: 1},
		{Sector: "Energy", ExtractionCount: 5, ServiceCount: 4},
		{Sector: "Defense", RetailCount: 2},
		{Sector: "Unknown", ProductionCount: 1},
	}
	params := StatementParams{
		PeriodHours:        96,
		Fixed:              FixedCosts{CEOSalary: 5000, Overhead: 2500},
		DividendPercentage: 20,
		CostFloorSectors:   map[string]bool{"Defense": true},
	}
	first := ComputeStatements(entries, testFlows(), testCommodityPrices(), testProductPrices(), testEconomics(), params)
	second := ComputeStatements(entries, testFlows(), testCommodityPrices(), testProductPrices(), testEconomics(), params)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("statement not reproducible:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestInputsNotMutated(t *testing.T) {
	flows := testFlows()
	commodities := testCommodityPrices()
	products := testProductPrices()

	flowsCopy := copyFlows(flows)
	commoditiesCopy := PriceSnapshot(copySnapshot(commodities))
	productsCopy := PriceSnapshot(copySnapshot(products))

	entries := []MarketEntry{
		{Sector: "Manufacturing", ProductionCount: 2, RetailCount: 1},
		{Sector: "Energy", ServiceCount: 3},
	}
	ComputeStatements(entries, flows, commodities, products, testEconomics(), StatementParams{PeriodHours: 96})

	if !reflect.DeepEqual(flows, flowsCopy) {
		t.Fatalf("flows mutated")
	}
	if !reflect.DeepEqual(commodities, commoditiesCopy) {
		t.Fatalf("commodity prices mutated")
	}
	if !reflect.DeepEqual(products, productsCopy) {
		t.Fatalf("product prices mutated")
	}
}

func TestPriceSnapshotLookup(t *testing.T) {
	var nilSnap PriceSnapshot
	if nilSnap.Lookup("Steel") != 0 {
		t.Fatalf("nil snapshot lookup must be 0")
	}
	snap := PriceSnapshot{"Steel": 850}
	if snap.Lookup("Steel") != 850 {
		t.Fatalf("lookup = %v, want 850", snap.Lookup("Steel"))
	}
	if snap.Lookup("Unobtanium") != 0 {
		t.Fatalf("absent name must price at 0")
	}
}

func copyFlows(in SectorFlows) SectorFlows {
	out := SectorFlows{}
	for sector, unitFlows := range in {
		cp := map[UnitType]ProductionFlow{}
		for t, flow := range unitFlows {
			cp[t] = ProductionFlow{
				Inputs:  FlowRates{Resources: copySnapshot(flow.Inputs.Resources), Products: copySnapshot(flow.Inputs.Products)},
				Outputs: FlowRates{Resources: copySnapshot(flow.Outputs.Resources), Products: copySnapshot(flow.Outputs.Products)},
			}
		}
		out[sector] = cp
	}
	return out
}

func copySnapshot(in map[string]float64) map[string]float64 {
	if in == nil {
		return nil
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

package econ

import "testing"

func TestRetailPricingDispatch(t *testing.T) {
	costFloor := map[string]bool{"Defense": true}
	if retailPricingFor("Defense", costFloor) != costFloorRetailPricing {
		t.Fatalf("Defense must take the cost-floor variant")
	}
	if retailPricingFor("Manufacturing", costFloor) != generalRetailPricing {
		t.Fatalf("Manufacturing must take the general variant")
	}
	if retailPricingFor("Defense", nil) != generalRetailPricing {
		t.Fatalf("no classification table means general pricing")
	}
}

func TestCostFloorRetailRevenue(t *testing.T) {
	// Defense Systems are unpriced: the general path would earn nothing,
	// the cost-floor path earns a fraction of full variable cost.
	entries := []MarketEntry{{Sector: "Defense", RetailCount: 1}}
	params := StatementParams{
		PeriodHours:      10,
		CostFloorSectors: map[string]bool{"Defense": true},
	}
	st := ComputeStatements(entries, testFlows(), testCommodityPrices(), testProductPrices(), testEconomics(), params)

	wantCost := 25 * 10.0 // labor only, Defense Systems price at 0
	if !approx(st.VariableCosts, wantCost) {
		t.Fatalf("cost = %v, want %v", st.VariableCosts, wantCost)
	}
	if !approx(st.Revenue, wantCost*CostFloorMultiplier) {
		t.Fatalf("revenue = %v, want floor %v", st.Revenue, wantCost*CostFloorMultiplier)
	}

	// Without classification the same entry earns nothing.
	params.CostFloorSectors = nil
	st = ComputeStatements(entries, testFlows(), testCommodityPrices(), testProductPrices(), testEconomics(), params)
	if st.Revenue != 0 {
		t.Fatalf("general path revenue = %v, want 0", st.Revenue)
	}
}

func TestCostFloorDoesNotCapPriceDrivenRevenue(t *testing.T) {
	// When consumed products are well priced, the floor must not bind.
	products := PriceSnapshot{"Defense Systems": 9000}
	entries := []MarketEntry{{Sector: "Defense", RetailCount: 1}}
	params := StatementParams{
		PeriodHours:      10,
		CostFloorSectors: map[string]bool{"Defense": true},
	}
	st := ComputeStatements(entries, testFlows(), testCommodityPrices(), products, testEconomics(), params)

	want := 9000 * 0.2 * 10.0
	if !approx(st.Revenue, want) {
		t.Fatalf("revenue = %v, want price-driven %v", st.Revenue, want)
	}
}

func TestRetailDemandedUnits(t *testing.T) {
	entries := []MarketEntry{{Sector: "Manufacturing", RetailCount: 2}}
	st := ComputeStatements(entries, testFlows(), testCommodityPrices(), testProductPrices(), testEconomics(), StatementParams{PeriodHours: 96})

	// 0.8 goods per unit-hour, 96 hours, 2 units.
	if got := st.Sectors[0].Units.Retail.DemandedUnits; got != 154 {
		t.Fatalf("demanded units = %d, want round(153.6) = 154", got)
	}
	want := 1500 * 0.8 * 96 * 2.0
	if !approx(st.Revenue, want) {
		t.Fatalf("revenue = %v, want %v", st.Revenue, want)
	}
}

func TestServiceElectricityLeg(t *testing.T) {
	entries := []MarketEntry{{Sector: "Energy", ServiceCount: 3}}
	st := ComputeStatements(entries, testFlows(), testCommodityPrices(), testProductPrices(), testEconomics(), StatementParams{PeriodHours: 10})

	// 0.2 electricity per unit-hour at 200, 10 hours, 3 units.
	wantRevenue := 200 * 0.2 * 10 * 3.0
	if !approx(st.Revenue, wantRevenue) {
		t.Fatalf("revenue = %v, want %v", st.Revenue, wantRevenue)
	}
	wantCost := 18*10*3 + 200*0.2*10*3.0
	if !approx(st.VariableCosts, wantCost) {
		t.Fatalf("cost = %v, want %v", st.VariableCosts, wantCost)
	}
	if got := st.Sectors[0].Units.Service.DemandedUnits; got != 6 {
		t.Fatalf("demanded units = %d, want 6", got)
	}
}

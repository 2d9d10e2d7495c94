package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/fatih/color"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)
)

func renderPrices(out map[string]any) {
	accent.Println("Market Prices")
	items, _ := out["items"].([]any)
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		name, _ := item["name"].(string)
		class, _ := item["class"].(string)
		current := num(item["current_price"])
		reference := num(item["reference_price"])
		scarcity := num(item["scarcity_factor"])

		line := fmt.Sprintf("  %-20s %-10s %12.2f (ref %.2f, scarcity %.2fx)", name, class, current, reference, scarcity)
		switch {
		case scarcity > 1.5:
			warn.Println(line)
		case scarcity < 0.5:
			danger.Println(line)
		default:
			neutral.Println(line)
		}
	}
}

func renderSectors(out map[string]any) {
	accent.Println("Sectors")
	sectors, _ := out["sectors"].([]any)
	for _, raw := range sectors {
		sector, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		name, _ := sector["sector"].(string)
		class, _ := sector["class"].(string)
		accent.Printf("  %s", name)
		if class != "general" {
			warn.Printf("  [%s]", class)
		}
		fmt.Println()

		flows, _ := sector["unit_flows"].(map[string]any)
		for _, unitType := range sortedStringKeys(flows) {
			flow, _ := flows[unitType].(map[string]any)
			neutral.Printf("    %-12s in=%s out=%s\n", unitType, flowSide(flow, "inputs"), flowSide(flow, "outputs"))
		}
	}
}

func renderCorporations(out map[string]any) {
	accent.Println("Corporations")
	corps, _ := out["corporations"].([]any)
	for _, raw := range corps {
		c, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		neutral.Printf("  #%.0f %-24s capital %14.2f  dividend %.0f%%\n",
			num(c["id"]), c["name"], num(c["capital"]), num(c["dividend_percentage"]))
		entries, _ := c["entries"].([]any)
		for _, rawEntry := range entries {
			e, ok := rawEntry.(map[string]any)
			if !ok {
				continue
			}
			neutral.Printf("      %-16s %-8s retail=%.0f production=%.0f service=%.0f extraction=%.0f\n",
				e["sector"], e["region"],
				num(e["retail_count"]), num(e["production_count"]),
				num(e["service_count"]), num(e["extraction_count"]))
		}
	}
}

func renderStatement(out map[string]any, latest bool) {
	stmt, _ := out["statement"].(map[string]any)
	if stmt == nil {
		raw, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(raw))
		return
	}
	if name, ok := out["name"].(string); ok {
		accent.Printf("Statement — %s\n", name)
	} else {
		accent.Println("Statement")
	}
	if latest {
		if turnID, ok := out["turn_id"].(string); ok {
			neutral.Printf("  turn %s\n", turnID)
		}
	}

	neutral.Printf("  Period hours      %12.1f\n", num(stmt["period_hours"]))
	neutral.Printf("  Revenue           %12.2f\n", num(stmt["revenue"]))
	neutral.Printf("  Variable costs    %12.2f\n", num(stmt["variable_costs"]))
	neutral.Printf("  Fixed costs       %12.2f\n", num(stmt["fixed_costs"]))

	opInc := num(stmt["operating_income"])
	line := fmt.Sprintf("  Operating income  %12.2f", opInc)
	if opInc >= 0 {
		success.Println(line)
	} else {
		danger.Println(line)
	}
	neutral.Printf("  Dividends         %12.2f\n", num(stmt["dividends"]))
	neutral.Printf("  Net income        %12.2f\n", num(stmt["net_income"]))
	neutral.Printf("  Retained earnings %12.2f\n", num(stmt["retained_earnings"]))

	sectors, _ := stmt["sectors"].([]any)
	if len(sectors) > 0 {
		accent.Println("  By sector:")
		for _, raw := range sectors {
			s, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			neutral.Printf("    %-16s revenue %12.2f  costs %12.2f\n",
				s["sector_type"], num(s["revenue"]), num(s["variable_costs"]))
		}
	}

	errs, _ := stmt["errors"].([]any)
	for _, e := range errs {
		warn.Printf("  warning: %v\n", e)
	}
}

func renderLeaderboard(out map[string]any) {
	accent.Println("Leaderboard")
	rows, _ := out["rows"].([]any)
	for _, raw := range rows {
		r, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		income := num(r["last_net_income"])
		line := fmt.Sprintf("  %3.0f. %-24s capital %14.2f  last income %12.2f",
			num(r["rank"]), r["name"], num(r["capital"]), income)
		if income < 0 {
			danger.Println(line)
		} else {
			neutral.Println(line)
		}
	}
}

func flowSide(flow map[string]any, side string) string {
	rates, _ := flow[side].(map[string]any)
	parts := make([]string, 0, 4)
	for _, kind := range []string{"resources", "products"} {
		m, _ := rates[kind].(map[string]any)
		for _, name := range sortedStringKeys(m) {
			parts = append(parts, fmt.Sprintf("%s:%.2g", name, num(m[name])))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	out := parts[0]
	for _, p := range parts[1:] {
		out += "," + p
	}
	return out
}

func sortedStringKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func num(v any) float64 {
	f, _ := v.(float64)
	return f
}

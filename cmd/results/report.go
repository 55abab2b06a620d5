package main

import (
	"fmt"
	"strings"

	"divesurf/internal/model"
)

// printReport writes the aggregated order to stdout as an aligned
// field/value block headed by its size class.
func printReport(agg model.AggregatedResult) {
	var sb strings.Builder
	title := "Small"
	if agg.SizeClass == "large" {
		title = "Large"
	}
	fmt.Fprintf(&sb, "\n=== Aggregated %s Order ===\n", title)
	rows := [][2]string{
		{"Order ID", fmt.Sprintf("%d", agg.OrderID)},
		{"Customer ID", agg.CustomerID},
		{"First Name", agg.FirstName},
		{"Last Name", agg.LastName},
		{"Overall Items", fmt.Sprintf("%d", agg.OverallItems)},
		{"Valid", fmt.Sprintf("%t", agg.Valid)},
		{"Validation Result", agg.Detail},
		{"Credit Score", fmt.Sprintf("%d", agg.CreditScore)},
		{"Current Surfboards", fmt.Sprintf("%d", agg.StockAfter.Surfboards)},
		{"Current Suits", fmt.Sprintf("%d", agg.StockAfter.DivingSuits)},
		{"Total Stock", fmt.Sprintf("%d", agg.StockAfter.Total())},
	}
	for _, row := range rows {
		fmt.Fprintf(&sb, "%-18s : %s\n", row[0], row[1])
	}
	sb.WriteString("============================\n")
	fmt.Print(sb.String())
}

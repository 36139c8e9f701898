package charts

import (
	"fmt"
	"sort"
	"strings"
)

// Fallback holds the deterministic chart used when the model cannot produce
// one.
type Fallback struct {
	Chart       Chart
	Explanation string
}

// FallbackForIntent builds a sensible chart directly from aggregate data,
// bypassing the model. Used when insight generation fails and the response
// still needs a renderable figure.
func FallbackForIntent(intent string, data map[string]interface{}) Fallback {
	switch intent {
	case "spending_by_category":
		labels, values := sortedSeries(asTotals(data["total_by_category"]))
		return Fallback{
			Chart:       NewPieChart("Spending by Category", labels, values),
			Explanation: "Pie charts effectively show proportional breakdown of spending across categories",
		}
	case "transactions_over_time":
		labels, values := dateSeries(asTotals(data["transactions_by_date"]))
		return Fallback{
			Chart:       NewLineChart("Transaction Trends", labels, values, "Date", "Amount ($)"),
			Explanation: "Line charts are ideal for showing trends and changes over time",
		}
	case "balance_over_time":
		labels, values := dateSeries(asTotals(data["transactions_by_date"]))
		return Fallback{
			Chart:       NewAreaChart("Balance Over Time", labels, values, "Date", "Amount ($)"),
			Explanation: "Area charts effectively show balance changes and trends over time",
		}
	case "total_income":
		return Fallback{
			Chart:       NewBarChart("Total Income", []string{"Total Income"}, []float64{asFloat(data["total_income"])}, "Period", "Amount ($)"),
			Explanation: "Bar charts clearly display total amounts for easy comparison",
		}
	case "total_spent":
		return Fallback{
			Chart:       NewBarChart("Total Spending", []string{"Total Spent"}, []float64{asFloat(data["total_spent"])}, "Period", "Amount ($)"),
			Explanation: "Bar charts clearly display total amounts for easy comparison",
		}
	default:
		title := fmt.Sprintf("Financial Analysis: %s", strings.ReplaceAll(intent, "_", " "))
		return Fallback{
			Chart:       NewBarChart(title, []string{"Total"}, []float64{0}, "Category", "Amount ($)"),
			Explanation: "Bar charts clearly display total amounts for easy comparison",
		}
	}
}

func asTotals(v interface{}) map[string]float64 {
	if m, ok := v.(map[string]float64); ok {
		return m
	}
	return nil
}

func asFloat(v interface{}) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return 0
}

// sortedSeries orders labels by descending value so the biggest categories
// come first.
func sortedSeries(totals map[string]float64) ([]string, []float64) {
	labels := make([]string, 0, len(totals))
	for label := range totals {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if totals[labels[i]] != totals[labels[j]] {
			return totals[labels[i]] > totals[labels[j]]
		}
		return labels[i] < labels[j]
	})

	values := make([]float64, len(labels))
	for i, label := range labels {
		values[i] = totals[label]
	}
	return labels, values
}

// dateSeries orders labels chronologically; labels are YYYY-MM-DD so the
// lexical sort is the calendar sort.
func dateSeries(totals map[string]float64) ([]string, []float64) {
	labels := make([]string, 0, len(totals))
	for label := range totals {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	values := make([]float64, len(labels))
	for i, label := range labels {
		values[i] = totals[label]
	}
	return labels, values
}

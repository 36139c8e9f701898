// Package agent answers natural-language questions about stored transactions.
//
// Answering is a three step flow: classify the question into an intent plus
// filters, run the matching aggregate query, then ask the model to write an
// insight with a chart. When the model misbehaves on the last step, a
// deterministic chart is built from the same data instead of failing the
// request.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/personifi/personifi/internal/charts"
	"github.com/personifi/personifi/internal/store"
)

// Recognized question intents.
const (
	IntentTotalSpent           = "total_spent"
	IntentTotalIncome          = "total_income"
	IntentSpendingByCategory   = "spending_by_category"
	IntentTransactionsOverTime = "transactions_over_time"
	IntentBalanceOverTime      = "balance_over_time"
)

// Classification is the model's answer to step one.
type Classification struct {
	Intent  string        `json:"intent"`
	Filters store.Filters `json:"filters"`
}

// UnmarshalJSON maps the wire filter keys onto store.Filters.
func (c *Classification) UnmarshalJSON(data []byte) error {
	var raw struct {
		Intent  string `json:"intent"`
		Filters struct {
			Category  string `json:"category"`
			StartDate string `json:"start_date"`
			EndDate   string `json:"end_date"`
		} `json:"filters"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Intent = raw.Intent
	c.Filters = store.Filters{
		Category:  raw.Filters.Category,
		StartDate: raw.Filters.StartDate,
		EndDate:   raw.Filters.EndDate,
	}
	return nil
}

// Insight is the model's answer to step three.
type Insight struct {
	Summary     string       `json:"summary"`
	Chart       charts.Chart `json:"chart"`
	Explanation string       `json:"explanation,omitempty"`
}

// Response is the full agent answer returned to the API layer.
type Response struct {
	Success bool                   `json:"success"`
	Intent  string                 `json:"intent,omitempty"`
	Filters map[string]string      `json:"filters,omitempty"`
	Insight *Insight               `json:"insight,omitempty"`
	RawData map[string]interface{} `json:"raw_data,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// Agent wires the model and the store together.
type Agent struct {
	model  TextModel
	store  store.TransactionStore
	logger zerolog.Logger
}

func New(model TextModel, st store.TransactionStore, logger zerolog.Logger) *Agent {
	return &Agent{model: model, store: st, logger: logger}
}

// Ask runs the classify-query-summarize flow for one user question.
func (a *Agent) Ask(ctx context.Context, question string) (*Response, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("Ask: empty question")
	}

	cls, err := a.classify(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("Ask: classify question: %w", err)
	}
	a.logger.Debug().
		Str("intent", cls.Intent).
		Str("category", cls.Filters.Category).
		Msg("question classified")

	data, err := a.gather(ctx, cls.Intent, cls.Filters)
	if err != nil {
		return nil, fmt.Errorf("Ask: query transactions: %w", err)
	}

	insight := a.summarize(ctx, question, cls, data)

	return &Response{
		Success: true,
		Intent:  cls.Intent,
		Filters: filtersMap(cls.Filters),
		Insight: insight,
		RawData: data,
	}, nil
}

func (a *Agent) classify(ctx context.Context, question string) (Classification, error) {
	var cls Classification

	out, err := a.model.Generate(ctx, classifySystemPrompt, question)
	if err != nil {
		return cls, err
	}
	if err := json.Unmarshal([]byte(cleanModelJSON(out)), &cls); err != nil {
		return cls, fmt.Errorf("parse classification JSON: %w", err)
	}

	switch cls.Intent {
	case IntentTotalSpent, IntentTotalIncome, IntentSpendingByCategory,
		IntentTransactionsOverTime, IntentBalanceOverTime:
	default:
		a.logger.Warn().Str("intent", cls.Intent).Msg("unknown intent, defaulting to total_spent")
		cls.Intent = IntentTotalSpent
	}
	return cls, nil
}

// gather runs the aggregate query for the intent and shapes the result the
// way the chart builders expect it.
func (a *Agent) gather(ctx context.Context, intent string, f store.Filters) (map[string]interface{}, error) {
	switch intent {
	case IntentTotalSpent:
		total, err := a.store.TotalSpent(ctx, f)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"total_spent": total}, nil
	case IntentTotalIncome:
		total, err := a.store.TotalIncome(ctx, f)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"total_income": total}, nil
	case IntentSpendingByCategory:
		totals, err := a.store.SpendingByCategory(ctx, f)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"total_by_category": totals}, nil
	case IntentTransactionsOverTime, IntentBalanceOverTime:
		totals, err := a.store.TotalsByDate(ctx, f)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"transactions_by_date": totals}, nil
	default:
		return map[string]interface{}{}, nil
	}
}

// summarize asks the model for a written insight; any failure falls back to a
// deterministic chart built from the same data.
func (a *Agent) summarize(ctx context.Context, question string, cls Classification, data map[string]interface{}) *Insight {
	payload, err := json.Marshal(map[string]interface{}{
		"question": question,
		"intent":   cls.Intent,
		"filters":  filtersMap(cls.Filters),
		"chart": map[string]string{
			"type": recommendChartType(cls.Intent),
		},
		"raw_data": data,
	})
	if err != nil {
		return a.fallbackInsight(cls.Intent, data)
	}

	out, err := a.model.Generate(ctx, insightSystemPrompt, string(payload))
	if err != nil {
		a.logger.Warn().Err(err).Msg("insight generation failed, using fallback chart")
		return a.fallbackInsight(cls.Intent, data)
	}

	var insight Insight
	if err := json.Unmarshal([]byte(cleanModelJSON(out)), &insight); err != nil {
		a.logger.Warn().Err(err).Msg("insight JSON malformed, using fallback chart")
		return a.fallbackInsight(cls.Intent, data)
	}
	if insight.Summary == "" || len(insight.Chart.Data) == 0 {
		a.logger.Warn().Msg("insight incomplete, using fallback chart")
		fb := a.fallbackInsight(cls.Intent, data)
		if insight.Summary != "" {
			fb.Summary = insight.Summary
		}
		return fb
	}
	return &insight
}

func (a *Agent) fallbackInsight(intent string, data map[string]interface{}) *Insight {
	fb := charts.FallbackForIntent(intent, data)
	return &Insight{
		Summary:     fallbackSummary(intent, data),
		Chart:       fb.Chart,
		Explanation: fb.Explanation,
	}
}

func fallbackSummary(intent string, data map[string]interface{}) string {
	switch intent {
	case IntentTotalSpent:
		if v, ok := data["total_spent"].(float64); ok {
			return fmt.Sprintf("You spent a total of $%.2f over the selected period.", v)
		}
	case IntentTotalIncome:
		if v, ok := data["total_income"].(float64); ok {
			return fmt.Sprintf("You received a total of $%.2f over the selected period.", v)
		}
	case IntentSpendingByCategory:
		return "Here is your spending broken down by category."
	case IntentTransactionsOverTime:
		return "Here is your transaction activity over time."
	case IntentBalanceOverTime:
		return "Here is how your daily balance changed over time."
	}
	return "Here is a summary of your transaction data."
}

func filtersMap(f store.Filters) map[string]string {
	m := map[string]string{}
	if f.Category != "" {
		m["category"] = f.Category
	}
	if f.StartDate != "" {
		m["start_date"] = f.StartDate
	}
	if f.EndDate != "" {
		m["end_date"] = f.EndDate
	}
	return m
}

package agent

const classifySystemPrompt = "You are a financial query classifier for a personal finance assistant.\n" +
	"Classify the user's question into exactly one intent and extract any filters.\n\n" +
	"Valid intents:\n" +
	"- total_spent: how much money went out overall\n" +
	"- total_income: how much money came in overall\n" +
	"- spending_by_category: breakdown of spending per category\n" +
	"- transactions_over_time: spending activity across dates\n" +
	"- balance_over_time: net daily totals across dates\n\n" +
	"Filters (all optional, omit when not mentioned):\n" +
	"- category: a single spending category name\n" +
	"- start_date: YYYY-MM-DD\n" +
	"- end_date: YYYY-MM-DD\n\n" +
	"Respond with STRICT JSON only, no markdown fences, no commentary:\n" +
	"{\"intent\": \"<one of the valid intents>\", \"filters\": {\"category\": \"...\", \"start_date\": \"...\", \"end_date\": \"...\"}}\n" +
	"If the question does not match any intent, use \"total_spent\"."

const insightSystemPrompt = "You are a personal finance analyst. You receive a JSON payload with the\n" +
	"user's question intent, applied filters, a recommended chart type, and the\n" +
	"aggregated transaction data that answers the question.\n\n" +
	"Write a short, concrete summary of what the data shows. Mention actual\n" +
	"amounts and category or date names from the data. Do not invent numbers.\n\n" +
	"Then produce a Plotly chart specification using the recommended chart type.\n" +
	"The chart object must have \"data\" (array of traces) and \"layout\" keys.\n\n" +
	"Respond with STRICT JSON only, no markdown fences, no commentary:\n" +
	"{\"summary\": \"...\", \"chart\": {\"data\": [...], \"layout\": {...}}, \"explanation\": \"why this chart fits\"}"

// recommendChartType mirrors the chart choice the deterministic fallback makes
// for each intent, so model output and fallback stay visually consistent.
func recommendChartType(intent string) string {
	switch intent {
	case IntentSpendingByCategory:
		return "pie"
	case IntentTransactionsOverTime:
		return "line"
	case IntentBalanceOverTime:
		return "area"
	default:
		return "bar"
	}
}

package repository

import (
	"fmt"
	"strings"

	"market-khabri/internal/entity"
	"market-khabri/pkg/utils"
)

const (
	ExtractionSystemPrompt = "You are a financial data extraction expert. Return only valid JSON."
	InsightSystemPrompt    = "You are a street-smart stock analyst. Be concise, relatable, and honest."

	GeneralKnowledgePrefix = "Based on general public information"
	OffTopicAnswer         = "I am a financial assistant and can only answer questions related to stocks and companies."
)

// BuildExtractionPrompt asks for the headline figures of a result filing excerpt.
func BuildExtractionPrompt(excerpt string) string {
	return fmt.Sprintf(`Extract financial metrics from this quarterly result text:

%s

Extract and return ONLY these values in JSON format:
- revenue (in crores)
- profit_after_tax (in crores)
- eps (earnings per share)
- operating_margin (percentage)
- yoy_growth (year-over-year growth percentage)
- qoq_growth (quarter-over-quarter growth percentage)
- quarter (Q1/Q2/Q3/Q4)
- financial_year (e.g., FY24)

Use null for any value that is not stated in the text. Do not estimate.
Return valid JSON only, no extra text.`, excerpt)
}

// BuildInsightPrompt asks for casual commentary on a set of figures.
func BuildInsightPrompt(symbol string, rec *entity.FinancialRecord) string {
	name := rec.CompanyName
	if name == "" {
		name = symbol
	}

	return fmt.Sprintf(`You are a stock market analyst. Analyze these quarterly results and provide insights in a casual, engaging tone (like explaining to a friend):

Company: %s
Quarter: %s %s

Financial Metrics:
- Revenue: ₹%s Cr
- Profit After Tax: ₹%s Cr
- EPS: ₹%.2f
- Operating Margin: %.1f%%
- YoY Growth: %.1f%%
- QoQ Growth: %.1f%%

Provide:
1. A 2-3 sentence summary of performance (casual tone, use words like "solid", "meh", "crushing it")
2. 2-4 key highlights (positive points)
3. 1-3 red flags or concerns

Format as JSON:
{
  "insights": "summary text",
  "highlights": ["point 1", "point 2"],
  "red_flags": ["concern 1"]
}`,
		name, rec.Quarter, rec.FinancialYear,
		utils.FormatGrouped(entity.ValueOr(rec.Revenue, 0), 0),
		utils.FormatGrouped(entity.ValueOr(rec.ProfitAfterTax, 0), 0),
		entity.ValueOr(rec.EPS, 0),
		entity.ValueOr(rec.OperatingMargin, 0),
		entity.ValueOr(rec.YoYGrowth, 0),
		entity.ValueOr(rec.QoQGrowth, 0),
	)
}

// BuildTriagePrompt asks the fast model to classify a chat question.
func BuildTriagePrompt(question string) string {
	return fmt.Sprintf(`Analyze the user's query: %q
Your task is to classify this query into one of three categories and identify the stock symbol if possible.
The categories are: REAL_STOCK, FAKE_STOCK, OFF_TOPIC.

- If the query is about a real-world stock or company (e.g., "Reliance", "AAPL", "How is TCS doing?"), classify it as REAL_STOCK and extract the stock symbol.
- If the query mentions a name that is clearly not a real stock ticker or company (e.g., "mihit", "harshilagro"), classify it as FAKE_STOCK.
- If the query is unrelated to stocks, finance, or companies (e.g., "chicken biryani recipe"), classify it as OFF_TOPIC.

Respond ONLY with a JSON object in the format: {"query_type": "CATEGORY", "symbol": "EXTRACTED_SYMBOL_OR_NULL"}`, question)
}

const chatRules = `You are 'Khabri', an AI financial assistant. Your purpose is to be helpful, accurate, and safe.

STRICT BEHAVIORAL RULES:
1. SINGLE SOURCE OF TRUTH: Your only source for specific company performance data (revenue, profit, margins, growth) is the JSON in the KNOWLEDGE BASE. NEVER invent numbers or metrics. Quote the numbers exactly as they are.
2. CONVERSATION MEMORY: Use the earlier messages for context. Your answer should follow naturally from the user's most recent message.
3. NO FINANCIAL ADVICE: Never suggest buying, selling, or holding.
4. STAY ON TOPIC: Politely decline anything unrelated to finance, stocks, or business.

QUERY HANDLING:
- IF the user asks about a company found in the KNOWLEDGE BASE, answer strictly from that JSON.
- IF the user asks about a real company that is NOT in the KNOWLEDGE BASE, give a brief factual summary from general knowledge and start with "` + GeneralKnowledgePrefix + `...". Do not quote specific quarterly figures.
- IF the name does not refer to a real company or stock, say you can only provide information on real companies.
- IF the query is off-topic, reply: "` + OffTopicAnswer + `"`

// BuildChatSystemPrompt renders the rule set with the given knowledge base JSON.
// An empty knowledge base is rendered as an empty array.
func BuildChatSystemPrompt(knowledgeBase string) string {
	if strings.TrimSpace(knowledgeBase) == "" {
		knowledgeBase = "[]"
	}

	var b strings.Builder
	b.WriteString(chatRules)
	b.WriteString("\n\nKNOWLEDGE BASE:\n```json\n")
	b.WriteString(knowledgeBase)
	b.WriteString("\n```\n\nContinue the conversation. The last message is the user's most recent question.")
	return b.String()
}

package telegram

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"market-khabri/internal/entity"
	"market-khabri/pkg/utils"
)

const maxMessageLen = 4090

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// FormatAnalysisForTelegram renders one analysis as a Markdown message.
func FormatAnalysisForTelegram(r *entity.AnalysisRecord) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("📊 *%s* (%s)\n", escape(r.CompanyName), escape(r.CompanySymbol)))
	sb.WriteString(fmt.Sprintf("🗓️ %s %s", r.Quarter, escape(r.FinancialYear)))
	if r.Source == entity.ExtractionSourceSynthetic {
		sb.WriteString(" _(demo figures)_")
	}
	sb.WriteString("\n\n")

	m := r.Metrics
	sb.WriteString(fmt.Sprintf("💰 *Revenue:* %s\n", crore(m.Revenue)))
	sb.WriteString(fmt.Sprintf("🏦 *PAT:* %s\n", crore(m.ProfitAfterTax)))
	sb.WriteString(fmt.Sprintf("📈 *EPS:* %s\n", rupee(m.EPS)))
	sb.WriteString(fmt.Sprintf("⚙️ *Operating Margin:* %s\n", percent(m.OperatingMargin)))
	sb.WriteString(fmt.Sprintf("📅 *YoY:* %s | *QoQ:* %s\n\n", percent(m.YoYGrowth), percent(m.QoQGrowth)))

	if r.Insights != "" {
		sb.WriteString(fmt.Sprintf("💬 %s\n\n", escape(r.Insights)))
	}

	if len(r.Highlights) > 0 {
		sb.WriteString("✅ *Highlights*\n")
		for _, h := range r.Highlights {
			sb.WriteString(fmt.Sprintf("• %s\n", escape(h)))
		}
		sb.WriteString("\n")
	}

	if len(r.RedFlags) > 0 {
		sb.WriteString("🚩 *Red Flags*\n")
		for _, f := range r.RedFlags {
			sb.WriteString(fmt.Sprintf("• %s\n", escape(f)))
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// FormatUpcomingForTelegram renders the result calendar as a Markdown list.
func FormatUpcomingForTelegram(events []entity.ResultEvent) string {
	if len(events) == 0 {
		return "No upcoming results scheduled."
	}

	var sb strings.Builder
	sb.WriteString("🗓️ *Upcoming Results*\n\n")
	for _, e := range events {
		sb.WriteString(fmt.Sprintf("• %s *%s* %s %s %s\n",
			e.Date(), escape(e.CompanySymbol), escape(e.CompanyName), e.Quarter, escape(e.FinancialYear)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func escape(s string) string {
	return markdownEscaper.Replace(s)
}

func crore(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("₹%s Cr", utils.FormatGrouped(*v, 2))
}

func rupee(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("₹%.2f", *v)
}

func percent(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%+.1f%%", *v)
}

// splitMessage breaks text into parts of at most limit bytes, preferring line
// boundaries and never cutting a rune in half.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var parts []string
	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], "\n")
		if cut <= 0 {
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
		}
		parts = append(parts, text[:cut])
		text = strings.TrimLeft(text[cut:], "\n")
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}

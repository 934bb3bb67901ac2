package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
)

// StripMarkdownFences removes a leading ```json / ``` fence and a trailing ``` fence.
func StripMarkdownFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// DecodeModelJSON parses a model response into v. Markdown fences are stripped
// first; if the payload still does not parse, a single repair pass is tried
// (trailing commas, single quotes, unterminated braces).
func DecodeModelJSON(raw string, v interface{}) error {
	cleaned := StripMarkdownFences(raw)
	if cleaned == "" {
		return fmt.Errorf("empty model response")
	}

	err := json.Unmarshal([]byte(cleaned), v)
	if err == nil {
		return nil
	}

	repaired, repairErr := jsonrepair.RepairJSON(cleaned)
	if repairErr != nil {
		return fmt.Errorf("failed to unmarshal model response: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return fmt.Errorf("failed to unmarshal repaired model response: %w", err)
	}
	return nil
}

// Truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

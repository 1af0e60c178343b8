package provider

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"trendpulse/app/pkg/types"
)

const (
	intentSystemPrompt = `You are a task-tracking assistant. Extract the tracking topic and frequency from the user's message.

Rules:
- If the message is a greeting (hi, hello, hey, thanks, ok, yeah, etc.) or small talk, return topic as null.
- If the message is NOT clearly about tracking/monitoring a real topic (news, stock, crypto, company, technology, etc.), return topic as null.
- Only set topic if the user clearly wants to track something meaningful.
- frequency must be a valid cron string (default: '0 * * * *' for hourly, '0 9 * * *' for daily).
- confirmation should be a short, friendly reply (1 sentence).

Return ONLY valid JSON, no markdown, no explanation:
{ "topic": "string or null", "frequency": "cron_string", "confirmation": "string" }`

	analysisPromptFormat = `Analyze the provided news text about '%s'.
Return ONLY valid JSON, no markdown:
{ "summary": "concise summary", "sentiment": "Positive/Neutral/Negative", "insight": "one key strategic insight" }`
)

// stripFences removes fenced code-block markers that models sometimes wrap
// around JSON output.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// parseIntentJSON reads a provider's intent response. A null or absent
// topic is a valid "chat only" outcome, not an error; malformed JSON is a
// provider failure and triggers fallthrough.
func parseIntentJSON(raw string) (types.Intent, error) {
	body := stripFences(raw)
	if !gjson.Valid(body) {
		return types.Intent{}, fmt.Errorf("malformed intent JSON: %q", truncateForLog(body))
	}
	doc := gjson.Parse(body)

	intent := types.Intent{
		Confirmation: doc.Get("confirmation").String(),
	}
	topic := doc.Get("topic")
	if !topic.Exists() || topic.Type == gjson.Null {
		return intent, nil
	}
	intent.Topic = strings.TrimSpace(topic.String())
	intent.Frequency = strings.TrimSpace(doc.Get("frequency").String())
	return intent, nil
}

// parseAnalysisJSON reads a provider's analysis response. A missing summary
// counts as a provider failure; an out-of-enumeration sentiment is coerced
// to Unknown.
func parseAnalysisJSON(raw string) (types.Analysis, error) {
	body := stripFences(raw)
	if !gjson.Valid(body) {
		return types.Analysis{}, fmt.Errorf("malformed analysis JSON: %q", truncateForLog(body))
	}
	doc := gjson.Parse(body)

	summary := strings.TrimSpace(doc.Get("summary").String())
	if summary == "" {
		return types.Analysis{}, fmt.Errorf("analysis JSON missing summary")
	}
	return types.Analysis{
		Summary:   summary,
		Sentiment: types.ParseSentiment(doc.Get("sentiment").String()),
		Insight:   strings.TrimSpace(doc.Get("insight").String()),
	}, nil
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func truncateForLog(s string) string {
	return truncateRunes(s, 120)
}

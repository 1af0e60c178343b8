package types

import (
	"strings"
	"time"
)

// Sentiment is the fixed classification a completed analysis carries.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentUnknown  Sentiment = "Unknown"
)

// ParseSentiment coerces a free-form provider value into the enumeration.
// Anything unrecognized maps to SentimentUnknown.
func ParseSentiment(raw string) Sentiment {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "positive":
		return SentimentPositive
	case "negative":
		return SentimentNegative
	case "neutral":
		return SentimentNeutral
	default:
		return SentimentUnknown
	}
}

// Task is a user's persistent request to periodically analyze a topic.
// Frequency is an informational cron expression; due-selection uses a fixed
// staleness window instead.
type Task struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Topic     string     `json:"topic"`
	Frequency string     `json:"frequency"`
	IsActive  bool       `json:"is_active"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// AnalysisResult is one completed run's output. Immutable once written.
// Topic is denormalized at write time so history survives task deletion.
type AnalysisResult struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	UserID      string    `json:"user_id"`
	Topic       string    `json:"topic"`
	Summary     string    `json:"summary"`
	Sentiment   Sentiment `json:"sentiment"`
	Insight     string    `json:"insight,omitempty"`
	SourceCount int       `json:"source_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// Intent is the structured outcome of parsing a free-text user message.
// An empty Topic means the message carried no tracking intent and
// Confirmation holds a conversational reply.
type Intent struct {
	Topic        string
	Frequency    string
	Confirmation string
}

// Analysis is the structured outcome of analyzing fetched content.
type Analysis struct {
	Summary   string
	Sentiment Sentiment
	Insight   string
}

package provider

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"trendpulse/app/pkg/types"
)

var trackKeywords = []string{"track", "monitor", "watch", "follow"}

var domainNouns = []string{"crypto", "stock", "stocks", "news"}

var intentStopwords = map[string]struct{}{
	"every": {}, "hour": {}, "hourly": {}, "minute": {}, "minutes": {},
	"day": {}, "daily": {}, "the": {}, "a": {}, "an": {},
}

var offlineInsights = []string{
	"Market data shows a significant uptrend for %s due to recent global events.",
	"Public sentiment around %s is mixed, with rising concerns over regulatory changes.",
	"The technology sector is rallying behind new advancements in %s.",
	"Supply chain disruptions are causing minor delays, impacting %s availability.",
	"Analysts predict a volatile week for %s as earnings reports approach.",
}

var offlineSentiments = []types.Sentiment{
	types.SentimentPositive,
	types.SentimentNeutral,
	types.SentimentNegative,
}

// Offline is the deterministic local fallback. Pure local computation; it
// never fails, which keeps the pipeline live with zero configured
// credentials.
type Offline struct{}

func NewOffline() *Offline {
	return &Offline{}
}

func (o *Offline) Name() string {
	return "offline"
}

func (o *Offline) ParseIntent(_ context.Context, message string) (types.Intent, error) {
	words := strings.Fields(message)

	keywordIdx := -1
	for i, w := range words {
		if isTrackKeyword(w) {
			keywordIdx = i
			break
		}
	}

	var candidates []string
	switch {
	case keywordIdx >= 0 && keywordIdx < len(words)-1:
		candidates = words[keywordIdx+1:]
	case keywordIdx < 0 && containsDomainNoun(words):
		candidates = words
	default:
		return types.Intent{
			Confirmation: "I can help you track trends. Try saying 'Track Bitcoin every hour'.",
		}, nil
	}

	topicWords := make([]string, 0, len(candidates))
	for _, w := range candidates {
		normalized := normalizeWord(w)
		if _, stop := intentStopwords[normalized]; stop {
			continue
		}
		if isTrackKeyword(w) {
			continue
		}
		topicWords = append(topicWords, strings.Trim(w, ".,!?"))
	}

	topic := strings.TrimSpace(strings.Join(topicWords, " "))
	if topic == "" {
		return types.Intent{
			Confirmation: "I can help you track trends. Try saying 'Track Bitcoin every hour'.",
		}, nil
	}

	return types.Intent{
		Topic:        topic,
		Frequency:    "0 * * * *",
		Confirmation: fmt.Sprintf("I've set up a tracker for %s. I'll check for updates every hour.", topic),
	}, nil
}

// AnalyzeContent picks templated text parameterized by topic and an
// independently random sentiment. Accuracy is not the point here; pipeline
// liveness is.
func (o *Offline) AnalyzeContent(_ context.Context, _ string, topic string) (types.Analysis, error) {
	insight := fmt.Sprintf(offlineInsights[rand.Intn(len(offlineInsights))], topic)
	sentiment := offlineSentiments[rand.Intn(len(offlineSentiments))]
	summary := fmt.Sprintf(
		"Recent analyst reports regarding %s highlight increased activity and interest. Key market indicators suggest a potential shift in momentum.",
		topic,
	)
	return types.Analysis{
		Summary:   summary,
		Sentiment: sentiment,
		Insight:   insight,
	}, nil
}

func isTrackKeyword(word string) bool {
	lower := strings.ToLower(word)
	for _, k := range trackKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func containsDomainNoun(words []string) bool {
	for _, w := range words {
		normalized := normalizeWord(w)
		for _, noun := range domainNouns {
			if normalized == noun {
				return true
			}
		}
	}
	return false
}

func normalizeWord(w string) string {
	return strings.ToLower(strings.Trim(w, ".,!?"))
}

package provider

import (
	"context"
	"strings"
	"testing"

	"trendpulse/app/pkg/types"
)

func TestOfflineParseIntentTrackMessage(t *testing.T) {
	o := NewOffline()
	intent, err := o.ParseIntent(context.Background(), "Track Bitcoin every hour")
	if err != nil {
		t.Fatalf("parse intent failed: %v", err)
	}
	if !strings.Contains(intent.Topic, "Bitcoin") {
		t.Fatalf("expected topic to contain Bitcoin, got: %q", intent.Topic)
	}
	if intent.Frequency != "0 * * * *" {
		t.Fatalf("expected hourly cadence, got: %q", intent.Frequency)
	}
	if intent.Confirmation == "" {
		t.Fatal("expected a confirmation reply")
	}
}

func TestOfflineParseIntentStripsStopwords(t *testing.T) {
	o := NewOffline()
	intent, err := o.ParseIntent(context.Background(), "please monitor the Nvidia stock every day")
	if err != nil {
		t.Fatalf("parse intent failed: %v", err)
	}
	if intent.Topic != "Nvidia stock" {
		t.Fatalf("expected topic %q, got: %q", "Nvidia stock", intent.Topic)
	}
}

func TestOfflineParseIntentSmallTalk(t *testing.T) {
	o := NewOffline()
	for _, message := range []string{
		"hi",
		"hello there",
		"thanks, that was helpful",
		"what's the weather like",
	} {
		intent, err := o.ParseIntent(context.Background(), message)
		if err != nil {
			t.Fatalf("parse intent failed for %q: %v", message, err)
		}
		if intent.Topic != "" {
			t.Fatalf("expected no topic for %q, got: %q", message, intent.Topic)
		}
		if intent.Confirmation == "" {
			t.Fatalf("expected a friendly reply for %q", message)
		}
	}
}

func TestOfflineParseIntentDomainNoun(t *testing.T) {
	o := NewOffline()
	intent, err := o.ParseIntent(context.Background(), "crypto")
	if err != nil {
		t.Fatalf("parse intent failed: %v", err)
	}
	if intent.Topic == "" {
		t.Fatal("expected a topic for a domain-noun message")
	}
}

func TestOfflineAnalyzeSentimentInEnum(t *testing.T) {
	o := NewOffline()
	valid := map[types.Sentiment]bool{
		types.SentimentPositive: true,
		types.SentimentNeutral:  true,
		types.SentimentNegative: true,
	}
	for i := 0; i < 20; i++ {
		analysis, err := o.AnalyzeContent(context.Background(), "some news text", "Bitcoin")
		if err != nil {
			t.Fatalf("analyze failed: %v", err)
		}
		if !valid[analysis.Sentiment] {
			t.Fatalf("unexpected sentiment: %q", analysis.Sentiment)
		}
		if !strings.Contains(analysis.Summary, "Bitcoin") {
			t.Fatalf("expected summary to mention topic, got: %q", analysis.Summary)
		}
		if !strings.Contains(analysis.Insight, "Bitcoin") {
			t.Fatalf("expected insight to mention topic, got: %q", analysis.Insight)
		}
	}
}

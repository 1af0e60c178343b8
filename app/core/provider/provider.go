// Package provider implements the content-analysis capability behind the
// pipeline: a primary OpenAI-backed provider, a secondary Gemini-backed
// provider with lazy model resolution, and a deterministic offline
// fallback. The chain tries them in order and always produces a result.
package provider

import (
	"context"
	"strings"
	"unicode/utf8"

	config "trendpulse/app/configs"
	"trendpulse/app/pkg/logger"
	"trendpulse/app/pkg/types"
)

const maxTopicLen = 25

// Provider is one interchangeable implementation of intent parsing and
// content analysis.
type Provider interface {
	Name() string
	ParseIntent(ctx context.Context, message string) (types.Intent, error)
	AnalyzeContent(ctx context.Context, text string, topic string) (types.Analysis, error)
}

// Chain tries each provider in order until one succeeds. Provider failures
// are logged and swallowed; callers never see an error.
type Chain struct {
	providers []Provider
	offline   *Offline
}

func NewChain(providers ...Provider) *Chain {
	return &Chain{providers: providers, offline: NewOffline()}
}

// ChainFromConfig picks providers by credential presence: OpenAI when its
// key is set, Gemini when its key is set, and always the offline fallback.
func ChainFromConfig(cfg config.AIConfig) *Chain {
	var providers []Provider
	if strings.TrimSpace(cfg.OpenAIKey) != "" {
		providers = append(providers, newOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIModel))
		logger.Info("AI providers: using OpenAI (%s)", cfg.OpenAIModel)
	}
	if strings.TrimSpace(cfg.GeminiKey) != "" {
		providers = append(providers, newGeminiProvider(cfg.GeminiKey, cfg.GeminiModels))
		logger.Info("AI providers: Gemini enabled (candidates: %s)", strings.Join(cfg.GeminiModels, ", "))
	}
	if len(providers) == 0 {
		logger.Warn("AI providers: no API key configured, running offline only")
	}
	providers = append(providers, NewOffline())
	return NewChain(providers...)
}

// ParseIntent turns a free-text message into a structured tracking request.
// An empty Topic in the result means "chat only".
func (c *Chain) ParseIntent(ctx context.Context, message string) types.Intent {
	for _, p := range c.providers {
		intent, err := p.ParseIntent(ctx, message)
		if err != nil {
			logger.Warn("provider %s: intent parse failed: %v", p.Name(), err)
			continue
		}
		return clampTopic(intent)
	}
	intent, _ := c.offline.ParseIntent(ctx, message)
	return clampTopic(intent)
}

// AnalyzeContent turns fetched content plus a topic into a structured
// analysis. The sentiment is always a member of the fixed enumeration.
func (c *Chain) AnalyzeContent(ctx context.Context, text string, topic string) types.Analysis {
	for _, p := range c.providers {
		analysis, err := p.AnalyzeContent(ctx, text, topic)
		if err != nil {
			logger.Warn("provider %s: analysis failed: %v", p.Name(), err)
			continue
		}
		return analysis
	}
	analysis, _ := c.offline.AnalyzeContent(ctx, text, topic)
	return analysis
}

func clampTopic(intent types.Intent) types.Intent {
	topic := strings.TrimSpace(intent.Topic)
	if utf8.RuneCountInString(topic) > maxTopicLen {
		topic = strings.TrimSpace(truncateRunes(topic, maxTopicLen)) + "..."
	}
	intent.Topic = topic
	return intent
}

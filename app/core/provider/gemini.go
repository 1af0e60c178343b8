package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"trendpulse/app/pkg/logger"
	"trendpulse/app/pkg/types"
)

const geminiAnalysisMaxRunes = 4000

const geminiProbePrompt = "ping"

var errGeminiDisabled = errors.New("gemini: disabled after probe failures")

// geminiProvider is the secondary AI-backed provider. The concrete model is
// resolved lazily: each candidate is probed at most once, and the first one
// that answers becomes the active model for the rest of the process
// lifetime. If every candidate fails, the provider disables itself
// permanently.
type geminiProvider struct {
	candidates []string

	// call invokes one model with one prompt. Swappable in tests.
	call func(ctx context.Context, model string, prompt string) (string, error)

	mu          sync.Mutex
	activeModel string
	disabled    bool

	apiKey     string
	clientOnce sync.Once
	client     *genai.Client
	clientErr  error
}

func newGeminiProvider(apiKey string, candidates []string) *geminiProvider {
	p := &geminiProvider{apiKey: apiKey, candidates: candidates}
	p.call = p.callGenai
	return p
}

func (p *geminiProvider) Name() string {
	return "gemini"
}

func (p *geminiProvider) ParseIntent(ctx context.Context, message string) (types.Intent, error) {
	prompt := intentSystemPrompt + "\n\nUser message: \"" + message + "\""
	content, err := p.generate(ctx, prompt)
	if err != nil {
		return types.Intent{}, err
	}
	return parseIntentJSON(content)
}

func (p *geminiProvider) AnalyzeContent(ctx context.Context, text string, topic string) (types.Analysis, error) {
	prompt := fmt.Sprintf(analysisPromptFormat, topic) + "\n\nNews text:\n" + truncateRunes(text, geminiAnalysisMaxRunes)
	content, err := p.generate(ctx, prompt)
	if err != nil {
		return types.Analysis{}, err
	}
	return parseAnalysisJSON(content)
}

func (p *geminiProvider) generate(ctx context.Context, prompt string) (string, error) {
	model, err := p.resolveModel(ctx)
	if err != nil {
		return "", err
	}
	content, err := p.call(ctx, model, prompt)
	if err != nil {
		return "", fmt.Errorf("gemini generate (%s): %w", model, err)
	}
	return content, nil
}

// resolveModel probes candidates in order and caches the first responder.
// The lock makes concurrent first calls resolve exactly once; once the
// provider is disabled it never probes again.
func (p *geminiProvider) resolveModel(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disabled {
		return "", errGeminiDisabled
	}
	if p.activeModel != "" {
		return p.activeModel, nil
	}

	for _, candidate := range p.candidates {
		if _, err := p.call(ctx, candidate, geminiProbePrompt); err != nil {
			logger.Warn("gemini probe failed for %s: %v", candidate, err)
			continue
		}
		logger.Info("gemini active model: %s", candidate)
		p.activeModel = candidate
		return candidate, nil
	}

	p.disabled = true
	return "", errGeminiDisabled
}

func (p *geminiProvider) callGenai(ctx context.Context, model string, prompt string) (string, error) {
	p.clientOnce.Do(func() {
		p.client, p.clientErr = genai.NewClient(ctx, &genai.ClientConfig{APIKey: p.apiKey})
	})
	if p.clientErr != nil {
		return "", fmt.Errorf("gemini client init: %w", p.clientErr)
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response")
	}
	return text, nil
}

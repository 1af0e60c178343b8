package provider

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"trendpulse/app/pkg/types"
)

const openAIAnalysisMaxRunes = 2000

// openAIProvider is the primary AI-backed provider.
type openAIProvider struct {
	client openai.Client
	model  string
}

func newOpenAIProvider(apiKey string, model string) *openAIProvider {
	return &openAIProvider{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (p *openAIProvider) Name() string {
	return "openai"
}

func (p *openAIProvider) ParseIntent(ctx context.Context, message string) (types.Intent, error) {
	content, err := p.complete(ctx, intentSystemPrompt, message)
	if err != nil {
		return types.Intent{}, err
	}
	return parseIntentJSON(content)
}

func (p *openAIProvider) AnalyzeContent(ctx context.Context, text string, topic string) (types.Analysis, error) {
	system := fmt.Sprintf(analysisPromptFormat, topic)
	content, err := p.complete(ctx, system, truncateRunes(text, openAIAnalysisMaxRunes))
	if err != nil {
		return types.Analysis{}, err
	}
	return parseAnalysisJSON(content)
}

func (p *openAIProvider) complete(ctx context.Context, system string, user string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

package provider

import (
	"context"
	"errors"
	"testing"
)

func newStubGemini(candidates []string, call func(ctx context.Context, model string, prompt string) (string, error)) *geminiProvider {
	p := &geminiProvider{candidates: candidates}
	p.call = call
	return p
}

func TestGeminiProbesEachCandidateOnce(t *testing.T) {
	probes := map[string]int{}
	generates := map[string]int{}
	intentJSON := `{"topic":"Bitcoin","frequency":"0 * * * *","confirmation":"ok"}`

	p := newStubGemini([]string{"model-a", "model-b", "model-c"}, func(_ context.Context, model string, prompt string) (string, error) {
		if prompt == geminiProbePrompt {
			probes[model]++
			if model == "model-a" {
				return "", errors.New("model unavailable")
			}
			return "pong", nil
		}
		generates[model]++
		return intentJSON, nil
	})

	for i := 0; i < 3; i++ {
		intent, err := p.ParseIntent(context.Background(), "track Bitcoin")
		if err != nil {
			t.Fatalf("parse intent failed: %v", err)
		}
		if intent.Topic != "Bitcoin" {
			t.Fatalf("unexpected topic: %q", intent.Topic)
		}
	}

	if probes["model-a"] != 1 {
		t.Fatalf("expected failing candidate probed once, got %d", probes["model-a"])
	}
	if probes["model-b"] != 1 {
		t.Fatalf("expected active candidate probed once, got %d", probes["model-b"])
	}
	if probes["model-c"] != 0 {
		t.Fatalf("candidate after the first success must not be probed, got %d", probes["model-c"])
	}
	if generates["model-b"] != 3 || generates["model-a"] != 0 || generates["model-c"] != 0 {
		t.Fatalf("expected all generation on the cached model, got %v", generates)
	}
}

func TestGeminiDisablesAfterTotalProbeFailure(t *testing.T) {
	probes := map[string]int{}
	p := newStubGemini([]string{"model-a", "model-b"}, func(_ context.Context, model string, prompt string) (string, error) {
		if prompt == geminiProbePrompt {
			probes[model]++
		}
		return "", errors.New("model unavailable")
	})

	if _, err := p.ParseIntent(context.Background(), "track Bitcoin"); !errors.Is(err, errGeminiDisabled) {
		t.Fatalf("expected errGeminiDisabled, got: %v", err)
	}
	if probes["model-a"] != 1 || probes["model-b"] != 1 {
		t.Fatalf("expected each candidate probed once, got %v", probes)
	}

	// Disabled is permanent: later calls fail fast with no new probes.
	if _, err := p.AnalyzeContent(context.Background(), "text", "Bitcoin"); !errors.Is(err, errGeminiDisabled) {
		t.Fatalf("expected errGeminiDisabled, got: %v", err)
	}
	if probes["model-a"] != 1 || probes["model-b"] != 1 {
		t.Fatalf("disabled provider re-probed: %v", probes)
	}
}

func TestGeminiGenerateFailureSurfacesError(t *testing.T) {
	p := newStubGemini([]string{"model-a"}, func(_ context.Context, _ string, prompt string) (string, error) {
		if prompt == geminiProbePrompt {
			return "pong", nil
		}
		return "", errors.New("quota exceeded")
	})

	if _, err := p.ParseIntent(context.Background(), "track Bitcoin"); err == nil {
		t.Fatal("expected generation failure to surface")
	}
	// A generation failure after a successful probe keeps the model cached.
	if model, err := p.resolveModel(context.Background()); err != nil || model != "model-a" {
		t.Fatalf("expected cached model to survive, got %q, %v", model, err)
	}
}

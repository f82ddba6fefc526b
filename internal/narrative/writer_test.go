package narrative

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/openai/openai-go"
	"go.opentelemetry.io/otel/trace"

	"bitcoin-pulse/internal/domain"
)

type stubLLMClient struct {
	response *openai.ChatCompletion
	err      error
	params   openai.ChatCompletionNewParams
	calls    int
}

func (s *stubLLMClient) CreateChatCompletion(
	_ context.Context,
	params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	s.calls++
	s.params = params
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func fullReportData() domain.ReportData {
	return domain.ReportData{
		Snapshot: domain.PulseSnapshot{
			HasPrice:        true,
			HasSentiment:    true,
			HasChain:        true,
			PriceUSD:        67890.12,
			PriceChangePct:  1.8,
			SentimentValue:  50,
			SentimentLabel:  domain.SentimentNeutral,
			BlockHeight:     840123,
			BlockRewardBTC:  3.125,
			BlocksToHalving: 209877,
			DaysToHalving:   1457,
			HalvingEstimate: time.Date(2028, 4, 10, 0, 0, 0, 0, time.UTC),
			NetworkActivity: domain.ActivitySteady,
		},
	}
}

func TestWriteReportLLMPath(t *testing.T) {
	llm := &stubLLMClient{
		response: &openai.ChatCompletion{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "# Bitcoin Market Report - test"}},
			},
		},
	}
	w := NewWriter(trace.NewNoopTracerProvider().Tracer("test"), llm, "gpt-4o-mini")

	report, usedLLM := w.WriteReport(context.Background(), fullReportData(), time.Now())
	if !usedLLM {
		t.Fatal("expected LLM path")
	}
	if report != "# Bitcoin Market Report - test" {
		t.Fatalf("unexpected report: %q", report)
	}
	if llm.params.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", llm.params.Model)
	}
	if len(llm.params.Messages) != 2 {
		t.Fatalf("expected system + user message, got %d", len(llm.params.Messages))
	}
}

func TestWriteReportFallsBackOnLLMError(t *testing.T) {
	llm := &stubLLMClient{err: errors.New("api down")}
	w := NewWriter(trace.NewNoopTracerProvider().Tracer("test"), llm, "gpt-4o-mini")

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	report, usedLLM := w.WriteReport(context.Background(), fullReportData(), now)
	if usedLLM {
		t.Fatal("expected template fallback")
	}
	if !strings.HasPrefix(report, "# Bitcoin Market Report - August 29, 2026") {
		t.Errorf("fallback report missing title: %q", report[:60])
	}
}

func TestWriteReportNilClientUsesTemplate(t *testing.T) {
	w := NewWriter(trace.NewNoopTracerProvider().Tracer("test"), nil, "")

	report, usedLLM := w.WriteReport(context.Background(), fullReportData(), time.Now())
	if usedLLM {
		t.Fatal("nil client should use template")
	}
	if !strings.Contains(report, "## Halving Watch") {
		t.Error("template report missing sections")
	}
}

func TestWriteReportFallsBackOnEmptyResponse(t *testing.T) {
	llm := &stubLLMClient{response: &openai.ChatCompletion{}}
	w := NewWriter(trace.NewNoopTracerProvider().Tracer("test"), llm, "gpt-4o-mini")

	_, usedLLM := w.WriteReport(context.Background(), fullReportData(), time.Now())
	if usedLLM {
		t.Fatal("empty completion should fall back to template")
	}
	if llm.calls != 1 {
		t.Errorf("llm called %d times, want 1", llm.calls)
	}
}

func TestBuildReportPromptIncludesData(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	prompt := BuildReportPrompt(fullReportData(), now)

	for _, want := range []string{
		"Report date: August 29, 2026",
		"price: $67890.12",
		"Fear & Greed Index: 50 (neutral)",
		"block height: 840123",
		"network activity: steady",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildReportPromptDeclaresMissingData(t *testing.T) {
	prompt := BuildReportPrompt(domain.ReportData{}, time.Now())

	for _, want := range []string{
		"Market data: unavailable",
		"Fear & Greed Index: unavailable",
		"On-chain data: unavailable",
		"Halving data: unavailable",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

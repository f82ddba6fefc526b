// Package narrative turns a day's market data into a prose report. When an
// OpenAI key is configured the report is written by the model; otherwise, or
// whenever the model call fails, it falls back to the deterministic template
// engine so report generation never comes back empty-handed.
package narrative

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bitcoin-pulse/internal/domain"
	"bitcoin-pulse/internal/pulse"
)

// LLMClient abstracts the OpenAI chat completions API for testability.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

type Writer struct {
	tracer trace.Tracer
	llm    LLMClient
	model  string
}

// NewWriter builds a report writer. llm may be nil, in which case every
// report uses the template path.
func NewWriter(tracer trace.Tracer, llm LLMClient, model string) *Writer {
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	return &Writer{tracer: tracer, llm: llm, model: model}
}

// WriteReport produces the markdown report for one day of data. The bool
// result reports whether the LLM path was used.
func (w *Writer) WriteReport(ctx context.Context, data domain.ReportData, now time.Time) (string, bool) {
	ctx, span := w.tracer.Start(ctx, "narrative.write-report")
	defer span.End()

	if w.llm == nil {
		span.SetAttributes(attribute.String("report.engine", "template"))
		return pulse.ComposeReport(data, now), false
	}

	report, err := w.callLLM(ctx, data, now)
	if err != nil {
		span.RecordError(err)
		log.Printf("narrative report via LLM failed, using template: %v", err)
		return pulse.ComposeReport(data, now), false
	}
	span.SetAttributes(attribute.String("report.engine", "llm"))
	return report, true
}

func (w *Writer) callLLM(ctx context.Context, data domain.ReportData, now time.Time) (string, error) {
	ctx, span := w.tracer.Start(ctx, "narrative.llm-call")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", w.model))

	completion, err := w.llm.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: w.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(reportSystemPrompt),
			openai.UserMessage(BuildReportPrompt(data, now)),
		},
	})
	if err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in LLM response")
	}
	report := completion.Choices[0].Message.Content
	if report == "" {
		return "", fmt.Errorf("empty LLM response")
	}
	span.SetAttributes(attribute.Int("llm.reply_length", len(report)))
	return report, nil
}

// openaiClient wraps the official SDK's chat completions service.
type openaiClient struct {
	client openai.Client
}

func NewOpenAIClient(apiKey string) LLMClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &openaiClient{client: client}
}

func (c *openaiClient) CreateChatCompletion(
	ctx context.Context,
	params openai.ChatCompletionNewParams,
) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}

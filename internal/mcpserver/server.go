// Package mcpserver exposes the market snapshot, summary, and poll results
// as MCP tools over stdio so agent clients can pull them on demand.
package mcpserver

import (
	"context"
	"fmt"

	"bitcoin-pulse/internal/domain"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverVersion = "0.1.0"

// PulseReader mirrors the pulse service surface the tools need.
type PulseReader interface {
	GetSnapshot(ctx context.Context) (domain.PulseSnapshot, error)
	GetSummary(ctx context.Context) (string, domain.PulseSnapshot, error)
}

// PollReader serves poll tallies.
type PollReader interface {
	GetResults(ctx context.Context, voterID string) (domain.PollResults, error)
}

type getPulseInput struct{}

type getPulseOutput struct {
	Snapshot domain.PulseSnapshot `json:"snapshot"`
}

type getSummaryInput struct{}

type getSummaryOutput struct {
	Summary string `json:"summary"`
}

type getPollResultsInput struct{}

type getPollResultsOutput struct {
	Results domain.PollResults `json:"results"`
}

// Server wraps an MCP server wired to the pulse and poll services.
type Server struct {
	server *mcp.Server
}

func New(pulseService PulseReader, pollService PollReader) *Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "bitcoin-pulse",
		Version: serverVersion,
	}, &mcp.ServerOptions{})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_pulse",
		Description: "Get the current Bitcoin market snapshot: price, sentiment, and chain data with availability flags.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in getPulseInput) (*mcp.CallToolResult, getPulseOutput, error) {
		snapshot, err := pulseService.GetSnapshot(ctx)
		if err != nil {
			return nil, getPulseOutput{}, fmt.Errorf("snapshot unavailable: %w", err)
		}
		return nil, getPulseOutput{Snapshot: snapshot}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_summary",
		Description: "Get the plain-English daily Bitcoin market summary.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in getSummaryInput) (*mcp.CallToolResult, getSummaryOutput, error) {
		summary, _, err := pulseService.GetSummary(ctx)
		if err != nil {
			return nil, getSummaryOutput{}, fmt.Errorf("summary unavailable: %w", err)
		}
		return nil, getSummaryOutput{Summary: summary}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_poll_results",
		Description: "Get today's community poll tallies: up, sideways, and down vote counts.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in getPollResultsInput) (*mcp.CallToolResult, getPollResultsOutput, error) {
		results, err := pollService.GetResults(ctx, "")
		if err != nil {
			return nil, getPollResultsOutput{}, fmt.Errorf("poll results unavailable: %w", err)
		}
		return nil, getPollResultsOutput{Results: results}, nil
	})

	return &Server{server: server}
}

// Run serves MCP over stdio until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.run(ctx, &mcp.StdioTransport{})
}

func (s *Server) run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

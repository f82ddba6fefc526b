// Package tui renders the market dashboard served over SSH.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bitcoin-pulse/internal/domain"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PulseReader mirrors the snapshot and summary surface of the pulse service.
type PulseReader interface {
	GetSnapshot(ctx context.Context) (domain.PulseSnapshot, error)
	GetSummary(ctx context.Context) (string, domain.PulseSnapshot, error)
}

// PollManager mirrors the poll service surface the dashboard needs.
type PollManager interface {
	RecordVote(ctx context.Context, voterID string, choice domain.PollChoice) (domain.PollResults, error)
	GetResults(ctx context.Context, voterID string) (domain.PollResults, error)
}

// Services bundles everything the dashboard talks to.
type Services struct {
	Pulse    PulseReader
	Poll     PollManager
	Username string
}

const refreshEvery = 60 * time.Second

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	upStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	downStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	ownStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
)

type snapshotMsg struct {
	summary  string
	snapshot domain.PulseSnapshot
	err      error
}

type pollMsg struct {
	results domain.PollResults
	err     error
}

type tickMsg time.Time

// AppModel is the root bubbletea model for the SSH dashboard.
type AppModel struct {
	svc      Services
	spinner  spinner.Model
	loaded   bool
	summary  string
	snapshot domain.PulseSnapshot
	poll     domain.PollResults
	lastErr  error
	width    int
	height   int
}

func NewAppModel(svc Services) *AppModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &AppModel{svc: svc, spinner: sp}
}

func (m *AppModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *AppModel) voterID() string {
	return "ssh:" + m.svc.Username
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchSnapshot(), m.fetchPoll(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(refreshEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *AppModel) fetchSnapshot() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		summary, snapshot, err := m.svc.Pulse.GetSummary(ctx)
		return snapshotMsg{summary: summary, snapshot: snapshot, err: err}
	}
}

func (m *AppModel) fetchPoll() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		results, err := m.svc.Poll.GetResults(ctx, m.voterID())
		return pollMsg{results: results, err: err}
	}
}

func (m *AppModel) vote(choice domain.PollChoice) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		results, err := m.svc.Poll.RecordVote(ctx, m.voterID(), choice)
		return pollMsg{results: results, err: err}
	}
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.loaded = false
			return m, tea.Batch(m.fetchSnapshot(), m.fetchPoll())
		case "u":
			return m, m.vote(domain.PollUp)
		case "s":
			return m, m.vote(domain.PollSideways)
		case "d":
			return m, m.vote(domain.PollDown)
		}
		return m, nil

	case snapshotMsg:
		m.loaded = true
		m.lastErr = msg.err
		if msg.err == nil {
			m.summary = msg.summary
			m.snapshot = msg.snapshot
		}
		return m, nil

	case pollMsg:
		if msg.err == nil {
			m.poll = msg.results
		}
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.fetchSnapshot(), m.fetchPoll(), tick())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *AppModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("The Bitcoin Pulse"))
	sb.WriteString("\n\n")

	if !m.loaded {
		sb.WriteString(m.spinner.View() + " loading market data...\n")
		return sb.String()
	}
	if m.lastErr != nil {
		sb.WriteString(errStyle.Render("data unavailable: "+m.lastErr.Error()) + "\n")
	}

	sb.WriteString(m.summary)
	sb.WriteString("\n\n")
	m.renderSnapshot(&sb)
	m.renderPoll(&sb)

	sb.WriteString(footerStyle.Render("u/s/d vote up/sideways/down | r refresh | q quit"))
	return sb.String()
}

func (m *AppModel) renderSnapshot(sb *strings.Builder) {
	s := m.snapshot
	if s.HasPrice {
		changeStyle := upStyle
		if s.PriceChangePct < 0 {
			changeStyle = downStyle
		}
		sb.WriteString(fmt.Sprintf("%s $%.2f  %s\n",
			labelStyle.Render("Price"), s.PriceUSD,
			changeStyle.Render(fmt.Sprintf("%+.2f%%", s.PriceChangePct))))
	}
	if s.HasSentiment {
		sb.WriteString(fmt.Sprintf("%s %d (%s)\n",
			labelStyle.Render("Fear & Greed"), s.SentimentValue, s.SentimentLabel.Display()))
	}
	if s.HasChain {
		sb.WriteString(fmt.Sprintf("%s %d | %s %.3f BTC | %s %d days\n",
			labelStyle.Render("Block"), s.BlockHeight,
			labelStyle.Render("Reward"), s.BlockRewardBTC,
			labelStyle.Render("Halving in"), s.DaysToHalving))
		sb.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Network"), s.NetworkActivity))
	}
	sb.WriteString("\n")
}

func (m *AppModel) renderPoll(sb *strings.Builder) {
	sb.WriteString(labelStyle.Render("Where is Bitcoin headed today?"))
	sb.WriteString("\n")
	for _, choice := range domain.PollChoices {
		line := fmt.Sprintf("  %-8s %s %d", choice, bar(m.poll.Tallies[choice], m.poll.Total), m.poll.Tallies[choice])
		if m.poll.Own == choice {
			line = ownStyle.Render(line + "  (your vote)")
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n")
}

// bar renders a 20-cell vote share bar.
func bar(count, total int) string {
	if total == 0 {
		return strings.Repeat("-", 20)
	}
	filled := count * 20 / total
	return strings.Repeat("#", filled) + strings.Repeat("-", 20-filled)
}

package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"bitcoin-pulse/internal/domain"
	"bitcoin-pulse/internal/handler"

	tele "gopkg.in/telebot.v3"
)

func StartTelegramBot(pulseService handler.PulseReader, pollService handler.PollManager) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/pulse", func(c tele.Context) error {
		summary, _, err := pulseService.GetSummary(context.Background())
		if err != nil {
			return c.Send(fmt.Sprintf("Error building summary: %v", err))
		}
		return c.Send(summary)
	})

	b.Handle("/price", func(c tele.Context) error {
		snapshot, err := pulseService.GetSnapshot(context.Background())
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching price: %v", err))
		}
		if !snapshot.HasPrice {
			return c.Send("Price data is currently unavailable.")
		}
		msg := fmt.Sprintf(
			"BTC\nPrice: $%.2f\n24h Change: %.2f%%\n24h Volume: $%.0f\nMarket Cap: $%.0f",
			snapshot.PriceUSD, snapshot.PriceChangePct, snapshot.Volume24hUSD, snapshot.MarketCapUSD,
		)
		return c.Send(msg)
	})

	b.Handle("/sentiment", func(c tele.Context) error {
		snapshot, err := pulseService.GetSnapshot(context.Background())
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching sentiment: %v", err))
		}
		if !snapshot.HasSentiment {
			return c.Send("Sentiment data is currently unavailable.")
		}
		return c.Send(fmt.Sprintf(
			"Fear & Greed Index: %d\nThe market is feeling %s.",
			snapshot.SentimentValue, snapshot.SentimentLabel.Display(),
		))
	})

	b.Handle("/halving", func(c tele.Context) error {
		snapshot, err := pulseService.GetSnapshot(context.Background())
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching chain data: %v", err))
		}
		if !snapshot.HasChain {
			return c.Send("Chain data is currently unavailable.")
		}
		msg := fmt.Sprintf(
			"Block height: %d\nBlock reward: %.3f BTC\nBlocks to halving: %d\nEstimated: %s (%d days)",
			snapshot.BlockHeight, snapshot.BlockRewardBTC, snapshot.BlocksToHalving,
			snapshot.HalvingEstimate.Format("2006-01-02"), snapshot.DaysToHalving,
		)
		return c.Send(msg)
	})

	b.Handle("/poll", func(c tele.Context) error {
		results, err := pollService.GetResults(context.Background(), fmt.Sprintf("tg:%d", c.Sender().ID))
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching poll results: %v", err))
		}
		return c.Send(formatPollResults(results))
	})

	b.Handle("/vote", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send("Usage: /vote up | sideways | down")
		}
		choice := domain.PollChoice(args[0])
		results, err := pollService.RecordVote(context.Background(), fmt.Sprintf("tg:%d", c.Sender().ID), choice)
		if err != nil {
			return c.Send(fmt.Sprintf("Vote not recorded: %v", err))
		}
		return c.Send("Vote recorded.\n\n" + formatPollResults(results))
	})

	log.Println("Telegram bot started")
	go b.Start()
}

func formatPollResults(results domain.PollResults) string {
	msg := fmt.Sprintf("Today's poll (%s):\n", results.Date)
	for _, choice := range domain.PollChoices {
		marker := ""
		if results.Own == choice {
			marker = "  <- your vote"
		}
		msg += fmt.Sprintf("  %s: %d%s\n", choice, results.Tallies[choice], marker)
	}
	msg += fmt.Sprintf("Total votes: %d", results.Total)
	return msg
}

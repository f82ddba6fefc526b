package job

import (
	"context"
	"log"
	"time"

	"bitcoin-pulse/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

// PulsePoller keeps the snapshot cache warm so page loads never wait on the
// upstream APIs.
type PulsePoller struct {
	tracer       trace.Tracer
	pulseService SnapshotRefresher
	pollInterval time.Duration
}

type SnapshotRefresher interface {
	RefreshSnapshot(ctx context.Context) (domain.PulseSnapshot, error)
}

func NewPulsePoller(tracer trace.Tracer, pulseService SnapshotRefresher, pollIntervalSecs int) *PulsePoller {
	if pollIntervalSecs <= 0 {
		pollIntervalSecs = 60
	}
	return &PulsePoller{
		tracer:       tracer,
		pulseService: pulseService,
		pollInterval: time.Duration(pollIntervalSecs) * time.Second,
	}
}

// Start refreshes the snapshot on an interval. Blocks until ctx is cancelled.
func (p *PulsePoller) Start(ctx context.Context) {
	log.Println("Pulse poller starting...")

	p.refresh(ctx)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Pulse poller stopped")
			return
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

func (p *PulsePoller) refresh(ctx context.Context) {
	ctx, span := p.tracer.Start(ctx, "pulse-poller.refresh")
	defer span.End()

	snapshot, err := p.pulseService.RefreshSnapshot(ctx)
	if err != nil {
		span.RecordError(err)
		log.Printf("pulse refresh error: %v", err)
		return
	}
	if !snapshot.HasPrice || !snapshot.HasSentiment || !snapshot.HasChain {
		log.Printf("pulse refresh partial (price=%t sentiment=%t chain=%t)",
			snapshot.HasPrice, snapshot.HasSentiment, snapshot.HasChain)
	}
}

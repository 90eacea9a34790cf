package mindflux

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SchedulerConfig configures a Scheduler.
// Zero values produce sensible defaults; see field comments.
type SchedulerConfig struct {
	Rand   *rand.Rand   // nil → seeded from Seed
	Seed   int64        // zero → seeded from the clock; ignored when Rand is set
	Logger *slog.Logger // nil → logging disabled
}

// Scheduler picks the next item of a review session by walking the concept
// graph from the session's current position.
//
// Scheduler keeps no per-session state: everything it knows about a review
// lives in the Session passed to Next. The random source is shared, so a
// Scheduler must not be used by two goroutines at once.
type Scheduler struct {
	graph  ConceptGraph
	due    DueIndex
	rng    *rand.Rand
	logger *slog.Logger
}

// NewScheduler creates a Scheduler over graph and due.
func NewScheduler(graph ConceptGraph, due DueIndex, cfg SchedulerConfig) (*Scheduler, error) {
	if graph == nil {
		return nil, errors.New("mindflux: concept graph is required")
	}
	if due == nil {
		return nil, errors.New("mindflux: due index is required")
	}

	rng := cfg.Rand
	if rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Scheduler{
		graph:  graph,
		due:    due,
		rng:    rng,
		logger: logger,
	}, nil
}

// Next returns the item to show next. It reports ok == false when nothing
// is due anywhere; the session is left untouched in that case.
//
// Next may push a frame for the node it descends into and pops frames it
// has exhausted. It never records the returned item: the caller does that
// with Session.EnterOrContinue once the item has been shown. Calling Next
// again without doing so returns the same item.
//
// Errors wrap ErrStoreUnavailable when a collaborator failed and
// ErrInvariantViolation on internal inconsistencies. Both abort the call.
func (s *Scheduler) Next(ctx context.Context, sess *Session) (ItemRef, bool, error) {
	started := time.Now()
	ctx, span := tracer.Start(ctx, "mindflux.Next", trace.WithAttributes(
		attribute.String("session.id", sess.ID()),
		attribute.Int("session.depth", sess.Depth()),
	))
	defer span.End()

	ref, ph, ok, err := s.next(ctx, sess)

	nextLatency.Observe(time.Since(started).Seconds())
	if err != nil {
		nextTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "next failed")
		s.logger.Error("next item failed", slog.String("session", sess.ID()), slog.String("error", err.Error()))
		return ItemRef{}, false, err
	}
	nextTotal.WithLabelValues(ph.String()).Inc()
	span.SetAttributes(attribute.String("phase", ph.String()))
	if !ok {
		s.logger.Debug("no due items", slog.String("session", sess.ID()))
		return ItemRef{}, false, nil
	}
	span.SetAttributes(
		attribute.String("node.id", string(ref.NodeID)),
		attribute.Int64("item.id", int64(ref.ItemID)),
	)
	s.logger.Debug("next item",
		slog.String("session", sess.ID()),
		slog.String("phase", ph.String()),
		slog.String("item", ref.String()),
		slog.String("tier", ref.Tier.String()),
		slog.Int("depth", sess.Depth()),
	)
	return ref, true, nil
}

func (s *Scheduler) next(ctx context.Context, sess *Session) (ItemRef, phase, bool, error) {
	snap, err := snapshotOf(ctx, s.due)
	if err != nil {
		return ItemRef{}, phaseNone, false, err
	}
	t := &traversal{
		graph:  newCallGraph(s.graph),
		snap:   snap,
		sess:   sess,
		rng:    s.rng,
		logger: s.logger.With(slog.String("session", sess.ID())),
	}
	return t.run()
}

package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/xyd945/hyperliquid-whale-agent/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultAttemptTimeout = 10 * time.Second

// Responder is one channel the resolver can route a message through.
type Responder interface {
	ID() domain.ChannelID
	Configured() bool
	Respond(ctx context.Context, message string) (string, error)
}

// ChannelProbe reports a channel's configuration and reachability.
type ChannelProbe interface {
	Status(ctx context.Context) domain.ChannelStatus
}

type resolverState int

const (
	stateIdle resolverState = iota
	stateAttemptingPrimary
	stateAttemptingFallback
	stateSucceeded
	stateExhausted
)

func (s resolverState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateAttemptingPrimary:
		return "attempting_primary"
	case stateAttemptingFallback:
		return "attempting_fallback"
	case stateSucceeded:
		return "succeeded"
	case stateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Resolver walks an ordered list of channels until one produces a usable
// response. Channels are registered local-capable first with the remote
// gateway last; the per-message preference decides which side leads.
type Resolver struct {
	tracer         trace.Tracer
	channels       []Responder
	attemptTimeout time.Duration
}

func NewResolver(tracer trace.Tracer, channels []Responder, attemptTimeout time.Duration) *Resolver {
	if attemptTimeout <= 0 {
		attemptTimeout = defaultAttemptTimeout
	}
	return &Resolver{
		tracer:         tracer,
		channels:       channels,
		attemptTimeout: attemptTimeout,
	}
}

// Resolve attempts channels in preference order under per-attempt timeouts.
// The outcome is terminal: either the first successful normalized response,
// or exhaustion after every configured channel failed.
func (r *Resolver) Resolve(ctx context.Context, message string, pref domain.ChannelPreference) domain.ResolutionOutcome {
	ctx, span := r.tracer.Start(ctx, "resolver.resolve")
	defer span.End()
	span.SetAttributes(attribute.String("preference", string(pref)))

	message = strings.TrimSpace(message)
	if message == "" {
		return domain.ResolutionOutcome{ErrorKind: domain.ErrorKindValidation}
	}

	order := r.attemptOrder(pref)
	state := stateIdle
	if len(order) == 0 {
		r.transition(&state, stateExhausted, "")
		span.SetAttributes(attribute.String("state", state.String()))
		return domain.ResolutionOutcome{ErrorKind: domain.ErrorKindNoChannelAvailable}
	}

	for i, ch := range order {
		next := stateAttemptingPrimary
		if i > 0 {
			next = stateAttemptingFallback
		}
		r.transition(&state, next, ch.ID())

		text, err := r.attempt(ctx, ch, message)
		if err != nil {
			log.Printf("resolver: channel %s failed: %v", ch.ID(), err)
			span.RecordError(err)
			continue
		}

		r.transition(&state, stateSucceeded, ch.ID())
		span.SetAttributes(
			attribute.String("state", state.String()),
			attribute.String("channel", string(ch.ID())),
		)
		return domain.ResolutionOutcome{Success: true, Response: text, Channel: ch.ID()}
	}

	r.transition(&state, stateExhausted, "")
	span.SetAttributes(attribute.String("state", state.String()))
	return domain.ResolutionOutcome{ErrorKind: domain.ErrorKindNoChannelAvailable}
}

// ChannelStatuses reports every registered channel in registration order,
// probing reachability where the channel supports it.
func (r *Resolver) ChannelStatuses(ctx context.Context) []domain.ChannelStatus {
	ctx, span := r.tracer.Start(ctx, "resolver.channel-statuses")
	defer span.End()

	out := make([]domain.ChannelStatus, 0, len(r.channels))
	for _, ch := range r.channels {
		if probe, ok := ch.(ChannelProbe); ok {
			out = append(out, probe.Status(ctx))
			continue
		}
		out = append(out, domain.ChannelStatus{
			Channel:    ch.ID(),
			Configured: ch.Configured(),
			Reachable:  ch.Configured(),
		})
	}
	return out
}

// attemptOrder returns configured channels only: local-capable channels lead
// unless the caller prefers remote. Order is deterministic for a fixed
// preference and configuration snapshot.
func (r *Resolver) attemptOrder(pref domain.ChannelPreference) []Responder {
	var locals, remotes []Responder
	for _, ch := range r.channels {
		if !ch.Configured() {
			continue
		}
		if ch.ID() == domain.ChannelRemote {
			remotes = append(remotes, ch)
		} else {
			locals = append(locals, ch)
		}
	}
	if pref == domain.PreferRemote {
		return append(remotes, locals...)
	}
	return append(locals, remotes...)
}

func (r *Resolver) attempt(ctx context.Context, ch Responder, message string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
	defer cancel()

	text, err := ch.Respond(attemptCtx, message)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrChannelUnavailable, err)
	}
	text = normalizeResponse(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", domain.ErrChannelUnavailable)
	}
	return text, nil
}

func (r *Resolver) transition(state *resolverState, next resolverState, channel domain.ChannelID) {
	if channel != "" {
		log.Printf("resolver: %s -> %s (channel %s)", *state, next, channel)
	} else {
		log.Printf("resolver: %s -> %s", *state, next)
	}
	*state = next
}

func normalizeResponse(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimSpace(text)
}

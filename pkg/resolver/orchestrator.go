// Package resolver runs provider chains and the cache-first lookup engine around them.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Aquilabot/KreaPC-Specs/internal/models"
	"github.com/Aquilabot/KreaPC-Specs/pkg/gateway"
	"github.com/Aquilabot/KreaPC-Specs/pkg/metrics"
	"github.com/Aquilabot/KreaPC-Specs/pkg/providers"
	"github.com/Aquilabot/KreaPC-Specs/pkg/validate"
	"github.com/gofiber/fiber/v2/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "github.com/Aquilabot/KreaPC-Specs/pkg/resolver"

	// DefaultMaxCandidates bounds how many search results are checked per provider.
	DefaultMaxCandidates = 10

	logStep      = "chain %s %q position=%d provider=%s outcome=%s reason=%s credits=%d"
	logExhausted = "chain %s %q exhausted after %d providers"
	logAborted   = "chain %s %q aborted at position %d: %v"
)

// Orchestrator tries the providers of a chain in order until one yields a validated record.
type Orchestrator struct {
	fetcher       gateway.Fetcher
	validator     *validate.Validator
	providers     Providers
	maxCandidates int
	now           func() time.Time
	tracer        trace.Tracer
}

func NewOrchestrator(fetcher gateway.Fetcher, validator *validate.Validator, p Providers, maxCandidates int) *Orchestrator {
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}
	if validator == nil {
		validator = validate.New(validate.DefaultMinOverlap)
	}
	return &Orchestrator{
		fetcher:       fetcher,
		validator:     validator,
		providers:     p,
		maxCandidates: maxCandidates,
		now:           time.Now,
		tracer:        otel.Tracer(tracerName),
	}
}

// Resolve returns the first accepted record, or nil when the chain is exhausted. The error is
// gateway.ErrQuotaExhausted or a context error; every other provider fault is only recorded
// on the attempt.
func (o *Orchestrator) Resolve(ctx context.Context, q models.CanonicalQuery) (*models.SpecRecord, *models.LookupAttempt, error) {
	ctx, span := o.tracer.Start(ctx, "Resolver.Resolve")
	defer span.End()
	span.SetAttributes(
		attribute.String("component_type", q.Type.String()),
		attribute.String("query", q.Text),
	)

	start := time.Now()
	attempt := models.NewLookupAttempt(q)
	chain := o.providers.Chain(q)

	rec, err := o.run(ctx, q, chain, attempt)

	status := models.StatusNotFound
	switch {
	case errors.Is(err, gateway.ErrQuotaExhausted):
		status = models.StatusQuotaExhausted
	case err != nil:
		status = models.StatusError
	case rec != nil:
		status = models.StatusMatched
	}
	metrics.ChainExecutionsTotal.WithLabelValues(q.Type.String(), string(status)).Inc()
	metrics.ChainDuration.WithLabelValues(q.Type.String()).Observe(time.Since(start).Seconds())

	span.SetAttributes(
		attribute.String("status", string(status)),
		attribute.Int("position", attempt.Position),
		attribute.Int("credits", attempt.Credits),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "chain aborted")
		log.Warnf(logAborted, q.Type, q.Text, attempt.Position, err)
		return nil, attempt, err
	}
	if rec == nil {
		log.Infof(logExhausted, q.Type, q.Text, len(chain))
	}
	span.SetStatus(codes.Ok, string(status))
	return rec, attempt, nil
}

func (o *Orchestrator) run(ctx context.Context, q models.CanonicalQuery, chain []providers.Provider, attempt *models.LookupAttempt) (*models.SpecRecord, error) {
	for i, provider := range chain {
		step, rec, err := o.try(ctx, q, i+1, provider)
		attempt.Record(step)
		metrics.ProviderAttemptsTotal.WithLabelValues(step.Provider, string(step.Outcome)).Inc()
		log.Debugf(logStep, q.Type, q.Text, step.Position, step.Provider, step.Outcome, step.Reason, step.Credits)

		if err != nil {
			return nil, err
		}
		if rec != nil {
			attempt.ItemsFound = 1
			return rec, nil
		}
	}
	return nil, nil
}

// try runs one provider. It only returns an error when the whole chain has to stop.
func (o *Orchestrator) try(ctx context.Context, q models.CanonicalQuery, position int, provider providers.Provider) (models.AttemptStep, *models.SpecRecord, error) {
	ctx, span := o.tracer.Start(ctx, "Provider."+provider.Name())
	defer span.End()

	step := models.AttemptStep{Position: position, Provider: provider.Name()}
	finish := func(outcome models.Outcome) {
		step.Outcome = outcome
		span.SetAttributes(
			attribute.String("outcome", string(outcome)),
			attribute.Int("credits", step.Credits),
		)
	}

	target, err := provider.BuildQueryURL(q)
	if errors.Is(err, providers.ErrNotApplicable) {
		finish(models.OutcomeSkipped)
		return step, nil, nil
	}
	if err != nil {
		step.Error = err.Error()
		finish(models.OutcomeFetchError)
		return step, nil, nil
	}

	page, outcome, err := o.fetch(ctx, &step, target, gateway.Options{})
	if page == nil {
		if err != nil {
			span.RecordError(err)
		}
		finish(outcome)
		return step, nil, err
	}

	result := provider.Parse(q, page)
	if result.Record == nil && len(result.Candidates) > 0 {
		candidate, ok := o.pick(q, &step, result.Candidates)
		if !ok {
			finish(models.OutcomeNoMatch)
			return step, nil, nil
		}

		page, outcome, err = o.fetch(ctx, &step, candidate.URL, gateway.Options{Render: candidate.Render})
		if page == nil {
			if err != nil {
				span.RecordError(err)
			}
			finish(outcome)
			return step, nil, err
		}
		result = provider.Parse(q, page)
	}

	if result.Record == nil {
		finish(models.OutcomeNoMatch)
		return step, nil, nil
	}

	rec := result.Record
	if verdict := o.validator.Record(q, rec); !verdict.Accepted {
		step.Reason = verdict.Reason
		finish(models.OutcomeRejected)
		return step, nil, nil
	}

	step.Reason = ""
	rec.Type = q.Type
	if rec.Source == "" {
		rec.Source = provider.Name()
	}
	if rec.SourceURL == "" {
		rec.SourceURL = page.URL
	}
	rec.ResolvedAt = o.now()
	finish(models.OutcomeMatched)
	return step, rec, nil
}

// pick returns the first candidate whose title passes validation. The reason of the first
// rejection is kept on the step.
func (o *Orchestrator) pick(q models.CanonicalQuery, step *models.AttemptStep, candidates []providers.Candidate) (providers.Candidate, bool) {
	if len(candidates) > o.maxCandidates {
		candidates = candidates[:o.maxCandidates]
	}
	for _, c := range candidates {
		verdict := o.validator.Title(q, c.Title)
		if verdict.Accepted {
			return c, true
		}
		if step.Reason == "" {
			step.Reason = verdict.Reason
		}
	}
	return providers.Candidate{}, false
}

// fetch goes through the gateway and books the charged credits on step. A nil page means the
// provider is done; a non-nil error means the chain is done too.
func (o *Orchestrator) fetch(ctx context.Context, step *models.AttemptStep, target string, opts gateway.Options) (*gateway.Page, models.Outcome, error) {
	step.URL = target
	page, err := o.fetcher.Fetch(ctx, target, opts)
	if page != nil {
		step.Credits += page.Credits
	}

	switch {
	case err == nil:
		return page, "", nil
	case errors.Is(err, gateway.ErrQuotaExhausted):
		step.Error = err.Error()
		return nil, models.OutcomeQuotaExhausted, err
	case ctx.Err() != nil:
		step.Error = err.Error()
		return nil, models.OutcomeFetchError, fmt.Errorf("fetch %s: %w", target, ctx.Err())
	default:
		step.Error = err.Error()
		return nil, models.OutcomeFetchError, nil
	}
}

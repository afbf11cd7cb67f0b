package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Aquilabot/KreaPC-Specs/internal/models"
	"github.com/Aquilabot/KreaPC-Specs/pkg/gateway"
	"github.com/Aquilabot/KreaPC-Specs/pkg/keylock"
	"github.com/Aquilabot/KreaPC-Specs/pkg/metrics"
	"github.com/Aquilabot/KreaPC-Specs/pkg/normalizer"
	"github.com/Aquilabot/KreaPC-Specs/pkg/store"
	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultLockWait bounds how long an execution waits for another instance holding the same key.
	DefaultLockWait = 2 * time.Minute

	errEmptyQuery = "query is empty"
	errQuota      = "proxy credits exhausted"

	logCacheHit = "lookup %s %q served from store"
	logShared   = "lookup %s %q joined a running resolution"
	logMatched  = "lookup %s %q matched %q via %s (created=%t)"
	logPutError = "error storing %s %q: %v"
)

// Engine answers lookups: store first, then at most one chain execution per key.
type Engine struct {
	normalizer   *normalizer.Normalizer
	orchestrator *Orchestrator
	store        store.Store
	locker       keylock.Locker
	jobs         *JobTracker
	lockWait     time.Duration
	group        singleflight.Group
}

type EngineOption func(*Engine)

// WithLocker serializes executions across instances. The default lock is in-process.
func WithLocker(l keylock.Locker) EngineOption {
	return func(e *Engine) {
		e.locker = l
	}
}

func WithNormalizer(n *normalizer.Normalizer) EngineOption {
	return func(e *Engine) {
		e.normalizer = n
	}
}

func WithJobTracker(t *JobTracker) EngineOption {
	return func(e *Engine) {
		e.jobs = t
	}
}

func WithLockWait(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.lockWait = d
		}
	}
}

func NewEngine(o *Orchestrator, s store.Store, opts ...EngineOption) *Engine {
	e := &Engine{
		orchestrator: o,
		store:        s,
		locker:       keylock.NewLocal(),
		jobs:         NewJobTracker(DefaultJobHistory),
		lockWait:     DefaultLockWait,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.normalizer == nil {
		e.normalizer, _ = normalizer.New()
	}
	return e
}

func (e *Engine) Jobs() *JobTracker {
	return e.jobs
}

// Lookup resolves raw text of the given type. models.Auto infers the type from the text.
// Faults never escape: the result carries Matched, NotFound, QuotaExhausted or Error.
func (e *Engine) Lookup(ctx context.Context, ct models.ComponentType, raw string) models.LookupResult {
	if ct == models.Auto || ct == "" {
		ct = normalizer.DetectComponentType(raw)
	}
	q := e.normalizer.Normalize(raw, ct)
	if q.Text == "" {
		return errorResult(errors.New(errEmptyQuery))
	}

	if rec, err := e.store.Get(ctx, q.Type, q.Text); err == nil {
		metrics.CacheLookupsTotal.WithLabelValues(q.Type.String(), metrics.CacheHit).Inc()
		log.Debugf(logCacheHit, q.Type, q.Text)
		return models.LookupResult{Status: models.StatusMatched, Record: rec, Cached: true}
	} else if !errors.Is(err, store.ErrNotFound) {
		return errorResult(err)
	}
	metrics.CacheLookupsTotal.WithLabelValues(q.Type.String(), metrics.CacheMiss).Inc()

	key := q.Type.String() + "|" + store.Key(q.Text)
	// The execution is shared, so one waiter leaving must not cancel it for the others.
	detached := context.WithoutCancel(ctx)
	ch := e.group.DoChan(key, func() (any, error) {
		return e.execute(detached, q, key), nil
	})

	select {
	case <-ctx.Done():
		return errorResult(ctx.Err())
	case res := <-ch:
		result := res.Val.(models.LookupResult)
		if res.Shared {
			result.Shared = true
			metrics.CacheLookupsTotal.WithLabelValues(q.Type.String(), metrics.CacheShared).Inc()
			log.Debugf(logShared, q.Type, q.Text)
		}
		return result
	}
}

func (e *Engine) execute(ctx context.Context, q models.CanonicalQuery, key string) models.LookupResult {
	lockCtx, cancel := context.WithTimeout(ctx, e.lockWait)
	release, err := e.locker.Acquire(lockCtx, key)
	cancel()
	if err != nil {
		return errorResult(fmt.Errorf("error locking %s: %w", key, err))
	}
	defer release()

	// Another instance may have finished while we waited for the lock.
	if rec, err := e.store.Get(ctx, q.Type, q.Text); err == nil {
		return models.LookupResult{Status: models.StatusMatched, Record: rec, Cached: true}
	}

	jobID := e.jobs.Start(q)
	result := models.LookupResult{JobID: jobID.String()}

	rec, attempt, err := e.orchestrator.Resolve(ctx, q)
	result.Attempt = attempt

	switch {
	case errors.Is(err, gateway.ErrQuotaExhausted):
		result.Status = models.StatusQuotaExhausted
		result.Error = errQuota
		_ = e.jobs.Fail(jobID, errQuota, attempt)
	case err != nil:
		result.Status = models.StatusError
		result.Error = err.Error()
		_ = e.jobs.Fail(jobID, err.Error(), attempt)
	case rec == nil:
		result.Status = models.StatusNotFound
		_ = e.jobs.Complete(jobID, 0, 0, attempt)
	default:
		stored, created, err := e.store.Put(ctx, rec, q.Text)
		if err != nil {
			log.Errorf(logPutError, q.Type, q.Text, err)
			result.Status = models.StatusError
			result.Error = err.Error()
			_ = e.jobs.Fail(jobID, err.Error(), attempt)
			break
		}
		added := 0
		if created {
			added = 1
		}
		log.Infof(logMatched, q.Type, q.Text, stored.DisplayName(), stored.Source, created)
		result.Status = models.StatusMatched
		result.Record = stored
		_ = e.jobs.Complete(jobID, 1, added, attempt)
	}
	return result
}

func errorResult(err error) models.LookupResult {
	return models.LookupResult{Status: models.StatusError, Error: err.Error()}
}

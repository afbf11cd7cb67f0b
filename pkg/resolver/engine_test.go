package resolver

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Aquilabot/KreaPC-Specs/internal/models"
	"github.com/Aquilabot/KreaPC-Specs/pkg/gateway"
	"github.com/Aquilabot/KreaPC-Specs/pkg/metrics"
	"github.com/Aquilabot/KreaPC-Specs/pkg/providers"
	"github.com/Aquilabot/KreaPC-Specs/pkg/store"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) (*Engine, *fakeFetcher, *store.Memory, *fakeProvider) {
	t.Helper()
	a, b, _, p := gpuChain()
	a.url = ""
	p.Marketplace = nil
	f := newFakeFetcher()
	servePages(f, urlB)
	b.results[urlB] = providers.ParseResult{Record: gpuRecord("NVIDIA", "GeForce RTX 3080")}

	s := store.NewMemory()
	return NewEngine(newTestOrchestrator(f, p), s), f, s, b
}

func TestLookupStoresAndServesFromCache(t *testing.T) {
	e, f, s, _ := newTestEngine(t)
	ctx := context.Background()

	first := e.Lookup(ctx, models.GPU, "RTX 3080")
	require.Equal(t, models.StatusMatched, first.Status, first.Error)
	assert.False(t, first.Cached)
	assert.NotEmpty(t, first.JobID)
	require.NotNil(t, first.Attempt)
	assert.Equal(t, 2, first.Attempt.Position)
	assert.Equal(t, 1, s.Len())

	hitsBefore := testutil.ToFloat64(metrics.CacheLookupsTotal.WithLabelValues("GPU", metrics.CacheHit))

	for _, raw := range []string{"RTX 3080", "NVIDIA GeForce RTX 3080"} {
		again := e.Lookup(ctx, models.GPU, raw)
		require.Equal(t, models.StatusMatched, again.Status, raw)
		assert.True(t, again.Cached, raw)
		assert.Equal(t, first.Record.ID, again.Record.ID, raw)
	}

	assert.Len(t, f.Calls(), 1)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.CacheLookupsTotal.WithLabelValues("GPU", metrics.CacheHit))-hitsBefore)

	jobs := e.Jobs().List()
	require.Len(t, jobs, 1)
	assert.Equal(t, models.JobCompleted, jobs[0].Status)
	assert.Equal(t, 1, jobs[0].ItemsFound)
	assert.Equal(t, 1, jobs[0].ItemsAdded)
}

func TestLookupNotFoundCompletesJob(t *testing.T) {
	e, f, s, b := newTestEngine(t)
	delete(b.results, urlB)

	res := e.Lookup(context.Background(), models.GPU, "RTX 3080")
	assert.Equal(t, models.StatusNotFound, res.Status)
	assert.Empty(t, res.Error)
	assert.Zero(t, s.Len())

	job, ok := e.Jobs().Get(mustParseJobID(t, res.JobID))
	require.True(t, ok)
	assert.Equal(t, models.JobCompleted, job.Status)
	assert.Zero(t, job.ItemsAdded)

	// no negative caching: asking again runs the chain again
	e.Lookup(context.Background(), models.GPU, "RTX 3080")
	assert.Len(t, f.Calls(), 2)
}

func TestLookupQuotaExhaustedFailsJob(t *testing.T) {
	e, f, _, _ := newTestEngine(t)
	f.errs[urlB] = gateway.ErrQuotaExhausted

	res := e.Lookup(context.Background(), models.GPU, "RTX 3080")
	assert.Equal(t, models.StatusQuotaExhausted, res.Status)
	assert.NotEmpty(t, res.Error)

	job, ok := e.Jobs().Get(mustParseJobID(t, res.JobID))
	require.True(t, ok)
	assert.Equal(t, models.JobFailed, job.Status)
}

func TestLookupAutoDetectsType(t *testing.T) {
	e, _, _, _ := newTestEngine(t)

	res := e.Lookup(context.Background(), models.Auto, "GeForce RTX 3080")
	require.Equal(t, models.StatusMatched, res.Status, res.Error)
	assert.Equal(t, models.GPU, res.Record.Type)
}

func TestLookupEmptyQuery(t *testing.T) {
	e, f, _, _ := newTestEngine(t)
	res := e.Lookup(context.Background(), models.GPU, "   ")
	assert.Equal(t, models.StatusError, res.Status)
	assert.Empty(t, f.Calls())
}

func TestConcurrentLookupsShareOneExecution(t *testing.T) {
	e, f, s, _ := newTestEngine(t)
	f.gate = make(chan struct{})
	f.started = make(chan struct{}, 1)

	const n = 10
	var wg sync.WaitGroup
	results := make([]models.LookupResult, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.Lookup(context.Background(), models.GPU, "RTX 3080")
		}(i)
	}

	<-f.started
	// let the other callers reach the shared execution before it finishes
	time.Sleep(50 * time.Millisecond)
	close(f.gate)
	wg.Wait()

	for _, res := range results {
		require.Equal(t, models.StatusMatched, res.Status, res.Error)
	}
	assert.Len(t, f.Calls(), 1)
	assert.Equal(t, 1, s.Len())
	assert.Len(t, e.Jobs().List(), 1)
}

func TestCancelledCallerDoesNotCancelSharedExecution(t *testing.T) {
	e, f, s, _ := newTestEngine(t)
	f.gate = make(chan struct{})
	f.started = make(chan struct{}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan models.LookupResult, 1)
	go func() {
		done <- e.Lookup(ctx, models.GPU, "RTX 3080")
	}()

	<-f.started
	cancel()
	res := <-done
	assert.Equal(t, models.StatusError, res.Status)
	assert.Contains(t, res.Error, context.Canceled.Error())

	close(f.gate)
	require.Eventually(t, func() bool { return s.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	again := e.Lookup(context.Background(), models.GPU, "RTX 3080")
	assert.Equal(t, models.StatusMatched, again.Status)
	assert.True(t, again.Cached)
	assert.Len(t, f.Calls(), 1)
}

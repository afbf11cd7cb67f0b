package resolver

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/Aquilabot/KreaPC-Specs/internal/models"
	"github.com/Aquilabot/KreaPC-Specs/pkg/gateway"
	"github.com/Aquilabot/KreaPC-Specs/pkg/providers"
)

// fakeFetcher serves canned pages by URL and charges one credit per page.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls []string
	// gate, when set, blocks every fetch until it is closed.
	gate    chan struct{}
	started chan struct{}
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeFetcher) Fetch(ctx context.Context, target string, opts gateway.Options) (*gateway.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, target)
	gate, started := f.gate, f.started
	f.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, &gateway.FetchError{URL: target, Err: ctx.Err()}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[target]; ok {
		return nil, err
	}
	body, ok := f.pages[target]
	if !ok {
		return nil, &gateway.FetchError{URL: target, StatusCode: http.StatusNotFound, Err: errors.New("not found")}
	}
	return &gateway.Page{URL: target, StatusCode: http.StatusOK, Body: []byte(body), Credits: 1}, nil
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeProvider answers with canned parse results keyed by page URL.
type fakeProvider struct {
	name    string
	url     string
	results map[string]providers.ParseResult
	built   atomic.Int32
}

func newFakeProvider(name, url string) *fakeProvider {
	return &fakeProvider{name: name, url: url, results: map[string]providers.ParseResult{}}
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) BuildQueryURL(models.CanonicalQuery) (string, error) {
	p.built.Add(1)
	if p.url == "" {
		return "", providers.ErrNotApplicable
	}
	return p.url, nil
}

func (p *fakeProvider) Parse(_ models.CanonicalQuery, page *gateway.Page) providers.ParseResult {
	return p.results[page.URL]
}

func gpuRecord(manufacturer, model string) *models.SpecRecord {
	return &models.SpecRecord{
		Type:         models.GPU,
		Manufacturer: manufacturer,
		Model:        model,
		Title:        manufacturer + " " + model,
		Attributes:   models.Attributes{GPU: &models.GPUSpec{MemorySize: 10240, MemoryType: "GDDR6X"}},
	}
}

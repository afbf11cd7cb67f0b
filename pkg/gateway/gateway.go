package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Aquilabot/KreaPC-Specs/internal/config"
	"github.com/Aquilabot/KreaPC-Specs/pkg/metrics"
	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
	"github.com/gofiber/fiber/v2/log"
)

const (
	headerCreditsUsed      = "X-Credits-Used"
	headerCreditsRemaining = "X-Credits-Remaining"

	errorStatus    = "proxy returned status %d"
	logFetch       = "fetch %s status=%d credits=%d render=%t"
	logFetchFailed = "fetch %s failed: %v"
	logQuota       = "proxy credits exhausted while fetching %s"
)

// ErrQuotaExhausted means no further proxy fetches can be paid for. It aborts the remaining chain.
var ErrQuotaExhausted = errors.New("proxy credits exhausted")

// FetchError is a network or HTTP failure. The chain recovers from it by trying the next provider.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type Options struct {
	// Render asks for the page after JavaScript ran. It costs the render price.
	Render bool
}

// Page is a fetched document.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
	Headers    http.Header
	Credits    int
}

// Fetcher is the single outbound chokepoint used by the provider chain.
type Fetcher interface {
	Fetch(ctx context.Context, target string, opts Options) (*Page, error)
}

// Renderer produces the HTML of a page after scripts ran, e.g. a headless browser routed through the proxy.
// The status is the one of the main document response, so proxy refusals surface like on the plain path.
type Renderer interface {
	Render(ctx context.Context, target string) (status int, html string, err error)
}

type Gateway struct {
	endpoint   string
	token      string
	timeout    time.Duration
	creditCost int
	renderCost int
	credits    *Credits
	renderer   Renderer
	transport  http.RoundTripper
}

type Option func(*Gateway)

// WithTransport replaces the HTTP transport used to reach the proxy.
func WithTransport(rt http.RoundTripper) Option {
	return func(g *Gateway) {
		g.transport = rt
	}
}

// WithRenderer routes rendered fetches through r instead of the proxy's render flag.
func WithRenderer(r Renderer) Option {
	return func(g *Gateway) {
		g.renderer = r
	}
}

func New(cfg config.ProxyConfig, credits *Credits, opts ...Option) *Gateway {
	if credits == nil {
		credits = NewCredits(cfg.Budget)
	}
	g := &Gateway{
		endpoint:   cfg.Endpoint,
		token:      cfg.Token,
		timeout:    cfg.Timeout,
		creditCost: max(cfg.CreditCost, 1),
		renderCost: max(cfg.RenderCost, 1),
		credits:    credits,
		transport:  http.DefaultTransport,
	}
	if g.timeout <= 0 {
		g.timeout = 60 * time.Second
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) Credits() *Credits {
	return g.credits
}

// ProxyURL wraps target in a proxy API request.
func (g *Gateway) ProxyURL(target string, render bool) string {
	u := g.endpoint + "?token=" + url.QueryEscape(g.token) + "&url=" + url.QueryEscape(target)
	if render {
		u += "&render=true"
	}
	return u
}

// Fetch retrieves target through the proxy. It returns ErrQuotaExhausted when the budget is spent
// or the proxy reports exhausted credits, and a *FetchError for every other failure.
// Only successful responses are charged.
func (g *Gateway) Fetch(ctx context.Context, target string, opts Options) (*Page, error) {
	cost := g.creditCost
	if opts.Render {
		cost = g.renderCost
	}

	if err := g.credits.Reserve(cost); err != nil {
		metrics.ProxyFetchesTotal.WithLabelValues(metrics.FetchQuota).Inc()
		metrics.ProxyQuotaExhaustedTotal.Inc()
		log.Warnf(logQuota, target)
		return nil, err
	}

	var (
		page *Page
		err  error
	)
	if opts.Render && g.renderer != nil {
		page, err = g.render(ctx, target)
	} else {
		page, err = g.visit(ctx, target, opts.Render)
	}

	charged := 0
	switch {
	case err == nil:
		charged = chargedCredits(page.Headers, cost)
		page.Credits = charged
		metrics.ProxyFetchesTotal.WithLabelValues(metrics.FetchOK).Inc()
		metrics.ProxyCreditsSpentTotal.Add(float64(charged))
		log.Debugf(logFetch, target, page.StatusCode, charged, opts.Render)
	case errors.Is(err, ErrQuotaExhausted):
		metrics.ProxyFetchesTotal.WithLabelValues(metrics.FetchQuota).Inc()
		metrics.ProxyQuotaExhaustedTotal.Inc()
		log.Warnf(logQuota, target)
	default:
		metrics.ProxyFetchesTotal.WithLabelValues(metrics.FetchError).Inc()
		log.Debugf(logFetchFailed, target, err)
	}
	g.credits.Settle(cost, charged)

	if page != nil && page.Headers != nil {
		if remaining, convErr := strconv.Atoi(page.Headers.Get(headerCreditsRemaining)); convErr == nil {
			g.credits.Report(remaining)
		}
	}

	if err != nil {
		return nil, err
	}
	return page, nil
}

func (g *Gateway) visit(ctx context.Context, target string, render bool) (*Page, error) {
	col := colly.NewCollector()
	col.AllowURLRevisit = true
	col.ParseHTTPErrorResponse = true
	col.SetRequestTimeout(g.timeout)
	col.WithTransport(&contextTransport{ctx: ctx, base: g.transport})
	extensions.RandomUserAgent(col)

	var (
		page     *Page
		fetchErr error
	)

	col.OnResponse(func(r *colly.Response) {
		page = &Page{
			URL:        target,
			StatusCode: r.StatusCode,
			Body:       r.Body,
		}
		if r.Headers != nil {
			page.Headers = r.Headers.Clone()
		}
	})

	col.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	if err := col.Visit(g.ProxyURL(target, render)); err != nil && fetchErr == nil {
		fetchErr = err
	}

	if page == nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			fetchErr = ctxErr
		}
		if fetchErr == nil {
			fetchErr = errors.New("empty response")
		}
		return nil, &FetchError{URL: target, Err: fetchErr}
	}

	return g.checkStatus(page)
}

// checkStatus maps a non-2xx page to ErrQuotaExhausted or a *FetchError.
func (g *Gateway) checkStatus(page *Page) (*Page, error) {
	if page.StatusCode >= 200 && page.StatusCode < 300 {
		return page, nil
	}

	if isQuotaSignal(page.StatusCode, page.Body) {
		return page, ErrQuotaExhausted
	}

	return page, &FetchError{
		URL:        page.URL,
		StatusCode: page.StatusCode,
		Err:        fmt.Errorf(errorStatus, page.StatusCode),
	}
}

func (g *Gateway) render(ctx context.Context, target string) (*Page, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	status, html, err := g.renderer.Render(ctx, target)
	if err != nil {
		return nil, &FetchError{URL: target, StatusCode: status, Err: err}
	}
	return g.checkStatus(&Page{URL: target, StatusCode: status, Body: []byte(html)})
}

// isQuotaSignal recognizes the proxy's "out of credits" answer, which is distinct from target HTTP errors.
// Rate limiting (429) is transient and stays a fetch error.
func isQuotaSignal(status int, body []byte) bool {
	switch status {
	case http.StatusPaymentRequired, http.StatusForbidden:
	default:
		return false
	}
	text := strings.ToLower(string(body))
	for _, marker := range []string{"credit", "quota", "payment"} {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

func chargedCredits(h http.Header, fallback int) int {
	if h == nil {
		return fallback
	}
	if used, err := strconv.Atoi(h.Get(headerCreditsUsed)); err == nil && used >= 0 {
		return used
	}
	return fallback
}

// contextTransport binds outgoing requests to the caller's context so cancellation aborts the fetch.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t *contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/playwright-community/playwright-go"
)

const (
	errorInitializingPlaywright = "could not start Playwright: %v"
	errorLaunchingBrowser       = "could not launch browser: %v"
	errorCreatingContext        = "could not create browser context: %v"
	errorCreatingPage           = "could not create page: %v"
	errorNavigatingURL          = "could not navigate to %s: %v"
	errorReadingContent         = "could not read content of %s: %v"
	logInitPlaywright           = "Initializing Playwright"
	logErrorCookies             = "Error handling cookies, but we continue: %v"
	logCleanupPlaywright        = "Cleaning up Playwright"
	logErrorCloseBrowser        = "Could not close browser: %v"
	logErrorStopPlaywright      = "Could not stop Playwright: %v"

	defaultNavigationTimeout = 60 * time.Second
	cookieTimeout            = 2 * time.Second
)

var errClosed = errors.New("browser closed")

// Browser renders script-heavy pages in headless Chromium. All traffic goes through the
// proxy server, authenticated with the proxy token. Playwright starts on first use.
type Browser struct {
	proxyServer string
	token       string

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
	closed  bool
}

func New(proxyServer, token string) *Browser {
	return &Browser{proxyServer: proxyServer, token: token}
}

// Render navigates to target and returns the document status and the page HTML once the network is idle.
// Non-2xx documents are still read so the caller can inspect the proxy's answer.
func (b *Browser) Render(ctx context.Context, target string) (int, string, error) {
	if err := ctx.Err(); err != nil {
		return 0, "", err
	}

	browser, err := b.start()
	if err != nil {
		return 0, "", err
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		IgnoreHttpsErrors: playwright.Bool(true),
	})
	if err != nil {
		return 0, "", fmt.Errorf(errorCreatingContext, err)
	}
	defer bctx.Close()

	page, err := bctx.NewPage()
	if err != nil {
		return 0, "", fmt.Errorf(errorCreatingPage, err)
	}

	status, err := navigateTo(ctx, page, target)
	if err != nil {
		return 0, "", err
	}

	if err := handleCookies(page); err != nil {
		log.Debugf(logErrorCookies, err)
	}

	html, err := page.Content()
	if err != nil {
		return status, "", fmt.Errorf(errorReadingContent, target, err)
	}
	return status, html, nil
}

func (b *Browser) start() (playwright.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, errClosed
	}
	if b.browser != nil {
		return b.browser, nil
	}

	log.Info(logInitPlaywright)
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf(errorInitializingPlaywright, err)
	}

	opts := playwright.BrowserTypeLaunchOptions{Headless: playwright.Bool(true)}
	if b.proxyServer != "" {
		opts.Proxy = &playwright.Proxy{
			Server:   b.proxyServer,
			Username: playwright.String(b.token),
			Password: playwright.String(""),
		}
	}

	browser, err := pw.Chromium.Launch(opts)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf(errorLaunchingBrowser, err)
	}

	b.pw, b.browser = pw, browser
	return browser, nil
}

// navigateTo loads url and returns the main document status. Playwright gives no response
// for same-document navigations, which count as 200.
func navigateTo(ctx context.Context, page playwright.Page, url string) (int, error) {
	timeout := defaultNavigationTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if timeout <= 0 {
		return 0, context.DeadlineExceeded
	}

	resp, err := page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	})
	if err != nil {
		return 0, fmt.Errorf(errorNavigatingURL, url, err)
	}
	if resp == nil {
		return http.StatusOK, nil
	}
	return resp.Status(), nil
}

func handleCookies(page playwright.Page) error {
	return page.GetByRole("button", playwright.PageGetByRoleOptions{Name: "Accept All Cookies"}).
		Click(playwright.LocatorClickOptions{Timeout: playwright.Float(float64(cookieTimeout.Milliseconds()))})
}

// Close stops the browser and Playwright. Render fails afterwards.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	if b.browser == nil {
		return nil
	}

	log.Info(logCleanupPlaywright)
	var errs []error
	if err := b.browser.Close(); err != nil {
		log.Errorf(logErrorCloseBrowser, err)
		errs = append(errs, err)
	}
	if err := b.pw.Stop(); err != nil {
		log.Errorf(logErrorStopPlaywright, err)
		errs = append(errs, err)
	}
	b.browser, b.pw = nil, nil
	return errors.Join(errs...)
}

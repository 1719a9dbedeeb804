package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"
)

type Options struct {
	Headless       bool
	Timeout        time.Duration
	NavRetries     int
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	ExtraHeaders   map[string]string
}

func DefaultOptions() *Options {
	return &Options{
		Headless:       true,
		Timeout:        30 * time.Second,
		NavRetries:     3,
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		ViewportWidth:  1920,
		ViewportHeight: 1080,
		ExtraHeaders: map[string]string{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
			"Accept-Encoding": "gzip, deflate, br",
			"DNT":             "1",
		},
	}
}

// Browser owns the playwright runtime and exposes exactly one page as a
// Session. Close releases the page, context, browser, and runtime in order.
type Browser struct {
	pw         *playwright.Playwright
	browser    playwright.Browser
	context    playwright.BrowserContext
	page       playwright.Page
	navRetries int
	logger     *slog.Logger
}

var _ Session = (*Browser)(nil)

func New(opts *Options) (*Browser, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultOptions().UserAgent
	}
	if opts.NavRetries < 1 {
		opts.NavRetries = 1
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-setuid-sandbox",
			"--disable-gpu",
			"--window-size=1920,1080",
			"--user-agent=" + opts.UserAgent,
		},
	}

	b, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		UserAgent:         &opts.UserAgent,
		AcceptDownloads:   playwright.Bool(false),
		JavaScriptEnabled: playwright.Bool(true),
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
		ExtraHttpHeaders: opts.ExtraHeaders,
	}

	browserCtx, err := b.NewContext(contextOpts)
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		browserCtx.Close()
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(float64(opts.Timeout.Milliseconds()))

	return &Browser{
		pw:         pw,
		browser:    b,
		context:    browserCtx,
		page:       page,
		navRetries: opts.NavRetries,
		logger:     slog.Default().With("component", "browser"),
	}, nil
}

// Navigate loads the URL, retrying with backoff up to the configured bound.
func (b *Browser) Navigate(ctx context.Context, url string) error {
	var lastErr error

	for i := 0; i < b.navRetries; i++ {
		if i > 0 {
			b.logger.Info("retrying navigation", "attempt", i+1, "url", url)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i+1) * time.Second):
			}
		}

		_, err := b.page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		})
		if err == nil {
			return nil
		}

		lastErr = err
		b.logger.Error("navigation failed", "error", err, "attempt", i+1)
	}

	return fmt.Errorf("failed after %d retries: %w", b.navRetries, lastErr)
}

func (b *Browser) WaitFor(selector string, timeout time.Duration) bool {
	_, err := b.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
		State:   playwright.WaitForSelectorStateAttached,
	})
	return err == nil
}

func (b *Browser) Find(selector string) (Element, bool) {
	loc := b.page.Locator(selector).First()
	count, err := loc.Count()
	if err != nil || count == 0 {
		return nil, false
	}
	return &pageElement{loc: loc}, true
}

func (b *Browser) FindAll(selector string) []Element {
	loc := b.page.Locator(selector)
	count, err := loc.Count()
	if err != nil {
		return nil
	}

	elements := make([]Element, 0, count)
	for i := 0; i < count; i++ {
		elements = append(elements, &pageElement{loc: loc.Nth(i)})
	}
	return elements
}

func (b *Browser) Evaluate(script string) (any, error) {
	return b.page.Evaluate(script)
}

func (b *Browser) Close() error {
	var errs []error

	if b.page != nil {
		if err := b.page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close page: %w", err))
		}
	}

	if b.context != nil {
		if err := b.context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close context: %w", err))
		}
	}

	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}

	if b.pw != nil {
		if err := b.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}

	return nil
}

type pageElement struct {
	loc playwright.Locator
}

func (e *pageElement) HTML() (string, error) {
	result, err := e.loc.Evaluate("el => el.outerHTML", nil)
	if err != nil {
		return "", fmt.Errorf("failed to read element HTML: %w", err)
	}

	html, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected outerHTML result type %T", result)
	}
	return html, nil
}

func (e *pageElement) Text() (string, error) {
	return e.loc.TextContent()
}

func (e *pageElement) Attribute(name string) (string, bool) {
	value, err := e.loc.GetAttribute(name)
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}

func (e *pageElement) Click() error {
	return e.loc.Click()
}

func (e *pageElement) ScriptClick() error {
	_, err := e.loc.Evaluate("el => { el.scrollIntoView(); el.click(); }", nil)
	return err
}

package browser

import (
	"context"
	stderrors "errors"
	"regexp"
	"sync"
	"time"

	pw "github.com/playwright-community/playwright-go"

	"sjsage522/patentworker/logger"
	"sjsage522/patentworker/pkg/errors"
)

const provider = "browser"

// DefaultUserAgent is a desktop Chrome agent; the portals serve reduced markup to unknown agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var defaultArgs = []string{
	"--no-sandbox",
	"--disable-setuid-sandbox",
	"--disable-dev-shm-usage",
	"--disable-gpu",
	"--no-first-run",
	"--no-zygote",
}

// Options configures the Chromium instances started by PlaywrightLauncher.
type Options struct {
	Headless       bool
	ExecutablePath string
	Proxy          string
	UserAgent      string
	// DefaultTimeout bounds element actions that take no explicit timeout.
	DefaultTimeout time.Duration
}

// PlaywrightLauncher starts the Playwright driver once and launches a fresh
// Chromium per session so no state is shared between extractions.
type PlaywrightLauncher struct {
	opts Options
	log  *logger.Logger

	mu sync.Mutex
	pw *pw.Playwright
}

// NewPlaywrightLauncher creates a launcher; the driver starts on first use.
func NewPlaywrightLauncher(opts Options) *PlaywrightLauncher {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.DefaultTimeout <= 0 {
		opts.DefaultTimeout = 30 * time.Second
	}
	return &PlaywrightLauncher{
		opts: opts,
		log:  logger.ForExtractor(provider),
	}
}

func (l *PlaywrightLauncher) driver() (*pw.Playwright, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pw != nil {
		return l.pw, nil
	}
	instance, err := pw.Run()
	if err != nil {
		return nil, errors.NewBrowser(provider, "failed to start Playwright", err)
	}
	l.pw = instance
	return instance, nil
}

// NewSession launches Chromium and opens a page with the configured user agent.
func (l *PlaywrightLauncher) NewSession(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	instance, err := l.driver()
	if err != nil {
		return nil, err
	}

	launchOptions := pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(l.opts.Headless),
		Args:     defaultArgs,
	}
	if l.opts.ExecutablePath != "" {
		launchOptions.ExecutablePath = pw.String(l.opts.ExecutablePath)
	}
	if l.opts.Proxy != "" {
		launchOptions.Proxy = &pw.Proxy{Server: l.opts.Proxy}
	}

	b, err := instance.Chromium.Launch(launchOptions)
	if err != nil {
		return nil, errors.NewBrowser(provider, "failed to launch browser", err)
	}

	bctx, err := b.NewContext(pw.BrowserNewContextOptions{
		UserAgent: pw.String(l.opts.UserAgent),
		Locale:    pw.String("ko-KR"),
	})
	if err != nil {
		b.Close()
		return nil, errors.NewBrowser(provider, "failed to create browser context", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		b.Close()
		return nil, errors.NewBrowser(provider, "failed to create page", err)
	}
	page.SetDefaultTimeout(ms(l.opts.DefaultTimeout))

	l.log.Debug().Bool("headless", l.opts.Headless).Msg("browser session opened")
	return &playwrightSession{browser: b, page: &playwrightPage{page: page}, log: l.log}, nil
}

// Close stops the Playwright driver.
func (l *PlaywrightLauncher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pw == nil {
		return nil
	}
	err := l.pw.Stop()
	l.pw = nil
	return err
}

type playwrightSession struct {
	browser pw.Browser
	page    *playwrightPage
	log     *logger.Logger
	once    sync.Once
	err     error
}

func (s *playwrightSession) Page() Page { return s.page }

func (s *playwrightSession) Close() error {
	s.once.Do(func() {
		s.err = s.browser.Close()
		s.log.Debug().Err(s.err).Msg("browser session closed")
	})
	return s.err
}

type playwrightPage struct {
	page pw.Page
}

func (p *playwrightPage) Goto(url string, opts NavigateOptions) error {
	gotoOpts := pw.PageGotoOptions{WaitUntil: waitUntil(opts.WaitUntil)}
	if opts.Timeout > 0 {
		gotoOpts.Timeout = pw.Float(ms(opts.Timeout))
	}
	if _, err := p.page.Goto(url, gotoOpts); err != nil {
		return wrap(err, "navigation to "+url+" failed")
	}
	return nil
}

func (p *playwrightPage) WaitForLoadState(state LoadState, timeout time.Duration) error {
	err := p.page.WaitForLoadState(pw.PageWaitForLoadStateOptions{
		State:   loadState(state),
		Timeout: pw.Float(ms(timeout)),
	})
	return wrap(err, "wait for "+string(state))
}

func (p *playwrightPage) WaitForURL(fragment string, timeout time.Duration) error {
	pattern := regexp.MustCompile(regexp.QuoteMeta(fragment))
	err := p.page.WaitForURL(pattern, pw.PageWaitForURLOptions{Timeout: pw.Float(ms(timeout))})
	return wrap(err, "wait for URL containing "+fragment)
}

func (p *playwrightPage) WaitVisible(selector string, timeout time.Duration) error {
	err := p.page.Locator(selector).First().WaitFor(pw.LocatorWaitForOptions{
		State:   pw.WaitForSelectorStateVisible,
		Timeout: pw.Float(ms(timeout)),
	})
	return wrap(err, "wait for "+selector)
}

func (p *playwrightPage) Fill(selector, value string) error {
	return wrap(p.page.Locator(selector).First().Fill(value), "fill "+selector)
}

func (p *playwrightPage) Press(selector, key string) error {
	return wrap(p.page.Locator(selector).First().Press(key), "press "+key+" on "+selector)
}

func (p *playwrightPage) Click(selector string) error {
	return wrap(p.page.Locator(selector).First().Click(), "click "+selector)
}

func (p *playwrightPage) SelectOption(selector, value string) error {
	values := []string{value}
	_, err := p.page.Locator(selector).First().SelectOption(pw.SelectOptionValues{Values: &values})
	return wrap(err, "select "+value+" in "+selector)
}

func (p *playwrightPage) IsVisible(selector string) (bool, error) {
	ok, err := p.page.Locator(selector).First().IsVisible()
	return ok, wrap(err, "visibility of "+selector)
}

func (p *playwrightPage) Count(selector string) (int, error) {
	n, err := p.page.Locator(selector).Count()
	return n, wrap(err, "count "+selector)
}

func (p *playwrightPage) GetAttribute(selector, name string) (string, error) {
	v, err := p.page.Locator(selector).First().GetAttribute(name)
	return v, wrap(err, "attribute "+name+" of "+selector)
}

func (p *playwrightPage) Evaluate(script string) (any, error) {
	v, err := p.page.Evaluate(script)
	return v, wrap(err, "evaluate script")
}

func (p *playwrightPage) Content() (string, error) {
	html, err := p.page.Content()
	return html, wrap(err, "read page content")
}

func (p *playwrightPage) Title() (string, error) {
	t, err := p.page.Title()
	return t, wrap(err, "read page title")
}

func (p *playwrightPage) URL() string {
	return p.page.URL()
}

// wrap classifies Playwright failures so the retry layer can tell timeouts apart.
func wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, pw.ErrTimeout) {
		return errors.NewTimeout(provider, message, err)
	}
	return errors.NewNetwork(provider, message, err)
}

func waitUntil(state LoadState) *pw.WaitUntilState {
	switch state {
	case LoadStateNetworkIdle:
		return pw.WaitUntilStateNetworkidle
	default:
		return pw.WaitUntilStateLoad
	}
}

func loadState(state LoadState) *pw.LoadState {
	switch state {
	case LoadStateNetworkIdle:
		return pw.LoadStateNetworkidle
	default:
		return pw.LoadStateLoad
	}
}

func ms(d time.Duration) float64 {
	return float64(d / time.Millisecond)
}

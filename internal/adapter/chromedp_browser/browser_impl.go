package chromedp_browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/user/fathom-scraper/internal/repository"
	"github.com/user/fathom-scraper/pkg/logger"
)

const (
	defaultUserAgent = `Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36`
	pollInterval     = 500 * time.Millisecond
)

// Options configures the launched Chrome process.
type Options struct {
	Headless     bool
	ExecPath     string
	UserAgent    string
	WindowWidth  int
	WindowHeight int
}

// ChromedpBrowser launches one Chrome process per Acquire.
type ChromedpBrowser struct {
	opts   Options
	logger *slog.Logger
}

// NewChromedpBrowser creates a browser launcher backed by chromedp.
func NewChromedpBrowser(opts Options, log *slog.Logger) *ChromedpBrowser {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.WindowWidth == 0 || opts.WindowHeight == 0 {
		opts.WindowWidth, opts.WindowHeight = 1920, 1080
	}
	return &ChromedpBrowser{opts: opts, logger: logger.OrDefault(log)}
}

func (b *ChromedpBrowser) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(b.opts.WindowWidth, b.opts.WindowHeight),
		chromedp.UserAgent(b.opts.UserAgent),
	)
	if b.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(b.opts.ExecPath))
	}
	return opts
}

// Acquire starts an isolated browser with a single page. The returned page
// owns the process; Close must be called on every path.
func (b *ChromedpBrowser) Acquire(ctx context.Context) (repository.Page, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, b.allocatorOptions()...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			b.logger.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
		}),
	)

	p := &chromedpPage{
		ctx:    browserCtx,
		cancel: func() { cancelBrowser(); cancelAlloc() },
		logger: b.logger,
		subs:   make(map[chan responseEvent]struct{}),
	}
	chromedp.ListenTarget(browserCtx, p.onEvent)

	// The first Run starts the browser and must not use a timeout context,
	// otherwise the process would die with it.
	if err := chromedp.Run(browserCtx, network.Enable(), page.SetLifecycleEventsEnabled(true)); err != nil {
		p.cancel()
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	if c := chromedp.FromContext(browserCtx); c != nil && c.Target != nil {
		p.mu.Lock()
		p.mainFrame = cdp.FrameID(c.Target.TargetID)
		p.mu.Unlock()
	}
	return p, nil
}

type responseEvent struct {
	url    string
	status int
}

var _ repository.Page = (*chromedpPage)(nil)

type chromedpPage struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	mu        sync.Mutex
	mainFrame cdp.FrameID
	idle      chan struct{}
	idleOnce  *sync.Once
	subs      map[chan responseEvent]struct{}
}

// onEvent runs on chromedp's event goroutine and must never block.
func (p *chromedpPage) onEvent(ev interface{}) {
	switch ev := ev.(type) {
	case *network.EventResponseReceived:
		if ev.Response == nil {
			return
		}
		p.publish(responseEvent{url: ev.Response.URL, status: int(ev.Response.Status)})
	case *page.EventLifecycleEvent:
		if ev.Name != "networkIdle" {
			return
		}
		p.mu.Lock()
		idle, once, main := p.idle, p.idleOnce, p.mainFrame
		p.mu.Unlock()
		if idle == nil || (main != "" && ev.FrameID != main) {
			return
		}
		once.Do(func() { close(idle) })
	}
}

func (p *chromedpPage) publish(ev responseEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for ch := range p.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (p *chromedpPage) subscribe() (chan responseEvent, func()) {
	ch := make(chan responseEvent, 64)
	p.mu.Lock()
	p.subs[ch] = struct{}{}
	p.mu.Unlock()
	return ch, func() {
		p.mu.Lock()
		delete(p.subs, ch)
		p.mu.Unlock()
	}
}

// armIdle resets the network-idle signal before a navigation.
func (p *chromedpPage) armIdle() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idle = make(chan struct{})
	p.idleOnce = &sync.Once{}
	return p.idle
}

// opContext derives a chromedp context bounded by timeout that is also
// cancelled when the caller's ctx is.
func (p *chromedpPage) opContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	var opCtx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		opCtx, cancel = context.WithTimeout(p.ctx, timeout)
	} else {
		opCtx, cancel = context.WithCancel(p.ctx)
	}
	stop := context.AfterFunc(ctx, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}
}

func timeoutErr(opCtx context.Context, err error, sentinel error, what string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(opCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", sentinel, what, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (p *chromedpPage) Navigate(ctx context.Context, url string, policy repository.WaitPolicy, timeout time.Duration) (string, error) {
	idle := p.armIdle()
	navCtx, cancel := p.opContext(ctx, timeout)
	defer cancel()

	if err := chromedp.Run(navCtx, chromedp.Navigate(url)); err != nil {
		return "", timeoutErr(navCtx, err, repository.ErrNavigationTimeout, "navigate "+url)
	}

	if policy == repository.WaitNetworkIdle {
		select {
		case <-idle:
		case <-navCtx.Done():
			return "", timeoutErr(navCtx, navCtx.Err(), repository.ErrNavigationTimeout, "wait for network idle")
		}
	}

	var current string
	if err := chromedp.Run(navCtx, chromedp.Location(&current)); err != nil {
		return "", timeoutErr(navCtx, err, repository.ErrNavigationTimeout, "read location")
	}
	return current, nil
}

func (p *chromedpPage) Title(ctx context.Context) (string, error) {
	opCtx, cancel := p.opContext(ctx, 0)
	defer cancel()
	var title string
	if err := chromedp.Run(opCtx, chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("read title: %w", err)
	}
	return title, nil
}

func (p *chromedpPage) WaitAttached(ctx context.Context, selector string, timeout time.Duration) error {
	opCtx, cancel := p.opContext(ctx, timeout)
	defer cancel()
	if err := chromedp.Run(opCtx, chromedp.WaitReady(selector, chromedp.ByQuery)); err != nil {
		if errors.Is(opCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", repository.ErrElementNotFound, selector)
		}
		return fmt.Errorf("wait for %s: %w", selector, err)
	}
	return nil
}

func (p *chromedpPage) evaluate(ctx context.Context, script string, res interface{}) error {
	opCtx, cancel := p.opContext(ctx, 0)
	defer cancel()
	return chromedp.Run(opCtx, chromedp.Evaluate(script, res))
}

func (p *chromedpPage) Exists(ctx context.Context, loc repository.Locator) (bool, error) {
	var ok bool
	if err := p.evaluate(ctx, existsScript(loc), &ok); err != nil {
		return false, fmt.Errorf("query %s: %w", loc.CSS, err)
	}
	return ok, nil
}

func (p *chromedpPage) Attribute(ctx context.Context, selector, name string) (string, bool, error) {
	var res struct {
		OK    bool   `json:"ok"`
		Value string `json:"value"`
	}
	if err := p.evaluate(ctx, attributeScript(selector, name), &res); err != nil {
		return "", false, fmt.Errorf("read %s[%s]: %w", selector, name, err)
	}
	return res.Value, res.OK, nil
}

func (p *chromedpPage) Click(ctx context.Context, loc repository.Locator) error {
	var clicked bool
	if err := p.evaluate(ctx, clickScript(loc), &clicked); err != nil {
		return fmt.Errorf("click %s: %w", loc.CSS, err)
	}
	if !clicked {
		return fmt.Errorf("click %s: %w", loc.CSS, repository.ErrElementNotFound)
	}
	return nil
}

// WaitForFunction evaluates expression every pollInterval until it is truthy.
func (p *chromedpPage) WaitForFunction(ctx context.Context, expression string, timeout time.Duration) error {
	opCtx, cancel := p.opContext(ctx, timeout)
	defer cancel()

	script := truthyScript(expression)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		var ok bool
		if err := chromedp.Run(opCtx, chromedp.Evaluate(script, &ok)); err != nil {
			if opCtx.Err() != nil {
				return fmt.Errorf("%w: predicate: %v", repository.ErrWaitTimeout, err)
			}
			p.logger.Debug("predicate evaluation failed, retrying", "error", err)
		} else if ok {
			return nil
		}
		select {
		case <-opCtx.Done():
			return fmt.Errorf("%w: predicate never became truthy", repository.ErrWaitTimeout)
		case <-ticker.C:
		}
	}
}

func (p *chromedpPage) WaitForResponse(ctx context.Context, match func(url string, status int) bool, timeout time.Duration) error {
	ch, unsubscribe := p.subscribe()
	defer unsubscribe()

	waitCtx, cancel := p.opContext(ctx, timeout)
	defer cancel()
	for {
		select {
		case ev := <-ch:
			if match(ev.url, ev.status) {
				return nil
			}
		case <-waitCtx.Done():
			return fmt.Errorf("%w: no matching response", repository.ErrWaitTimeout)
		}
	}
}

func (p *chromedpPage) Texts(ctx context.Context, selector string) ([]repository.ElementText, error) {
	var texts []repository.ElementText
	if err := p.evaluate(ctx, textsScript(selector), &texts); err != nil {
		return nil, fmt.Errorf("collect text for %s: %w", selector, err)
	}
	return texts, nil
}

func (p *chromedpPage) OuterHTML(ctx context.Context, selector string) (string, error) {
	var html string
	if err := p.evaluate(ctx, outerHTMLScript(selector), &html); err != nil {
		return "", fmt.Errorf("read markup of %s: %w", selector, err)
	}
	return html, nil
}

// Close gracefully shuts Chrome down, then releases the allocator regardless.
func (p *chromedpPage) Close() error {
	err := chromedp.Cancel(p.ctx)
	p.cancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}

package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/user/fathom-scraper/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeResponse struct {
	url    string
	status int
}

var _ repository.Page = (*fakePage)(nil)

// fakePage is a scripted repository.Page.
type fakePage struct {
	mu sync.Mutex

	landingURL  string
	navigateErr error
	title       string
	titleErr    error

	attached  map[string]bool
	attrs     map[string]string // "selector|name" -> value
	present   map[repository.Locator]bool
	texts     map[string][]repository.ElementText
	textsErr  map[string]error
	markup    map[string]string
	predicate error
	responses []fakeResponse
	closeErr  error

	clicked   []repository.Locator
	navigated []string
	policies  []repository.WaitPolicy
	closed    int
}

func newFakePage(landingURL string) *fakePage {
	return &fakePage{
		landingURL: landingURL,
		attached:   map[string]bool{},
		attrs:      map[string]string{},
		present:    map[repository.Locator]bool{},
		texts:      map[string][]repository.ElementText{},
		textsErr:   map[string]error{},
		markup:     map[string]string{},
	}
}

func (p *fakePage) Navigate(_ context.Context, url string, policy repository.WaitPolicy, _ time.Duration) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navigated = append(p.navigated, url)
	p.policies = append(p.policies, policy)
	if p.navigateErr != nil {
		return "", p.navigateErr
	}
	return p.landingURL, nil
}

func (p *fakePage) Title(context.Context) (string, error) { return p.title, p.titleErr }

func (p *fakePage) WaitAttached(_ context.Context, selector string, _ time.Duration) error {
	if p.attached[selector] {
		return nil
	}
	return repository.ErrElementNotFound
}

func (p *fakePage) Exists(_ context.Context, loc repository.Locator) (bool, error) {
	return p.present[loc], nil
}

func (p *fakePage) Attribute(_ context.Context, selector, name string) (string, bool, error) {
	v, ok := p.attrs[selector+"|"+name]
	return v, ok, nil
}

func (p *fakePage) Click(_ context.Context, loc repository.Locator) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clicked = append(p.clicked, loc)
	return nil
}

func (p *fakePage) WaitForFunction(context.Context, string, time.Duration) error { return p.predicate }

func (p *fakePage) WaitForResponse(_ context.Context, match func(string, int) bool, _ time.Duration) error {
	for _, r := range p.responses {
		if match(r.url, r.status) {
			return nil
		}
	}
	return repository.ErrWaitTimeout
}

func (p *fakePage) Texts(_ context.Context, selector string) ([]repository.ElementText, error) {
	if err := p.textsErr[selector]; err != nil {
		return nil, err
	}
	return p.texts[selector], nil
}

func (p *fakePage) OuterHTML(_ context.Context, selector string) (string, error) {
	return p.markup[selector], nil
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	return p.closeErr
}

// fakeBrowser hands out pages in order, reusing the last one when exhausted.
type fakeBrowser struct {
	mu       sync.Mutex
	pages    []*fakePage
	acquired int
	err      error
}

func (b *fakeBrowser) Acquire(context.Context) (repository.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	if len(b.pages) == 0 {
		return nil, errors.New("no pages scripted")
	}
	idx := b.acquired
	if idx >= len(b.pages) {
		idx = len(b.pages) - 1
	}
	b.acquired++
	return b.pages[idx], nil
}

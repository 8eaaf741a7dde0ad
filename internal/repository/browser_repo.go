package repository

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNavigationTimeout is returned when a page does not reach the requested ready state in time.
	ErrNavigationTimeout = errors.New("navigation timeout")
	// ErrWaitTimeout is returned when a selector, predicate or response wait runs out of time.
	ErrWaitTimeout = errors.New("wait timeout")
	// ErrElementNotFound is returned when an expected element is absent from the DOM.
	ErrElementNotFound = errors.New("element not found")
)

// WaitPolicy selects the ready state Navigate waits for.
type WaitPolicy int

const (
	// WaitLoad waits for the document load event.
	WaitLoad WaitPolicy = iota
	// WaitNetworkIdle additionally waits until the main frame reports network quiescence.
	WaitNetworkIdle
)

func (p WaitPolicy) String() string {
	if p == WaitNetworkIdle {
		return "networkidle"
	}
	return "load"
}

// Locator identifies an element by CSS selector and, optionally, by a
// case-insensitive substring of its rendered text.
type Locator struct {
	CSS  string
	Text string
}

// ElementText is the text of one element as reported by the page.
type ElementText struct {
	Visible     bool   `json:"visible"`
	InnerText   string `json:"innerText"`
	TextContent string `json:"textContent"`
}

// Browser launches isolated browser sessions. Each call to Acquire starts a
// fresh browser; nothing is pooled between callers.
type Browser interface {
	Acquire(ctx context.Context) (Page, error)
}

// Page is the headless-browser capability the extractors consume.
type Page interface {
	// Navigate loads url, waits per policy within timeout and returns the URL the page ended on.
	Navigate(ctx context.Context, url string, policy WaitPolicy, timeout time.Duration) (string, error)
	// Title returns the document title.
	Title(ctx context.Context) (string, error)
	// WaitAttached waits until selector is attached to the DOM.
	WaitAttached(ctx context.Context, selector string, timeout time.Duration) error
	// Exists reports whether loc currently matches an element.
	Exists(ctx context.Context, loc Locator) (bool, error)
	// Attribute reads an attribute of the first element matching selector.
	Attribute(ctx context.Context, selector, name string) (string, bool, error)
	// Click clicks the first element matching loc.
	Click(ctx context.Context, loc Locator) error
	// WaitForFunction polls a JavaScript predicate until it is truthy.
	WaitForFunction(ctx context.Context, expression string, timeout time.Duration) error
	// WaitForResponse waits for a network response accepted by match.
	WaitForResponse(ctx context.Context, match func(url string, status int) bool, timeout time.Duration) error
	// Texts returns the text of every element matching selector.
	Texts(ctx context.Context, selector string) ([]ElementText, error)
	// OuterHTML returns the markup of the first element matching selector, or "" if absent.
	OuterHTML(ctx context.Context, selector string) (string, error)
	// Close shuts the browser down.
	Close() error
}

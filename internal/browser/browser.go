// Package browser exposes the small slice of headless-browser behaviour the
// extractors rely on: load a page, wait for it, locate elements by selector,
// fill, click, read page HTML and evaluate a script.
package browser

import (
	"context"
	"time"
)

// LoadState is a page lifecycle milestone that navigation can wait for.
type LoadState string

const (
	LoadStateLoad        LoadState = "load"
	LoadStateNetworkIdle LoadState = "networkidle"
)

// NavigateOptions controls Goto.
type NavigateOptions struct {
	WaitUntil LoadState
	Timeout   time.Duration
}

// Page is a single browser tab. Selectors accept the engine's CSS dialect,
// including text pseudo-classes such as :has-text().
type Page interface {
	Goto(url string, opts NavigateOptions) error
	WaitForLoadState(state LoadState, timeout time.Duration) error
	// WaitForURL blocks until the current URL contains fragment.
	WaitForURL(fragment string, timeout time.Duration) error
	// WaitVisible blocks until the first element matching selector is visible.
	WaitVisible(selector string, timeout time.Duration) error

	Fill(selector, value string) error
	Press(selector, key string) error
	Click(selector string) error
	SelectOption(selector, value string) error

	IsVisible(selector string) (bool, error)
	Count(selector string) (int, error)
	GetAttribute(selector, name string) (string, error)

	Evaluate(script string) (any, error)
	Content() (string, error)
	Title() (string, error)
	URL() string
}

// Session is an isolated browser instance owning one page. Close releases
// the underlying browser process and is safe to call more than once.
type Session interface {
	Page() Page
	Close() error
}

// Launcher opens isolated sessions.
type Launcher interface {
	NewSession(ctx context.Context) (Session, error)
}

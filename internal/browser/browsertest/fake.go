// Package browsertest provides scripted in-memory browser sessions for tests.
package browsertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/patentworker/internal/browser"
	"sjsage522/patentworker/pkg/errors"
)

// FakePage serves static HTML per URL. Element queries are answered from the
// Visible override map first, then by matching the selector against the
// current document with goquery, with :has-text() read as :contains().
// Hooks let tests simulate navigation.
type FakePage struct {
	mu sync.Mutex

	// Routes maps a URL to the HTML served after navigating there.
	Routes map[string]string
	// Visible overrides element presence for selectors goquery cannot compile.
	Visible map[string]bool
	// Attributes maps "selector@name" to an attribute value.
	Attributes map[string]string
	// Failures makes the named operation ("goto", "fill:#id", "waitVisible:sel", ...) fail.
	Failures map[string]error

	OnPress    func(p *FakePage, selector, key string)
	OnClick    func(p *FakePage, selector string)
	OnEvaluate func(p *FakePage, script string) (any, error)

	url   string
	calls []string
}

// NewFakePage returns an empty page with no routes.
func NewFakePage() *FakePage {
	return &FakePage{
		Routes:     map[string]string{},
		Visible:    map[string]bool{},
		Attributes: map[string]string{},
		Failures:   map[string]error{},
	}
}

// Navigate switches the current document without recording a call.
func (p *FakePage) Navigate(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
}

// Calls returns the recorded interactions in order.
func (p *FakePage) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// Called reports whether an interaction was recorded.
func (p *FakePage) Called(call string) bool {
	for _, c := range p.Calls() {
		if c == call {
			return true
		}
	}
	return false
}

func (p *FakePage) record(call string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
	if err, ok := p.Failures[call]; ok {
		return err
	}
	op, _, _ := strings.Cut(call, ":")
	if err, ok := p.Failures[op]; ok {
		return err
	}
	return nil
}

func (p *FakePage) document() *goquery.Document {
	p.mu.Lock()
	html := p.Routes[p.url]
	p.mu.Unlock()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	return doc
}

func (p *FakePage) count(selector string) int {
	p.mu.Lock()
	v, ok := p.Visible[selector]
	p.mu.Unlock()
	if ok {
		if v {
			return 1
		}
		return 0
	}
	doc := p.document()
	if doc == nil {
		return 0
	}
	return doc.Find(parseSelector(selector)).Length()
}

// parseSelector rewrites the engine's :has-text() into goquery's :contains().
func parseSelector(selector string) string {
	return strings.ReplaceAll(selector, ":has-text(", ":contains(")
}

func (p *FakePage) Goto(url string, _ browser.NavigateOptions) error {
	if err := p.record("goto:" + url); err != nil {
		return err
	}
	p.Navigate(url)
	return nil
}

func (p *FakePage) WaitForLoadState(state browser.LoadState, _ time.Duration) error {
	return p.record("waitForLoadState:" + string(state))
}

func (p *FakePage) WaitForURL(fragment string, _ time.Duration) error {
	if err := p.record("waitForURL:" + fragment); err != nil {
		return err
	}
	if !strings.Contains(p.URL(), fragment) {
		return errors.NewTimeout("fake", "url never matched "+fragment, nil)
	}
	return nil
}

func (p *FakePage) WaitVisible(selector string, _ time.Duration) error {
	if err := p.record("waitVisible:" + selector); err != nil {
		return err
	}
	if p.count(selector) == 0 {
		return errors.NewTimeout("fake", selector+" not visible", nil)
	}
	return nil
}

func (p *FakePage) Fill(selector, value string) error {
	return p.record(fmt.Sprintf("fill:%s=%s", selector, value))
}

func (p *FakePage) Press(selector, key string) error {
	if err := p.record(fmt.Sprintf("press:%s=%s", selector, key)); err != nil {
		return err
	}
	if p.OnPress != nil {
		p.OnPress(p, selector, key)
	}
	return nil
}

func (p *FakePage) Click(selector string) error {
	if err := p.record("click:" + selector); err != nil {
		return err
	}
	if p.OnClick != nil {
		p.OnClick(p, selector)
	}
	return nil
}

func (p *FakePage) SelectOption(selector, value string) error {
	return p.record(fmt.Sprintf("select:%s=%s", selector, value))
}

func (p *FakePage) IsVisible(selector string) (bool, error) {
	if err := p.record("isVisible:" + selector); err != nil {
		return false, err
	}
	return p.count(selector) > 0, nil
}

func (p *FakePage) Count(selector string) (int, error) {
	if err := p.record("count:" + selector); err != nil {
		return 0, err
	}
	return p.count(selector), nil
}

func (p *FakePage) GetAttribute(selector, name string) (string, error) {
	if err := p.record("getAttribute:" + selector + "@" + name); err != nil {
		return "", err
	}
	p.mu.Lock()
	v, ok := p.Attributes[selector+"@"+name]
	p.mu.Unlock()
	if ok {
		return v, nil
	}
	doc := p.document()
	if doc == nil {
		return "", nil
	}
	v, _ = doc.Find(parseSelector(selector)).First().Attr(name)
	return v, nil
}

func (p *FakePage) Evaluate(script string) (any, error) {
	if err := p.record("evaluate:" + script); err != nil {
		return nil, err
	}
	if p.OnEvaluate != nil {
		return p.OnEvaluate(p, script)
	}
	return nil, nil
}

func (p *FakePage) Content() (string, error) {
	if err := p.record("content"); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Routes[p.url], nil
}

func (p *FakePage) Title() (string, error) {
	doc := p.document()
	if doc == nil {
		return "", nil
	}
	return strings.TrimSpace(doc.Find("title").First().Text()), nil
}

func (p *FakePage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

// Session wraps a FakePage and counts Close calls.
type Session struct {
	page   *FakePage
	mu     sync.Mutex
	closed int
}

func (s *Session) Page() browser.Page { return s.page }

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

// Closed reports how many times Close was called.
func (s *Session) Closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Launcher hands out a fresh page from NewPage for every session.
type Launcher struct {
	NewPage func(attempt int) *FakePage
	// Err, when set, fails every NewSession call.
	Err error

	mu       sync.Mutex
	sessions []*Session
}

// NewSession implements browser.Launcher.
func (l *Launcher) NewSession(ctx context.Context) (browser.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.Err != nil {
		return nil, l.Err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	s := &Session{page: l.NewPage(len(l.sessions) + 1)}
	l.sessions = append(l.sessions, s)
	return s, nil
}

// Sessions returns every session opened so far.
func (l *Launcher) Sessions() []*Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Session(nil), l.sessions...)
}

// AllClosed reports whether every opened session was closed exactly once.
func (l *Launcher) AllClosed() bool {
	for _, s := range l.Sessions() {
		if s.Closed() != 1 {
			return false
		}
	}
	return true
}

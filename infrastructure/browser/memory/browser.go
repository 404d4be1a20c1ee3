package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"chatbot_ui_e2e/domain/entities"
	"chatbot_ui_e2e/domain/interfaces"
)

// ErrStaleElement is returned for handles whose node left the document.
var ErrStaleElement = errors.New("stale element reference")

type deferred struct {
	at int
	fn func(root *Node)
}

// Browser is an in-memory page implementing interfaces.Driver.
type Browser struct {
	mu          sync.Mutex
	root        *Node
	url         string
	popupOpen   bool
	popup       string
	queries     int
	pending     []deferred
	onNavigate  func(b *Browser, url string)
	downloadDir string
	closed      bool
}

// NewBrowser - creates an empty page whose downloads land in downloadDir
func NewBrowser(downloadDir string) *Browser {
	return &Browser{
		root:        E("body"),
		downloadDir: downloadDir,
	}
}

// OnNavigate - sets the hook that renders the page on navigation
func (b *Browser) OnNavigate(fn func(b *Browser, url string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onNavigate = fn
}

// Mutate - runs fn against the document root under the page lock
func (b *Browser) Mutate(fn func(root *Node)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b.root)
}

// AfterQueries - defers a mutation until n more page queries have run
func (b *Browser) AfterQueries(n int, fn func(root *Node)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, deferred{at: b.queries + n, fn: fn})
}

// Alert - opens a pending alert dialog
func (b *Browser) Alert(message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.popupOpen = true
	b.popup = message
}

// DismissAlert - closes the pending alert dialog
func (b *Browser) DismissAlert() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.popupOpen = false
	b.popup = ""
}

// Queries - returns how many FindElements calls the page has served
func (b *Browser) Queries() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queries
}

// Clicks - returns how many times the node was clicked
func (b *Browser) Clicks(n *Node) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return n.clicks
}

// URL - returns the last navigated URL
func (b *Browser) URL() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.url
}

// Closed - reports whether Close was called
func (b *Browser) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Navigate - replaces the document and runs the navigation hook
func (b *Browser) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	if err := b.checkLocked(); err != nil {
		b.mu.Unlock()
		return err
	}
	b.url = url
	b.root = E("body")
	b.pending = nil
	hook := b.onNavigate
	b.mu.Unlock()

	if hook != nil {
		hook(b, url)
	}
	return nil
}

// FindElements - returns attached nodes matching an attribute selector in
// document order
func (b *Browser) FindElements(ctx context.Context, selector string) ([]interfaces.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name, value, err := parseAttributeSelector(selector)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.checkLocked(); err != nil {
		return nil, err
	}

	b.queries++
	b.runDueLocked()

	var found []interfaces.Element
	b.root.walk(func(n *Node) {
		if v, ok := n.Attrs[name]; ok && v == value {
			found = append(found, &element{browser: b, node: n})
		}
	})
	return found, nil
}

// DownloadDir - returns the download directory
func (b *Browser) DownloadDir() string {
	return b.downloadDir
}

// Close - marks the page closed
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *Browser) runDueLocked() {
	kept := b.pending[:0]
	var due []deferred
	for _, d := range b.pending {
		if d.at <= b.queries {
			due = append(due, d)
		} else {
			kept = append(kept, d)
		}
	}
	b.pending = kept
	for _, d := range due {
		d.fn(b.root)
	}
}

func (b *Browser) checkLocked() error {
	if b.closed {
		return errors.New("browser has been closed")
	}
	if b.popupOpen {
		return fmt.Errorf("%w: %q", entities.ErrUnexpectedPopup, b.popup)
	}
	return nil
}

// parseAttributeSelector accepts the [name="value"] form produced by
// entities.Locator.Selector.
func parseAttributeSelector(selector string) (string, string, error) {
	if !strings.HasPrefix(selector, "[") || !strings.HasSuffix(selector, `"]`) {
		return "", "", fmt.Errorf("unsupported selector: %s", selector)
	}
	body := selector[1 : len(selector)-1]
	eq := strings.Index(body, `="`)
	if eq <= 0 {
		return "", "", fmt.Errorf("unsupported selector: %s", selector)
	}
	name := body[:eq]
	quoted := body[eq+2 : len(body)-1]

	var sb strings.Builder
	escaped := false
	for _, r := range quoted {
		if escaped {
			sb.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		sb.WriteRune(r)
	}
	return name, sb.String(), nil
}

type element struct {
	browser *Browser
	node    *Node
}

func (e *element) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.browser.checkLocked(); err != nil {
		return err
	}
	if !e.node.attachedTo(e.browser.root) {
		return ErrStaleElement
	}
	return nil
}

// FindElement - returns the first descendant with the given tag
func (e *element) FindElement(ctx context.Context, tag string) (interfaces.Element, error) {
	e.browser.mu.Lock()
	defer e.browser.mu.Unlock()

	if err := e.check(ctx); err != nil {
		return nil, err
	}

	var found *Node
	for _, c := range e.node.Children {
		c.walk(func(n *Node) {
			if found == nil && n.Tag == tag {
				found = n
			}
		})
		if found != nil {
			break
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w: <%s>", entities.ErrNoSuchElement, tag)
	}
	return &element{browser: e.browser, node: found}, nil
}

// Text - returns the rendered text
func (e *element) Text(ctx context.Context) (string, error) {
	e.browser.mu.Lock()
	defer e.browser.mu.Unlock()

	if err := e.check(ctx); err != nil {
		return "", err
	}
	if !e.node.displayed() {
		return "", nil
	}
	return e.node.renderedText(), nil
}

// Attribute - returns an attribute value
func (e *element) Attribute(ctx context.Context, name string) (string, error) {
	e.browser.mu.Lock()
	defer e.browser.mu.Unlock()

	if err := e.check(ctx); err != nil {
		return "", err
	}
	return e.node.Attrs[name], nil
}

// Click - runs the node's click handler outside the page lock
func (e *element) Click(ctx context.Context) error {
	e.browser.mu.Lock()
	if err := e.check(ctx); err != nil {
		e.browser.mu.Unlock()
		return err
	}
	if !e.node.displayed() {
		e.browser.mu.Unlock()
		return fmt.Errorf("element <%s> is not interactable", e.node.Tag)
	}
	e.node.clicks++
	handler := e.node.onClick
	e.browser.mu.Unlock()

	if handler != nil {
		handler(e.browser)
	}
	return nil
}

// IsDisplayed - reports whether the node and all its ancestors are shown
func (e *element) IsDisplayed(ctx context.Context) (bool, error) {
	e.browser.mu.Lock()
	defer e.browser.mu.Unlock()

	if err := e.check(ctx); err != nil {
		return false, err
	}
	return e.node.displayed(), nil
}

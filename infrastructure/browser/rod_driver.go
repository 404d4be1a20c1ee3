package browser

import (
	"context"
	"fmt"

	"chatbot_ui_e2e/domain/entities"
	"chatbot_ui_e2e/domain/interfaces"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/sirupsen/logrus"
)

type rodDriver struct {
	launcher    *launcher.Launcher
	browser     *rod.Browser
	page        *rod.Page
	logger      *logrus.Logger
	downloadDir string
	stopEvents  context.CancelFunc
	dialogs     dialogGuard
}

// NewRodDriver - launches Chrome through the rod launcher
func NewRodDriver(ctx context.Context, opts Options, logger *logrus.Logger) (interfaces.Driver, error) {
	l := launcher.New().
		Headless(opts.Headless).
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("window-size", "1280,720")
	if opts.ChromeBinary != "" {
		logger.Infof("Using Chrome binary at: %s", opts.ChromeBinary)
		l = l.Bin(opts.ChromeBinary)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch Chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to Chrome: %w", err)
	}

	err = proto.BrowserSetDownloadBehavior{
		Behavior:     proto.BrowserSetDownloadBehaviorBehaviorAllow,
		DownloadPath: opts.DownloadDir,
	}.Call(browser)
	if err != nil {
		browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to set download directory: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	eventCtx, stop := context.WithCancel(ctx)
	d := &rodDriver{
		launcher:    l,
		browser:     browser,
		page:        page,
		logger:      logger,
		downloadDir: opts.DownloadDir,
		stopEvents:  stop,
	}

	wait := page.Context(eventCtx).EachEvent(func(e *proto.PageJavascriptDialogOpening) {
		d.dialogs.record(e.Message)

		logger.Warnf("Dismissing unexpected %s dialog: %s", e.Type, e.Message)
		go func() {
			if err := (proto.PageHandleJavaScriptDialog{Accept: false}).Call(page); err != nil {
				logger.Warnf("Failed to dismiss dialog: %v", err)
			}
		}()
	})
	go wait()

	return d, nil
}

func (d *rodDriver) check(ctx context.Context) error {
	return d.dialogs.check(ctx)
}

// Navigate - opens a URL and waits for the load event
func (d *rodDriver) Navigate(ctx context.Context, url string) error {
	if err := d.check(ctx); err != nil {
		return err
	}

	d.logger.Infof("Navigating to: %s", url)
	page := d.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return page.WaitLoad()
}

// FindElements - returns elements matching selector without waiting
func (d *rodDriver) FindElements(ctx context.Context, selector string) ([]interfaces.Element, error) {
	if err := d.check(ctx); err != nil {
		return nil, err
	}

	found, err := d.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}

	elements := make([]interfaces.Element, 0, len(found))
	for _, el := range found {
		elements = append(elements, &rodElement{driver: d, el: el})
	}
	return elements, nil
}

// DownloadDir - returns the directory Chrome downloads into
func (d *rodDriver) DownloadDir() string {
	return d.downloadDir
}

// Close - stops event handling and closes the browser
func (d *rodDriver) Close() error {
	if d.stopEvents != nil {
		d.stopEvents()
	}
	if d.browser == nil {
		return nil
	}
	err := d.browser.Close()
	d.browser = nil
	if d.launcher != nil {
		d.launcher.Kill()
		d.launcher = nil
	}
	if err != nil && !isClosedError(err) {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

type rodElement struct {
	driver *rodDriver
	el     *rod.Element
}

// FindElement - finds the first descendant with the given tag
func (e *rodElement) FindElement(ctx context.Context, tag string) (interfaces.Element, error) {
	if err := e.driver.check(ctx); err != nil {
		return nil, err
	}

	children, err := e.el.Context(ctx).Elements(tag)
	if err != nil {
		return nil, err
	}
	if children.Empty() {
		return nil, fmt.Errorf("%w: <%s>", entities.ErrNoSuchElement, tag)
	}
	return &rodElement{driver: e.driver, el: children.First()}, nil
}

// Text - returns the rendered text
func (e *rodElement) Text(ctx context.Context) (string, error) {
	if err := e.driver.check(ctx); err != nil {
		return "", err
	}
	return e.el.Context(ctx).Text()
}

// Attribute - returns an attribute value, empty when unset
func (e *rodElement) Attribute(ctx context.Context, name string) (string, error) {
	if err := e.driver.check(ctx); err != nil {
		return "", err
	}
	value, err := e.el.Context(ctx).Attribute(name)
	if err != nil || value == nil {
		return "", err
	}
	return *value, nil
}

// Click - left clicks the element once
func (e *rodElement) Click(ctx context.Context) error {
	if err := e.driver.check(ctx); err != nil {
		return err
	}
	return e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

// IsDisplayed - checks if the element is visible
func (e *rodElement) IsDisplayed(ctx context.Context) (bool, error) {
	if err := e.driver.check(ctx); err != nil {
		return false, err
	}
	return e.el.Context(ctx).Visible()
}

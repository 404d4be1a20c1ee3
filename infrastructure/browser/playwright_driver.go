package browser

import (
	"context"
	"fmt"
	"time"

	"chatbot_ui_e2e/domain/entities"
	"chatbot_ui_e2e/domain/interfaces"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

type playwrightDriver struct {
	pw          *playwright.Playwright
	browser     playwright.Browser
	context     playwright.BrowserContext
	page        playwright.Page
	logger      *logrus.Logger
	downloadDir string
	downloads   *downloadSaver
	dialogs     dialogGuard
}

// downloadSaveTimeout bounds how long Close waits for pending saves.
const downloadSaveTimeout = 10 * time.Second

var _ artifact = playwright.Download(nil)

// NewPlaywrightDriver - launches Chromium through playwright
func NewPlaywrightDriver(opts Options, logger *logrus.Logger) (interfaces.Driver, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launchOptions := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-setuid-sandbox",
		},
	}
	if opts.ChromeBinary != "" {
		launchOptions.ExecutablePath = playwright.String(opts.ChromeBinary)
		logger.Infof("Using Chrome binary at: %s", opts.ChromeBinary)
	}

	browser, err := pw.Chromium.Launch(launchOptions)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browserContext, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  1280,
			Height: 720,
		},
		AcceptDownloads:   playwright.Bool(true),
		IgnoreHttpsErrors: playwright.Bool(true),
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := browserContext.NewPage()
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	d := &playwrightDriver{
		pw:          pw,
		browser:     browser,
		context:     browserContext,
		page:        page,
		logger:      logger,
		downloadDir: opts.DownloadDir,
		downloads:   &downloadSaver{dir: opts.DownloadDir, logger: logger},
	}

	page.OnDialog(func(dialog playwright.Dialog) {
		d.dialogs.record(dialog.Message())

		logger.Warnf("Dismissing unexpected %s dialog: %s", dialog.Type(), dialog.Message())
		if err := dialog.Dismiss(); err != nil {
			logger.Warnf("Failed to dismiss dialog: %v", err)
		}
	})

	// playwright keeps downloads in a temp dir; copy them where the suite looks
	page.OnDownload(func(download playwright.Download) {
		d.downloads.save(download)
	})

	return d, nil
}

func (d *playwrightDriver) check(ctx context.Context) error {
	return d.dialogs.check(ctx)
}

// Navigate - navigates to the specified URL
func (d *playwrightDriver) Navigate(ctx context.Context, url string) error {
	if err := d.check(ctx); err != nil {
		return err
	}

	d.logger.Infof("Navigating to: %s", url)
	_, err := d.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(30000),
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// FindElements - snapshots the handles matching selector
func (d *playwrightDriver) FindElements(ctx context.Context, selector string) ([]interfaces.Element, error) {
	if err := d.check(ctx); err != nil {
		return nil, err
	}

	handles, err := d.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, err
	}

	elements := make([]interfaces.Element, 0, len(handles))
	for _, h := range handles {
		elements = append(elements, &playwrightElement{driver: d, handle: h})
	}
	return elements, nil
}

// DownloadDir - returns the directory downloads are saved into
func (d *playwrightDriver) DownloadDir() string {
	return d.downloadDir
}

// Close - closes the context, the browser and the playwright server
func (d *playwrightDriver) Close() error {
	var closeErr error

	if !d.downloads.wait(downloadSaveTimeout) {
		d.logger.Warnf("Closing with downloads still being saved to %s", d.downloadDir)
	}

	if d.context != nil {
		if err := d.context.Close(); err != nil && !isClosedError(err) {
			closeErr = fmt.Errorf("failed to close context: %w", err)
		}
		d.context = nil
	}

	if d.browser != nil {
		if err := d.browser.Close(); err != nil && !isClosedError(err) {
			if closeErr != nil {
				closeErr = fmt.Errorf("%v; failed to close browser: %w", closeErr, err)
			} else {
				closeErr = fmt.Errorf("failed to close browser: %w", err)
			}
		}
		d.browser = nil
	}

	if d.pw != nil {
		if err := d.pw.Stop(); err != nil && closeErr == nil {
			closeErr = fmt.Errorf("failed to stop playwright: %w", err)
		}
		d.pw = nil
	}

	return closeErr
}

type playwrightElement struct {
	driver *playwrightDriver
	handle playwright.ElementHandle
}

// FindElement - finds the first descendant with the given tag
func (e *playwrightElement) FindElement(ctx context.Context, tag string) (interfaces.Element, error) {
	if err := e.driver.check(ctx); err != nil {
		return nil, err
	}

	child, err := e.handle.QuerySelector(tag)
	if err != nil {
		return nil, err
	}
	if child == nil {
		return nil, fmt.Errorf("%w: <%s>", entities.ErrNoSuchElement, tag)
	}
	return &playwrightElement{driver: e.driver, handle: child}, nil
}

// Text - returns the rendered text
func (e *playwrightElement) Text(ctx context.Context) (string, error) {
	if err := e.driver.check(ctx); err != nil {
		return "", err
	}
	return e.handle.InnerText()
}

// Attribute - returns an attribute value
func (e *playwrightElement) Attribute(ctx context.Context, name string) (string, error) {
	if err := e.driver.check(ctx); err != nil {
		return "", err
	}
	return e.handle.GetAttribute(name)
}

// Click - clicks the element
func (e *playwrightElement) Click(ctx context.Context) error {
	if err := e.driver.check(ctx); err != nil {
		return err
	}
	return e.handle.Click()
}

// IsDisplayed - checks if the element is visible
func (e *playwrightElement) IsDisplayed(ctx context.Context) (bool, error) {
	if err := e.driver.check(ctx); err != nil {
		return false, err
	}
	return e.handle.IsVisible()
}

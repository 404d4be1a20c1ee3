package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"chatbot_ui_e2e/domain/entities"
	"chatbot_ui_e2e/domain/interfaces"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
)

type SeleniumDriver struct {
	wd          selenium.WebDriver
	service     *selenium.Service
	logger      *logrus.Logger
	downloadDir string
}

// findChromeDriver - finds ChromeDriver executable path
func findChromeDriver(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit, nil
		}
	}

	commonPaths := []string{
		"/usr/local/bin/chromedriver",
		"/usr/bin/chromedriver",
		"/opt/homebrew/bin/chromedriver",
		filepath.Join(os.Getenv("HOME"), "bin", "chromedriver"),
	}

	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if path, err := exec.LookPath("chromedriver"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("chromedriver not found. Please install it or set BROWSER_DRIVER_PATH environment variable")
}

// findChromeBinary - finds Chrome/Chromium browser executable path
func findChromeBinary(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
	}

	chromePaths := []string{
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	}

	for _, path := range chromePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	return ""
}

// NewSeleniumDriver - starts chromedriver and opens a Chrome session
func NewSeleniumDriver(opts Options, logger *logrus.Logger) (*SeleniumDriver, error) {
	driverPath, err := findChromeDriver(opts.DriverPath)
	if err != nil {
		return nil, fmt.Errorf("failed to find chromedriver: %w", err)
	}
	logger.Infof("Using ChromeDriver at: %s", driverPath)

	port := opts.SeleniumPort
	if port == 0 {
		port = 9515
	}

	service, err := selenium.NewChromeDriverService(driverPath, port)
	if err != nil {
		return nil, fmt.Errorf("failed to start chromedriver: %w", err)
	}

	caps := selenium.Capabilities{
		"browserName": "chrome",
	}

	chromeCaps := chrome.Capabilities{
		Args: []string{
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--window-size=1280,720",
		},
		Prefs: map[string]interface{}{
			"download.default_directory":   opts.DownloadDir,
			"download.prompt_for_download": false,
		},
	}
	if opts.Headless {
		chromeCaps.Args = append(chromeCaps.Args, "--headless=new")
	}

	if chromeBinary := findChromeBinary(opts.ChromeBinary); chromeBinary != "" {
		logger.Infof("Using Chrome binary at: %s", chromeBinary)
		chromeCaps.Path = chromeBinary
	}

	caps.AddChrome(chromeCaps)

	wd, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d/wd/hub", port))
	if err != nil {
		service.Stop()
		if strings.Contains(err.Error(), "cannot find Chrome binary") {
			return nil, fmt.Errorf("failed to create webdriver: Chrome browser not found. Please install Google Chrome or set CHROME_BINARY_PATH environment variable. Error: %w", err)
		}
		return nil, fmt.Errorf("failed to create webdriver: %w", err)
	}

	return &SeleniumDriver{
		wd:          wd,
		service:     service,
		logger:      logger,
		downloadDir: opts.DownloadDir,
	}, nil
}

// Navigate - navigates browser to specified URL
func (s *SeleniumDriver) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Infof("Navigating to: %s", url)
	return mapSeleniumError(s.wd.Get(url))
}

// FindElements - finds all elements matching a CSS selector
func (s *SeleniumDriver) FindElements(ctx context.Context, selector string) ([]interfaces.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	found, err := s.wd.FindElements(selenium.ByCSSSelector, selector)
	if err != nil {
		err = mapSeleniumError(err)
		if errors.Is(err, entities.ErrNoSuchElement) {
			return nil, nil
		}
		return nil, err
	}

	elements := make([]interfaces.Element, 0, len(found))
	for _, el := range found {
		elements = append(elements, &seleniumElement{el: el})
	}
	return elements, nil
}

// DownloadDir - returns the directory Chrome downloads into
func (s *SeleniumDriver) DownloadDir() string {
	return s.downloadDir
}

// Close - closes browser and stops ChromeDriver service
func (s *SeleniumDriver) Close() error {
	var closeErr error
	if s.wd != nil {
		if err := s.wd.Quit(); err != nil && !isClosedError(err) {
			closeErr = fmt.Errorf("failed to quit webdriver: %w", err)
		}
		s.wd = nil
	}
	if s.service != nil {
		if err := s.service.Stop(); err != nil && closeErr == nil {
			closeErr = fmt.Errorf("failed to stop chromedriver: %w", err)
		}
		s.service = nil
	}
	return closeErr
}

type seleniumElement struct {
	el selenium.WebElement
}

// FindElement - finds the first descendant with the given tag
func (e *seleniumElement) FindElement(ctx context.Context, tag string) (interfaces.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	child, err := e.el.FindElement(selenium.ByTagName, tag)
	if err != nil {
		return nil, mapSeleniumError(err)
	}
	return &seleniumElement{el: child}, nil
}

// Text - returns the visible text
func (e *seleniumElement) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := e.el.Text()
	return text, mapSeleniumError(err)
}

// Attribute - returns an attribute value, empty when unset
func (e *seleniumElement) Attribute(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	value, err := e.el.GetAttribute(name)
	if err != nil && strings.Contains(err.Error(), "nil return value") {
		return "", nil
	}
	return value, mapSeleniumError(err)
}

// Click - clicks the element
func (e *seleniumElement) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return mapSeleniumError(e.el.Click())
}

// IsDisplayed - checks if the element is displayed
func (e *seleniumElement) IsDisplayed(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	shown, err := e.el.IsDisplayed()
	return shown, mapSeleniumError(err)
}

// mapSeleniumError - translates WebDriver error codes into domain errors
func mapSeleniumError(err error) error {
	if err == nil {
		return nil
	}

	code := err.Error()
	var wdErr *selenium.Error
	if errors.As(err, &wdErr) {
		code = wdErr.Err
	}

	switch {
	case strings.Contains(code, "no such element"):
		return fmt.Errorf("%w: %v", entities.ErrNoSuchElement, err)
	case strings.Contains(code, "unexpected alert open"):
		return fmt.Errorf("%w: %v", entities.ErrUnexpectedPopup, err)
	default:
		return err
	}
}

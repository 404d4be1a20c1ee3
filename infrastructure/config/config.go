package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"chatbot_ui_e2e/infrastructure/storage"

	"github.com/joho/godotenv"
	"github.com/mstoykov/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	DriverPlaywright = "playwright"
	DriverSelenium   = "selenium"
	DriverRod        = "rod"
	DriverMemory     = "memory" // scripted page, no browser
)

// Config holds everything the suite reads from the environment.
type Config struct {
	BaseURL         string        `envconfig:"CHATUI_BASE_URL"`
	Driver          string        `envconfig:"CHATUI_DRIVER"`
	Headless        bool          `envconfig:"CHATUI_HEADLESS"`
	DownloadDir     string        `envconfig:"CHATUI_DOWNLOAD_DIR"`
	WaitTimeout     time.Duration `envconfig:"CHATUI_WAIT_TIMEOUT"`
	PollInterval    time.Duration `envconfig:"CHATUI_POLL_INTERVAL"`
	SettleDelay     time.Duration `envconfig:"CHATUI_SETTLE_DELAY"`
	ClickPause      time.Duration `envconfig:"CHATUI_CLICK_PAUSE"`
	DownloadTimeout time.Duration `envconfig:"CHATUI_DOWNLOAD_TIMEOUT"`
	LogLevel        string        `envconfig:"CHATUI_LOG_LEVEL"`
	SeleniumPort    int           `envconfig:"CHATUI_SELENIUM_PORT"`
	DriverPath      string        `envconfig:"BROWSER_DRIVER_PATH"`
	ChromeBinary    string        `envconfig:"CHROME_BINARY_PATH"`
}

// Default - returns the configuration used when nothing is set
func Default() Config {
	return Config{
		BaseURL:         "http://localhost:3000",
		Driver:          DriverPlaywright,
		Headless:        true,
		DownloadDir:     storage.DefaultDownloadDir(),
		WaitTimeout:     5 * time.Second,
		PollInterval:    500 * time.Millisecond,
		SettleDelay:     5 * time.Second,
		ClickPause:      3 * time.Second,
		DownloadTimeout: 30 * time.Second,
		LogLevel:        "info",
		SeleniumPort:    9515,
	}
}

// Load - reads optional .env files, then overlays the environment on the
// defaults. The result is not validated so callers can apply overrides first.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}

	cfg := Default()
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}
	cfg.DownloadDir = storage.ExpandHome(cfg.DownloadDir)

	return cfg, nil
}

// Validate - checks the configuration is usable
func (c Config) Validate() error {
	var problems []string

	switch c.Driver {
	case DriverPlaywright, DriverSelenium, DriverRod, DriverMemory:
	default:
		problems = append(problems, fmt.Sprintf("unknown driver %q", c.Driver))
	}

	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("invalid base url %q", c.BaseURL))
	}

	durations := map[string]time.Duration{
		"wait timeout":     c.WaitTimeout,
		"poll interval":    c.PollInterval,
		"download timeout": c.DownloadTimeout,
	}
	for _, name := range []string{"wait timeout", "poll interval", "download timeout"} {
		if durations[name] <= 0 {
			problems = append(problems, fmt.Sprintf("%s must be positive", name))
		}
	}
	if c.SettleDelay < 0 || c.ClickPause < 0 {
		problems = append(problems, "delays must not be negative")
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("invalid log level %q", c.LogLevel))
	}

	if c.DownloadDir == "" {
		problems = append(problems, "download directory must be set")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

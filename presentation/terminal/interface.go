package terminal

import (
	"context"
	"fmt"
	"io"

	"chatbot_ui_e2e/application/settings"
	"chatbot_ui_e2e/application/suite"
	"chatbot_ui_e2e/domain/entities"
	"chatbot_ui_e2e/domain/interfaces"
	"chatbot_ui_e2e/infrastructure/browser"
	"chatbot_ui_e2e/infrastructure/config"
	"chatbot_ui_e2e/infrastructure/storage"

	"github.com/sirupsen/logrus"
)

// DriverFactory launches a browser for one session
type DriverFactory func(ctx context.Context) (interfaces.Driver, error)

type TerminalInterface struct {
	cfg       config.Config
	logger    *logrus.Logger
	reporter  *Reporter
	newDriver DriverFactory
	store     interfaces.DownloadStore
}

// NewLogger - creates the suite logger at the configured level
func NewLogger(level string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// NewTerminalInterface - wires the suite against real browsers
func NewTerminalInterface(cfg config.Config, out, logOut io.Writer) (*TerminalInterface, error) {
	logger := NewLogger(cfg.LogLevel, logOut)

	store, err := storage.NewOSDownloadStore(cfg.DownloadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize download store: %w", err)
	}

	opts := browser.OptionsFromConfig(cfg)
	newDriver := func(ctx context.Context) (interfaces.Driver, error) {
		return browser.NewDriver(ctx, cfg.Driver, opts, logger)
	}

	return newTerminalInterface(cfg, logger, NewReporter(out), newDriver, store), nil
}

func newTerminalInterface(cfg config.Config, logger *logrus.Logger, reporter *Reporter, newDriver DriverFactory, store interfaces.DownloadStore) *TerminalInterface {
	return &TerminalInterface{
		cfg:       cfg,
		logger:    logger,
		reporter:  reporter,
		newDriver: newDriver,
		store:     store,
	}
}

// openSession - launches a browser, loads the app and builds a session
func (t *TerminalInterface) openSession(ctx context.Context) (*settings.Session, error) {
	driver, err := t.newDriver(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize browser: %w", err)
	}

	if err := driver.Navigate(ctx, t.cfg.BaseURL); err != nil {
		if closeErr := driver.Close(); closeErr != nil {
			t.logger.Warnf("Failed to close browser after navigation error: %v", closeErr)
		}
		return nil, err
	}

	timeouts := settings.Timeouts{
		Settle:     t.cfg.SettleDelay,
		Wait:       t.cfg.WaitTimeout,
		ClickPause: t.cfg.ClickPause,
		Download:   t.cfg.DownloadTimeout,
	}
	return settings.NewSession(driver, t.store, t.logger, timeouts, t.cfg.PollInterval), nil
}

// Run - runs the Settings tab cases and prints the report
func (t *TerminalInterface) Run(ctx context.Context, filter string) *entities.Report {
	t.logger.Infof("Testing %s with %s driver, downloads in %s", t.cfg.BaseURL, t.cfg.Driver, t.cfg.DownloadDir)

	runner := suite.NewRunner(t.openSession, t.logger, t.reporter)
	runner.SetFilter(filter)

	report := runner.Run(ctx, settings.Cases())
	t.reporter.Summary(report)
	return report
}

package settings

import (
	"context"
	"time"

	"chatbot_ui_e2e/application/download"
	"chatbot_ui_e2e/application/locator"
	"chatbot_ui_e2e/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// Timeouts bounds every wait a scenario performs.
type Timeouts struct {
	Settle     time.Duration // pause before the first lookup while the app hydrates
	Wait       time.Duration // each explicit element wait
	ClickPause time.Duration // pause after clicks that open native dialogs
	Download   time.Duration // export artifact wait
}

// DefaultTimeouts - returns the waits the suite was tuned with
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Settle:     5 * time.Second,
		Wait:       5 * time.Second,
		ClickPause: 3 * time.Second,
		Download:   download.DefaultTimeout,
	}
}

// Session is one browser session owned by one test case.
type Session struct {
	Driver   interfaces.Driver
	Resolver *locator.Resolver
	Verifier *download.Verifier
	Logger   *logrus.Logger
	Timeouts Timeouts
	Now      func() time.Time
}

// NewSession - wires a resolver and a download verifier around the driver
func NewSession(driver interfaces.Driver, store interfaces.DownloadStore, logger *logrus.Logger, timeouts Timeouts, pollInterval time.Duration) *Session {
	return &Session{
		Driver:   driver,
		Resolver: locator.NewResolver(driver, logger, pollInterval),
		Verifier: download.NewVerifier(store, logger, download.DefaultInterval),
		Logger:   logger,
		Timeouts: timeouts,
		Now:      time.Now,
	}
}

// Close - releases the browser
func (s *Session) Close() error {
	return s.Driver.Close()
}

func (s *Session) pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

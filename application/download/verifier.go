package download

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"chatbot_ui_e2e/domain/entities"
	"chatbot_ui_e2e/domain/interfaces"

	"github.com/sirupsen/logrus"
)

const (
	DefaultInterval = time.Second
	DefaultTimeout  = 30 * time.Second
)

// ExportFileName - returns the name chatbot-ui gives a conversation export
// made at t, e.g. chatbot_ui_history_3-7.json
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("chatbot_ui_history_%d-%d.json", int(t.Month()), t.Day())
}

// Verifier polls a download store for an expected artifact.
type Verifier struct {
	store    interfaces.DownloadStore
	logger   *logrus.Logger
	interval time.Duration
}

// NewVerifier - creates new verifier checking the store once per interval
func NewVerifier(store interfaces.DownloadStore, logger *logrus.Logger, interval time.Duration) *Verifier {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Verifier{
		store:    store,
		logger:   logger,
		interval: interval,
	}
}

// WaitForFile - waits up to timeout for name to appear and returns its path
func (v *Verifier) WaitForFile(ctx context.Context, name string, timeout time.Duration) (string, error) {
	path := filepath.Join(v.store.Dir(), name)
	deadline := time.Now().Add(timeout)

	for {
		ok, err := v.store.Exists(name)
		if err != nil {
			return "", fmt.Errorf("failed to check %s: %w", path, err)
		}
		if ok {
			v.logger.Infof("Download successful! File found: %s", path)
			return path, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return "", fmt.Errorf("%w: expected file '%s' not found in %s after %s",
				entities.ErrDownloadMissing, name, v.store.Dir(), timeout)
		}

		wait := v.interval
		if remaining < wait {
			wait = remaining
		}

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("download wait canceled: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
}

package suite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"chatbot_ui_e2e/application/settings"
	"chatbot_ui_e2e/domain/entities"
	"chatbot_ui_e2e/infrastructure/browser/memory"
	"chatbot_ui_e2e/infrastructure/storage"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingListener struct {
	events []string
}

func (l *recordingListener) CaseStarted(c settings.Case) {
	l.events = append(l.events, "start "+c.Name)
}

func (l *recordingListener) CaseFinished(r entities.CaseResult) {
	l.events = append(l.events, fmt.Sprintf("finish %s %s", r.Name, r.Status))
}

type opener struct {
	pages []*memory.Browser
	err   error
}

func (o *opener) open(ctx context.Context) (*settings.Session, error) {
	if o.err != nil {
		return nil, o.err
	}
	page := memory.NewBrowser("/downloads")
	o.pages = append(o.pages, page)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store := storage.NewDownloadStore(afero.NewMemMapFs(), "/downloads")
	return settings.NewSession(page, store, logger, settings.Timeouts{Wait: 10 * time.Millisecond}, time.Millisecond), nil
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func fakeCases() []settings.Case {
	return []settings.Case{
		{Name: "test_passes", Doc: "Passes", Run: func(context.Context, *settings.Session) error {
			return nil
		}},
		{Name: "test_fails", Doc: "Fails", Run: func(context.Context, *settings.Session) error {
			return fmt.Errorf("lookup: %w", entities.ErrElementNotFound)
		}},
		{Name: "test_errors", Doc: "Errors", Run: func(context.Context, *settings.Session) error {
			return fmt.Errorf("click: %w", entities.ErrUnexpectedPopup)
		}},
		{Name: "test_panics", Doc: "Panics", Run: func(context.Context, *settings.Session) error {
			panic("boom")
		}},
	}
}

func TestRunClassifiesOutcomes(t *testing.T) {
	t.Parallel()

	o := &opener{}
	listener := &recordingListener{}
	report := NewRunner(o.open, newTestLogger(), listener).Run(context.Background(), fakeCases())

	require.Len(t, report.Results, 4)
	assert.Equal(t, entities.CaseStatusOK, report.Results[0].Status)
	assert.Equal(t, entities.CaseStatusFail, report.Results[1].Status)
	assert.ErrorIs(t, report.Results[1].Err, entities.ErrElementNotFound)
	assert.Equal(t, entities.CaseStatusError, report.Results[2].Status)
	assert.Equal(t, entities.CaseStatusError, report.Results[3].Status)
	assert.EqualError(t, report.Results[3].Err, "panic: boom")

	assert.Equal(t, 1, report.ExitCode())
	assert.Equal(t, 4, report.Ran())

	// every case gets its own session and every session is released
	require.Len(t, o.pages, 4)
	for _, p := range o.pages {
		assert.True(t, p.Closed())
	}

	assert.Equal(t, []string{
		"start test_passes", "finish test_passes ok",
		"start test_fails", "finish test_fails FAIL",
		"start test_errors", "finish test_errors ERROR",
		"start test_panics", "finish test_panics ERROR",
	}, listener.events)
}

func TestRunFilter(t *testing.T) {
	t.Parallel()

	o := &opener{}
	r := NewRunner(o.open, newTestLogger(), nil)
	r.SetFilter("fails")
	report := r.Run(context.Background(), fakeCases())

	require.Len(t, report.Results, 4)
	assert.Equal(t, entities.CaseStatusSkipped, report.Results[0].Status)
	assert.Equal(t, entities.CaseStatusFail, report.Results[1].Status)
	assert.Equal(t, 1, report.Ran())
	assert.Len(t, o.pages, 1)
}

func TestRunOpenError(t *testing.T) {
	t.Parallel()

	o := &opener{err: errors.New("chromium not installed")}
	report := NewRunner(o.open, newTestLogger(), nil).Run(context.Background(), fakeCases()[:1])

	require.Len(t, report.Results, 1)
	assert.Equal(t, entities.CaseStatusError, report.Results[0].Status)
	assert.Contains(t, report.Results[0].Err.Error(), "failed to open session: chromium not installed")
}

func TestRunCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := &opener{}
	report := NewRunner(o.open, newTestLogger(), nil).Run(ctx, fakeCases()[:2])

	for _, res := range report.Results {
		assert.Equal(t, entities.CaseStatusError, res.Status)
		assert.ErrorIs(t, res.Err, context.Canceled)
	}
	assert.Empty(t, o.pages)
}

func TestRunSettingsCasesOnScriptedPage(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	now := func() time.Time { return time.Date(2024, time.May, 1, 9, 0, 0, 0, time.Local) }

	open := func(ctx context.Context) (*settings.Session, error) {
		page := memory.NewChatUI(memory.ChatUIOptions{Fs: fs, DownloadDir: "/downloads", Now: now, RenderDelay: 1})
		if err := page.Navigate(ctx, "http://localhost:3000"); err != nil {
			return nil, err
		}
		store := storage.NewDownloadStore(fs, "/downloads")
		s := settings.NewSession(page, store, newTestLogger(), settings.Timeouts{Wait: time.Second, Download: time.Second}, time.Millisecond)
		s.Now = now
		return s, nil
	}

	report := NewRunner(open, newTestLogger(), nil).Run(context.Background(), settings.Cases())
	require.Len(t, report.Results, 5)
	for _, res := range report.Results {
		assert.Equal(t, entities.CaseStatusOK, res.Status, "%s: %v", res.Name, res.Err)
	}
	assert.Equal(t, 0, report.ExitCode())
}

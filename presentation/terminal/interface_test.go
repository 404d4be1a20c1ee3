package terminal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chatbot_ui_e2e/application/download"
	"chatbot_ui_e2e/domain/entities"
	"chatbot_ui_e2e/domain/interfaces"
	"chatbot_ui_e2e/infrastructure/browser/memory"
	"chatbot_ui_e2e/infrastructure/config"
	"chatbot_ui_e2e/infrastructure/storage"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Driver = config.DriverMemory
	cfg.DownloadDir = "/downloads"
	cfg.SettleDelay = 0
	cfg.ClickPause = 0
	cfg.WaitTimeout = time.Second
	cfg.PollInterval = time.Millisecond
	cfg.DownloadTimeout = time.Second
	return cfg
}

func TestTerminalInterfaceRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	var pages []*memory.Browser
	factory := func(ctx context.Context) (interfaces.Driver, error) {
		page := memory.NewChatUI(memory.ChatUIOptions{Fs: fs, DownloadDir: "/downloads", RenderDelay: 2})
		pages = append(pages, page)
		return page, nil
	}

	var out bytes.Buffer
	cfg := testConfig()
	ti := newTerminalInterface(cfg, NewLogger("error", io.Discard), NewReporter(&out), factory, storage.NewDownloadStore(fs, "/downloads"))

	report := ti.Run(context.Background(), "")
	require.Len(t, report.Results, 5)
	assert.Equal(t, 0, report.ExitCode(), out.String())

	require.Len(t, pages, 5)
	for _, p := range pages {
		assert.Equal(t, cfg.BaseURL, p.URL())
		assert.True(t, p.Closed())
	}

	ok, err := afero.Exists(fs, filepath.Join("/downloads", download.ExportFileName(time.Now())))
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Contains(t, out.String(), "test_settings_export_conversations (SettingsTabTests.test_settings_export_conversations)\n")
	assert.Contains(t, out.String(), "Ran 5 tests in ")
	assert.Contains(t, out.String(), "\nOK\n")
}

func TestTerminalInterfaceDriverFailure(t *testing.T) {
	factory := func(ctx context.Context) (interfaces.Driver, error) {
		return nil, errors.New("playwright not installed")
	}

	var out bytes.Buffer
	ti := newTerminalInterface(testConfig(), NewLogger("error", io.Discard), NewReporter(&out), factory,
		storage.NewDownloadStore(afero.NewMemMapFs(), "/downloads"))

	report := ti.Run(context.Background(), "import")
	assert.Equal(t, 1, report.Count(entities.CaseStatusError))
	assert.Equal(t, 4, report.Count(entities.CaseStatusSkipped))
	assert.Contains(t, out.String(), "failed to initialize browser: playwright not installed")
	assert.Contains(t, out.String(), "FAILED (errors=1, skipped=4)")
}

type unreachableDriver struct {
	*memory.Browser
}

func (d unreachableDriver) Navigate(ctx context.Context, url string) error {
	return errors.New("net::ERR_CONNECTION_REFUSED")
}

func (d unreachableDriver) Close() error {
	return errors.New("browser process already exited")
}

func TestTerminalInterfaceLogsCloseErrorAfterNavigationFailure(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	factory := func(ctx context.Context) (interfaces.Driver, error) {
		return unreachableDriver{memory.NewBrowser("/downloads")}, nil
	}

	var out bytes.Buffer
	ti := newTerminalInterface(testConfig(), logger, NewReporter(&out), factory,
		storage.NewDownloadStore(afero.NewMemMapFs(), "/downloads"))

	report := ti.Run(context.Background(), "send_feedback")
	assert.Equal(t, 1, report.Count(entities.CaseStatusError))
	assert.Contains(t, out.String(), "ERR_CONNECTION_REFUSED")

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && strings.Contains(e.Message, "browser process already exited") {
			warned = true
		}
	}
	assert.True(t, warned, "close error should be logged")
}

func TestRootCommandMemoryDriver(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CHATUI_DOWNLOAD_DIR", dir)
	t.Setenv("CHATUI_SETTLE_DELAY", "0s")
	t.Setenv("CHATUI_CLICK_PAUSE", "0s")
	t.Setenv("CHATUI_POLL_INTERVAL", "5ms")

	var out, logs bytes.Buffer
	cmd, exitCode := NewRootCommand(&out, &logs)
	cmd.SetArgs([]string{
		"--env-file", filepath.Join(dir, "missing.env"),
		"--driver", "memory",
		"--log-level", "debug",
		"-k", "export",
	})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, 0, *exitCode, out.String())
	assert.Contains(t, out.String(), "OK (skipped=4)")
	assert.Contains(t, logs.String(), "Clicking on")

	_, err := os.Stat(filepath.Join(dir, download.ExportFileName(time.Now())))
	assert.NoError(t, err)
}

func TestRootCommandRejectsInvalidConfig(t *testing.T) {
	var out bytes.Buffer
	cmd, _ := NewRootCommand(&out, io.Discard)
	cmd.SetArgs([]string{
		"--env-file", filepath.Join(t.TempDir(), "missing.env"),
		"--driver", "netscape",
	})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown driver "netscape"`)
	assert.Empty(t, out.String())
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger := NewLogger("chatty", io.Discard)
	assert.Equal(t, "info", logger.GetLevel().String())
}

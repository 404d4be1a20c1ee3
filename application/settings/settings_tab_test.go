package settings

import (
	"context"
	"io"
	"testing"
	"time"

	"chatbot_ui_e2e/application/download"
	"chatbot_ui_e2e/domain/entities"
	"chatbot_ui_e2e/infrastructure/browser/memory"
	"chatbot_ui_e2e/infrastructure/storage"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.March, 7, 14, 30, 0, 0, time.Local)

type fixture struct {
	page    *memory.Browser
	session *Session
	fs      afero.Fs
}

func newFixture(t *testing.T, opts memory.ChatUIOptions) *fixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	fs := afero.NewMemMapFs()
	opts.Fs = fs
	opts.DownloadDir = "/home/tester/Downloads"
	opts.Now = func() time.Time { return fixedNow }
	if opts.RenderDelay == 0 {
		opts.RenderDelay = 2
	}

	page := memory.NewChatUI(opts)
	require.NoError(t, page.Navigate(context.Background(), "http://localhost:3000"))

	store := storage.NewDownloadStore(fs, opts.DownloadDir)
	timeouts := Timeouts{
		Wait:     500 * time.Millisecond,
		Download: 100 * time.Millisecond,
	}
	session := NewSession(page, store, logger, timeouts, 5*time.Millisecond)
	session.Verifier = download.NewVerifier(store, logger, 5*time.Millisecond)
	session.Now = func() time.Time { return fixedNow }

	return &fixture{page: page, session: session, fs: fs}
}

func TestCasesAreNamedAfterTheirScenario(t *testing.T) {
	t.Parallel()

	names := []string{}
	for _, c := range Cases() {
		names = append(names, c.Name)
		assert.NotEmpty(t, c.Doc)
		assert.NotNil(t, c.Run)
	}
	assert.Equal(t, []string{
		"test_settings_manage_accounts",
		"test_settings_import_conversations",
		"test_settings_export_conversations",
		"test_settings_settings",
		"test_settings_send_feedback",
	}, names)
}

func TestSettingsTabCasesPass(t *testing.T) {
	t.Parallel()

	for _, c := range Cases() {
		c := c
		t.Run(c.Name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, memory.ChatUIOptions{})
			assert.NoError(t, c.Run(context.Background(), f.session))
		})
	}
}

func TestExportConversationsWritesDatedFile(t *testing.T) {
	t.Parallel()

	f := newFixture(t, memory.ChatUIOptions{})
	require.NoError(t, ExportConversations(context.Background(), f.session))

	ok, err := afero.Exists(f.fs, "/home/tester/Downloads/chatbot_ui_history_3-7.json")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExportConversationsMissingDownload(t *testing.T) {
	t.Parallel()

	f := newFixture(t, memory.ChatUIOptions{SkipExport: true})
	err := ExportConversations(context.Background(), f.session)

	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrDownloadMissing)
	assert.Contains(t, err.Error(), "chatbot_ui_history_3-7.json")
}

func TestSettingsWrongModalTitle(t *testing.T) {
	t.Parallel()

	f := newFixture(t, memory.ChatUIOptions{ModalTitle: "Preferences"})
	err := Settings(context.Background(), f.session)

	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrAssertion)
	assert.Contains(t, err.Error(), `"Preferences"`)
}

func TestSideBarSlowerThanWait(t *testing.T) {
	t.Parallel()

	f := newFixture(t, memory.ChatUIOptions{RenderDelay: 1000})
	f.session.Timeouts.Wait = 30 * time.Millisecond

	err := ManageAccounts(context.Background(), f.session)
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrElementNotFound)
	assert.Contains(t, err.Error(), "side bar buttons")
}

func TestSingleTabFailsPrecondition(t *testing.T) {
	t.Parallel()

	page := memory.NewBrowser("/downloads")
	page.Mutate(func(root *memory.Node) {
		root.Append(memory.E("button").ID("tabSelection").Attr("title", "Settings"))
	})
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store := storage.NewDownloadStore(afero.NewMemMapFs(), "/downloads")
	session := NewSession(page, store, logger, Timeouts{Wait: time.Second}, 5*time.Millisecond)

	err := SendFeedback(context.Background(), session)
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrPreconditionFailed)
}

func TestSendFeedbackDoesNotClick(t *testing.T) {
	t.Parallel()

	f := newFixture(t, memory.ChatUIOptions{})
	require.NoError(t, SendFeedback(context.Background(), f.session))

	// clicking would have raised the mail client prompt
	_, err := f.page.FindElements(context.Background(), `[id="sideBarButton"]`)
	assert.NoError(t, err)
}

func TestSessionCloseClosesDriver(t *testing.T) {
	t.Parallel()

	f := newFixture(t, memory.ChatUIOptions{})
	require.NoError(t, f.session.Close())
	assert.True(t, f.page.Closed())
}

func TestUnexpectedPopupPropagates(t *testing.T) {
	t.Parallel()

	f := newFixture(t, memory.ChatUIOptions{})
	f.page.Alert("Session expired")

	err := ManageAccounts(context.Background(), f.session)
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrUnexpectedPopup)
	assert.False(t, entities.IsFailure(err))
}

func TestDefaultTimeouts(t *testing.T) {
	t.Parallel()

	d := DefaultTimeouts()
	assert.Equal(t, 5*time.Second, d.Settle)
	assert.Equal(t, 30*time.Second, d.Download)
	assert.Equal(t, 3*time.Second, d.ClickPause)
}

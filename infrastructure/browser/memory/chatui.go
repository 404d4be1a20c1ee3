package memory

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// ChatUIOptions tweaks the scripted chatbot-ui page.
type ChatUIOptions struct {
	Fs          afero.Fs
	DownloadDir string
	Now         func() time.Time
	Logger      *logrus.Logger

	// RenderDelay is how many page queries the side bar takes to appear
	// after the Settings tab is clicked.
	RenderDelay int
	// ModalTitle overrides the settings modal heading.
	ModalTitle string
	// SkipExport makes the export button do nothing.
	SkipExport bool
}

// NewChatUI - creates a page that renders the chatbot-ui left side bar and
// its Settings tab on every navigation
func NewChatUI(opts ChatUIOptions) *Browser {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.ModalTitle == "" {
		opts.ModalTitle = "Settings"
	}

	b := NewBrowser(opts.DownloadDir)
	b.OnNavigate(func(b *Browser, url string) {
		b.Mutate(func(root *Node) {
			root.Append(E("div",
				E("button").ID("tabSelection").Attr("title", "Chats"),
				E("button").ID("tabSelection").Attr("title", "Prompts"),
				E("button").ID("tabSelection").Attr("title", "Settings").OnClick(func(b *Browser) {
					b.AfterQueries(opts.RenderDelay, func(root *Node) {
						root.Append(settingsSideBar(opts))
					})
				}),
			).ID("sideBar"))
		})
	})
	return b
}

func settingsSideBar(opts ChatUIOptions) *Node {
	button := func(label string) *Node {
		return E("button", E("svg"), E("span").Text(label)).ID("sideBarButton")
	}

	return E("div",
		// the collapse toggle shares the id but has no label
		E("button", E("svg")).ID("sideBarButton"),
		button("Manage Accounts").OnClick(func(b *Browser) {
			b.Mutate(func(root *Node) {
				root.Append(E("div", E("h2").Text("Accounts")).ID("accountModal"))
			})
		}),
		button("Import Conversations").OnClick(func(b *Browser) {
			b.Mutate(func(root *Node) {
				root.Append(E("input").ID("import-file").Attr("type", "file").Hide())
			})
		}),
		button("Export Conversations").OnClick(func(b *Browser) {
			if opts.SkipExport || opts.Fs == nil {
				return
			}
			now := opts.Now()
			name := fmt.Sprintf("chatbot_ui_history_%d-%d.json", int(now.Month()), now.Day())
			path := filepath.Join(opts.DownloadDir, name)
			if err := opts.Fs.MkdirAll(opts.DownloadDir, 0755); err != nil {
				opts.Logger.Warnf("Failed to create download directory %s: %v", opts.DownloadDir, err)
				return
			}
			if err := afero.WriteFile(opts.Fs, path, []byte(`{"version":4,"history":[],"folders":[]}`), 0644); err != nil {
				opts.Logger.Warnf("Failed to write export %s: %v", path, err)
				return
			}
			opts.Logger.Debugf("Wrote export %s", path)
		}),
		button("Settings").OnClick(func(b *Browser) {
			b.Mutate(func(root *Node) {
				root.Append(E("div", E("div").ID("modalTitle").Text(opts.ModalTitle)).ID("settingsModal"))
			})
		}),
		button("Send Feedback").OnClick(func(b *Browser) {
			b.Alert("Open mail client?")
		}),
	)
}

package settings

import (
	"context"
	"fmt"
	"strings"

	"chatbot_ui_e2e/application/download"
	"chatbot_ui_e2e/domain/entities"
)

// Case is a single named test case run against a fresh session.
type Case struct {
	Name string
	Doc  string
	Run  func(ctx context.Context, s *Session) error
}

// Cases - returns the Settings tab cases in declaration order
func Cases() []Case {
	return []Case{
		{
			Name: "test_settings_manage_accounts",
			Doc:  "Test the Manage Accounts button in the Settings tab on the Left Side Bar",
			Run:  ManageAccounts,
		},
		{
			Name: "test_settings_import_conversations",
			Doc:  "Test the Import Conversations button in the Settings tab on the Left Side Bar",
			Run:  ImportConversations,
		},
		{
			Name: "test_settings_export_conversations",
			Doc:  "Test the Export Conversations button in the Settings tab on the Left Side Bar",
			Run:  ExportConversations,
		},
		{
			Name: "test_settings_settings",
			Doc:  "Test the Settings button in the Settings tab on the Left Side Bar",
			Run:  Settings,
		},
		{
			Name: "test_settings_send_feedback",
			Doc:  "Test the Send Feedback button in the Settings tab on the Left Side Bar",
			Run:  SendFeedback,
		},
	}
}

// SettingsTab locates the left side bar tab titled "Settings".
func SettingsTab() entities.Locator {
	return entities.ByID("tabSelection").
		AtLeast(2).
		WithAttribute("title", "Settings").
		Named("'Settings' tab")
}

// SideBarButtons locates the raw set of side bar buttons.
func SideBarButtons() entities.Locator {
	return entities.ByID("sideBarButton").AtLeast(2).Named("side bar buttons")
}

// SideBarButton locates the side bar button labelled with label.
func SideBarButton(label string) entities.Locator {
	return SideBarButtons().
		WithText("span", label).
		Named(fmt.Sprintf("'%s' button", label))
}

// openSettingsTab waits for the app to settle, clicks the Settings tab and
// waits for the side bar buttons to render.
func openSettingsTab(ctx context.Context, s *Session) error {
	if err := s.pause(ctx, s.Timeouts.Settle); err != nil {
		return err
	}

	buttons := SideBarButtons()
	_, err := s.Resolver.ClickAndWait(ctx, SettingsTab(), s.Timeouts.Wait, &buttons, s.Timeouts.Wait)
	return err
}

// ManageAccounts - clicking Manage Accounts opens the account modal
func ManageAccounts(ctx context.Context, s *Session) error {
	if err := openSettingsTab(ctx, s); err != nil {
		return err
	}

	modal := entities.ByID("accountModal").Displayed().Named("account modal")
	_, err := s.Resolver.ClickAndWait(ctx, SideBarButton("Manage Accounts"), s.Timeouts.Wait, &modal, s.Timeouts.Wait)
	return err
}

// ImportConversations - clicking Import Conversations exposes the file picker
func ImportConversations(ctx context.Context, s *Session) error {
	if err := openSettingsTab(ctx, s); err != nil {
		return err
	}

	if _, err := s.Resolver.ClickAndWait(ctx, SideBarButton("Import Conversations"), s.Timeouts.Wait, nil, 0); err != nil {
		return err
	}
	if err := s.pause(ctx, s.Timeouts.ClickPause); err != nil {
		return err
	}

	// the input stays hidden behind the button, so only presence is checked
	_, err := s.Resolver.Resolve(ctx, entities.ByID("import-file").Named("import file picker"), s.Timeouts.Wait)
	return err
}

// ExportConversations - clicking Export Conversations downloads the history file
func ExportConversations(ctx context.Context, s *Session) error {
	if err := openSettingsTab(ctx, s); err != nil {
		return err
	}

	if _, err := s.Resolver.ClickAndWait(ctx, SideBarButton("Export Conversations"), s.Timeouts.Wait, nil, 0); err != nil {
		return err
	}
	if err := s.pause(ctx, s.Timeouts.ClickPause); err != nil {
		return err
	}

	name := download.ExportFileName(s.Now())
	_, err := s.Verifier.WaitForFile(ctx, name, s.Timeouts.Download)
	return err
}

// Settings - clicking Settings opens the settings modal titled "Settings"
func Settings(ctx context.Context, s *Session) error {
	if err := openSettingsTab(ctx, s); err != nil {
		return err
	}

	title := entities.ByID("modalTitle").Displayed().Named("settings modal title")
	el, err := s.Resolver.ClickAndWait(ctx, SideBarButton("Settings"), s.Timeouts.Wait, &title, s.Timeouts.Wait)
	if err != nil {
		return err
	}

	text, err := el.Text(ctx)
	if err != nil {
		return fmt.Errorf("failed to read modal title: %w", err)
	}
	if got := strings.TrimSpace(text); got != "Settings" {
		return fmt.Errorf("%w: modal title should be 'Settings', got %q", entities.ErrAssertion, got)
	}
	return nil
}

// SendFeedback - the Send Feedback button is present. It is not clicked
// because it hands off to the system mail client.
func SendFeedback(ctx context.Context, s *Session) error {
	if err := openSettingsTab(ctx, s); err != nil {
		return err
	}

	_, err := s.Resolver.Resolve(ctx, SideBarButton("Send Feedback"), s.Timeouts.Wait)
	return err
}

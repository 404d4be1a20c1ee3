package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"chatbot_ui_e2e/infrastructure/config"

	"github.com/spf13/cobra"
)

type rootCmd struct {
	envFile  string
	driver   string
	baseURL  string
	headless bool
	run      string
	logLevel string

	exitCode int
}

// NewRootCommand - builds the chatui-e2e command writing the report to out
// and logs to logOut
func NewRootCommand(out, logOut io.Writer) (*cobra.Command, *int) {
	c := &rootCmd{}

	cmd := &cobra.Command{
		Use:   "chatui-e2e",
		Short: "Run the chatbot-ui Settings tab end-to-end tests",
		Long: `Drive a browser through the chatbot-ui Settings tab: Manage Accounts,
Import/Export Conversations, Settings and Send Feedback.

Configuration is read from .env and CHATUI_* environment variables; flags win.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runE(cmd, out, logOut)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&c.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	flags.StringVar(&c.driver, "driver", "", "browser driver: playwright, selenium, rod or memory")
	flags.StringVar(&c.baseURL, "base-url", "", "URL of the chatbot-ui instance under test")
	flags.BoolVar(&c.headless, "headless", true, "run the browser without a window")
	flags.StringVarP(&c.run, "run", "k", "", "only run cases whose name contains this string")
	flags.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	return cmd, &c.exitCode
}

func (c *rootCmd) runE(cmd *cobra.Command, out, logOut io.Writer) error {
	cfg, err := config.Load(c.envFile)
	if err != nil {
		return err
	}

	if c.driver != "" {
		cfg.Driver = c.driver
	}
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	if cmd.Flags().Changed("headless") {
		cfg.Headless = c.headless
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ti, err := NewTerminalInterface(cfg, out, logOut)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report := ti.Run(ctx, c.run)
	c.exitCode = report.ExitCode()
	return nil
}

// Execute - runs the command line and returns the process exit code
func Execute() int {
	cmd, exitCode := NewRootCommand(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return *exitCode
}

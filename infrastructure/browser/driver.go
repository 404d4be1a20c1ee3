package browser

import (
	"context"
	"fmt"
	"strings"

	"chatbot_ui_e2e/domain/interfaces"
	"chatbot_ui_e2e/infrastructure/browser/memory"
	"chatbot_ui_e2e/infrastructure/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Options configures how a browser is launched
type Options struct {
	Headless     bool
	DownloadDir  string
	DriverPath   string
	ChromeBinary string
	SeleniumPort int
}

// OptionsFromConfig - extracts launch options from the suite configuration
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Headless:     cfg.Headless,
		DownloadDir:  cfg.DownloadDir,
		DriverPath:   cfg.DriverPath,
		ChromeBinary: cfg.ChromeBinary,
		SeleniumPort: cfg.SeleniumPort,
	}
}

// NewDriver - launches the named browser driver
func NewDriver(ctx context.Context, name string, opts Options, logger *logrus.Logger) (interfaces.Driver, error) {
	logger.Infof("Launching %s browser (headless: %v)", name, opts.Headless)

	switch name {
	case config.DriverPlaywright:
		return NewPlaywrightDriver(opts, logger)
	case config.DriverSelenium:
		d, err := NewSeleniumDriver(opts, logger)
		if err != nil {
			return nil, err
		}
		return d, nil
	case config.DriverRod:
		return NewRodDriver(ctx, opts, logger)
	case config.DriverMemory:
		return memory.NewChatUI(memory.ChatUIOptions{
			Fs:          afero.NewOsFs(),
			DownloadDir: opts.DownloadDir,
			Logger:      logger,
		}), nil
	default:
		return nil, fmt.Errorf("unknown browser driver: %s", name)
	}
}

// isClosedError - reports whether err only says the target is already gone
func isClosedError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "closed") || strings.Contains(err.Error(), "target closed"))
}

package browser

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"chatbot_ui_e2e/domain/entities"

	"github.com/sirupsen/logrus"
)

// dialogGuard remembers that a native dialog opened, even one with an
// empty message, so every later call reports it.
type dialogGuard struct {
	mu      sync.Mutex
	open    bool
	message string
}

// record - marks a dialog as seen
func (g *dialogGuard) record(message string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open = true
	g.message = message
}

// check - fails once a dialog has been seen or ctx is done
func (g *dialogGuard) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.open {
		return fmt.Errorf("%w: %q", entities.ErrUnexpectedPopup, g.message)
	}
	return nil
}

// artifact is the part of a playwright download the driver uses.
type artifact interface {
	SuggestedFilename() string
	SaveAs(path string) error
}

// downloadSaver copies finished downloads into the download directory.
// Saves run off the event goroutine: playwright delivers the SaveAs reply
// on the same goroutine that emits the download event.
type downloadSaver struct {
	dir    string
	logger *logrus.Logger
	wg     sync.WaitGroup
}

// save - starts copying a into the download directory and returns at once
func (s *downloadSaver) save(a artifact) {
	target := filepath.Join(s.dir, a.SuggestedFilename())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := a.SaveAs(target); err != nil {
			s.logger.Warnf("Failed to save download %s: %v", target, err)
			return
		}
		s.logger.Infof("Saved download to: %s", target)
	}()
}

// wait - blocks until pending saves finish or timeout passes. Reports
// whether all saves finished.
func (s *downloadSaver) wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

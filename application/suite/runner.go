package suite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chatbot_ui_e2e/application/settings"
	"chatbot_ui_e2e/domain/entities"

	"github.com/sirupsen/logrus"
)

// OpenFunc acquires a fresh session for one case. The session is navigated
// to the application and ready for lookups.
type OpenFunc func(ctx context.Context) (*settings.Session, error)

// Listener observes case progress.
type Listener interface {
	CaseStarted(c settings.Case)
	CaseFinished(result entities.CaseResult)
}

type Runner struct {
	open     OpenFunc
	logger   *logrus.Logger
	listener Listener
	filter   string
}

// NewRunner - creates new sequential case runner
func NewRunner(open OpenFunc, logger *logrus.Logger, listener Listener) *Runner {
	return &Runner{
		open:     open,
		logger:   logger,
		listener: listener,
	}
}

// SetFilter - only cases whose name contains filter will run
func (r *Runner) SetFilter(filter string) {
	r.filter = filter
}

// Run - runs the cases one after another, each in its own session
func (r *Runner) Run(ctx context.Context, cases []settings.Case) *entities.Report {
	report := &entities.Report{}
	start := time.Now()

	for _, c := range cases {
		if r.filter != "" && !strings.Contains(c.Name, r.filter) {
			report.Results = append(report.Results, entities.CaseResult{
				Name:   c.Name,
				Doc:    c.Doc,
				Status: entities.CaseStatusSkipped,
			})
			continue
		}

		if r.listener != nil {
			r.listener.CaseStarted(c)
		}

		result := r.runCase(ctx, c)
		report.Results = append(report.Results, result)

		if r.listener != nil {
			r.listener.CaseFinished(result)
		}
	}

	report.Duration = time.Since(start)
	return report
}

// runCase - executes single case between session setup and teardown
func (r *Runner) runCase(ctx context.Context, c settings.Case) (result entities.CaseResult) {
	result = entities.CaseResult{Name: c.Name, Doc: c.Doc}
	start := time.Now()

	defer func() {
		if p := recover(); p != nil {
			result.Status = entities.CaseStatusError
			result.Err = fmt.Errorf("panic: %v", p)
		}
		result.Duration = time.Since(start)
	}()

	if err := ctx.Err(); err != nil {
		result.Status = entities.CaseStatusError
		result.Err = fmt.Errorf("run canceled: %w", err)
		return result
	}

	r.logger.Infof("Running %s", c.Name)

	session, err := r.open(ctx)
	if err != nil {
		result.Status = entities.CaseStatusError
		result.Err = fmt.Errorf("failed to open session: %w", err)
		return result
	}
	defer func() {
		if err := session.Close(); err != nil {
			r.logger.Warnf("Failed to close session for %s: %v", c.Name, err)
		}
	}()

	err = c.Run(ctx, session)
	switch {
	case err == nil:
		result.Status = entities.CaseStatusOK
	case entities.IsFailure(err):
		result.Status = entities.CaseStatusFail
		result.Err = err
	default:
		result.Status = entities.CaseStatusError
		result.Err = err
	}

	if result.Err != nil {
		r.logger.Warnf("%s %s: %v", c.Name, result.Status, result.Err)
	}
	return result
}

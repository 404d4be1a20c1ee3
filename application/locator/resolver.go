package locator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chatbot_ui_e2e/domain/entities"
	"chatbot_ui_e2e/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// DefaultPollInterval matches the Selenium WebDriverWait poll frequency.
const DefaultPollInterval = 500 * time.Millisecond

// Resolver turns locators into live element handles by polling the page.
type Resolver struct {
	driver   interfaces.Driver
	logger   *logrus.Logger
	interval time.Duration
}

// NewResolver - creates new resolver polling the driver at the given interval
func NewResolver(driver interfaces.Driver, logger *logrus.Logger, interval time.Duration) *Resolver {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Resolver{
		driver:   driver,
		logger:   logger,
		interval: interval,
	}
}

// Resolve - waits up to timeout for the locator to match and returns the
// first matching element in document order
func (r *Resolver) Resolve(ctx context.Context, loc entities.Locator, timeout time.Duration) (interfaces.Element, error) {
	var found interfaces.Element

	err := r.poll(ctx, loc, "resolve", timeout, func(raw []interfaces.Element) (bool, error) {
		candidate, err := r.refine(ctx, loc, raw)
		if err != nil {
			return false, err
		}
		if candidate == nil {
			r.logger.Debugf("None of %d candidates for %s match yet", len(raw), loc)
			return false, nil
		}

		if loc.Visible {
			shown, err := candidate.IsDisplayed(ctx)
			if err != nil {
				return false, fmt.Errorf("failed to check visibility: %w", err)
			}
			if !shown {
				r.logger.Debugf("%s matched but is not displayed yet", loc)
				return false, nil
			}
		}

		found = candidate
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debugf("Resolved %s", loc)
	return found, nil
}

// ResolveAll - waits up to timeout for at least one raw match and returns
// all of them, ignoring any refinement
func (r *Resolver) ResolveAll(ctx context.Context, loc entities.Locator, timeout time.Duration) ([]interfaces.Element, error) {
	var all []interfaces.Element

	err := r.poll(ctx, loc, "resolve all", timeout, func(raw []interfaces.Element) (bool, error) {
		all = raw
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// poll queries the raw selector until accept reports done or the timeout
// elapses. The MinCount precondition is checked once, on the first
// non-empty raw match set.
func (r *Resolver) poll(ctx context.Context, loc entities.Locator, op string, timeout time.Duration, accept func([]interfaces.Element) (bool, error)) error {
	selector := loc.Selector()
	deadline := time.Now().Add(timeout)
	checked := false
	count := 0

	for attempt := 1; ; attempt++ {
		raw, err := r.driver.FindElements(ctx, selector)
		if err != nil {
			return &entities.LocatorError{Locator: loc, Op: op, Count: count, Err: fmt.Errorf("failed to query %s: %w", selector, err)}
		}
		count = len(raw)
		r.logger.Debugf("Attempt %d for %s: %d raw matches", attempt, loc, count)

		if count > 0 {
			if !checked && loc.MinCount > 0 && count < loc.MinCount {
				return &entities.LocatorError{
					Locator: loc,
					Op:      op,
					Count:   count,
					Err:     fmt.Errorf("%w: expected at least %d matches for %s", entities.ErrPreconditionFailed, loc.MinCount, selector),
				}
			}
			checked = true

			done, err := accept(raw)
			if err != nil {
				return &entities.LocatorError{Locator: loc, Op: op, Count: count, Err: err}
			}
			if done {
				return nil
			}
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return &entities.LocatorError{
				Locator: loc,
				Op:      op,
				Count:   count,
				Err:     fmt.Errorf("%w after %s", entities.ErrElementNotFound, timeout),
			}
		}

		wait := r.interval
		if remaining < wait {
			wait = remaining
		}

		select {
		case <-ctx.Done():
			return &entities.LocatorError{Locator: loc, Op: op, Count: count, Err: fmt.Errorf("wait canceled: %w", ctx.Err())}
		case <-time.After(wait):
		}
	}
}

// refine scans candidates in order and returns the first one the
// refinement accepts, or nil when none does. Candidates with the inspected
// descendant missing are skipped.
func (r *Resolver) refine(ctx context.Context, loc entities.Locator, candidates []interfaces.Element) (interfaces.Element, error) {
	if loc.Refine == nil {
		return candidates[0], nil
	}

	for i, candidate := range candidates {
		result, err := Evaluate(ctx, *loc.Refine, candidate)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate candidate %d: %w", i, err)
		}
		if result == entities.Absent {
			r.logger.Debugf("Candidate %d for %s has no <%s>, skipping", i, loc, loc.Refine.Tag)
		}
		if result == entities.Match {
			return candidate, nil
		}
	}
	return nil, nil
}

// Evaluate - applies a refinement to a single candidate
func Evaluate(ctx context.Context, ref entities.Refinement, candidate interfaces.Element) (entities.MatchResult, error) {
	if ref.Tag != "" {
		child, err := candidate.FindElement(ctx, ref.Tag)
		if errors.Is(err, entities.ErrNoSuchElement) {
			return entities.Absent, nil
		}
		if err != nil {
			return entities.NoMatch, err
		}

		text, err := child.Text(ctx)
		if err != nil {
			return entities.NoMatch, err
		}
		return ref.MatchesText(text), nil
	}

	value, err := candidate.Attribute(ctx, ref.Attribute)
	if err != nil {
		return entities.NoMatch, err
	}
	if value == ref.Value {
		return entities.Match, nil
	}
	return entities.NoMatch, nil
}

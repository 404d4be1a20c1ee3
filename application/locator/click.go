package locator

import (
	"context"
	"fmt"
	"time"

	"chatbot_ui_e2e/domain/entities"
	"chatbot_ui_e2e/domain/interfaces"
)

// ClickAndWait - resolves target, clicks it, then waits for expect with its
// own timeout. The two waits never share a budget. Returns the expected
// element, or nil when expect is nil.
func (r *Resolver) ClickAndWait(ctx context.Context, target entities.Locator, timeout time.Duration, expect *entities.Locator, expectTimeout time.Duration) (interfaces.Element, error) {
	el, err := r.Resolve(ctx, target, timeout)
	if err != nil {
		return nil, err
	}

	r.logger.Infof("Clicking on: %s", target)
	if err := el.Click(ctx); err != nil {
		return nil, fmt.Errorf("failed to click %s: %w", target, err)
	}

	if expect == nil {
		return nil, nil
	}

	shown, err := r.Resolve(ctx, *expect, expectTimeout)
	if err != nil {
		return nil, err
	}
	r.logger.Infof("%s appeared after clicking %s", *expect, target)
	return shown, nil
}

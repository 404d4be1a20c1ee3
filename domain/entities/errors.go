package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrElementNotFound - no element satisfied the locator within the timeout
	ErrElementNotFound = errors.New("element not found")

	// ErrPreconditionFailed - the expected page structure is absent
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrUnexpectedPopup - an alert dialog appeared when none was expected
	ErrUnexpectedPopup = errors.New("unexpected popup")

	// ErrNoSuchElement - a driver lookup inside an element found nothing
	ErrNoSuchElement = errors.New("no such element")

	// ErrDownloadMissing - the export artifact never appeared
	ErrDownloadMissing = errors.New("download missing")

	// ErrAssertion - a scenario check on a resolved element did not hold
	ErrAssertion = errors.New("assertion failed")
)

// LocatorError carries the locator and the raw match count observed when a
// resolution failed.
type LocatorError struct {
	Locator Locator
	Op      string
	Count   int
	Err     error
}

func (e *LocatorError) Error() string {
	return fmt.Sprintf("%s %s: %v (raw matches: %d)", e.Op, e.Locator, e.Err, e.Count)
}

func (e *LocatorError) Unwrap() error {
	return e.Err
}

// IsFailure - reports whether err is an assertion-style failure rather than
// an infrastructure error
func IsFailure(err error) bool {
	return errors.Is(err, ErrElementNotFound) ||
		errors.Is(err, ErrPreconditionFailed) ||
		errors.Is(err, ErrDownloadMissing) ||
		errors.Is(err, ErrAssertion)
}

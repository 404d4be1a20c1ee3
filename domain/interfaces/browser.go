package interfaces

import "context"

// Driver defines the browser automation operations the suite consumes
type Driver interface {
	// Navigate navigates to a URL
	Navigate(ctx context.Context, url string) error

	// FindElements returns every element matching a CSS selector, in document order.
	// It does not wait.
	FindElements(ctx context.Context, selector string) ([]Element, error)

	// DownloadDir returns the directory downloads are saved into
	DownloadDir() string

	// Close closes the browser
	Close() error
}

// Element is a handle to a DOM node at the moment it was found. It is not
// valid across navigation or re-render.
type Element interface {
	// FindElement finds the first descendant with the given tag name.
	// Returns entities.ErrNoSuchElement when there is none.
	FindElement(ctx context.Context, tag string) (Element, error)

	// Text returns the rendered text of the element
	Text(ctx context.Context) (string, error)

	// Attribute returns an attribute value, empty when unset
	Attribute(ctx context.Context, name string) (string, error)

	// Click clicks the element
	Click(ctx context.Context) error

	// IsDisplayed checks if the element is visible
	IsDisplayed(ctx context.Context) (bool, error)
}

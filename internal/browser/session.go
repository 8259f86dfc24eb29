// Package browser wraps the browser-automation engine behind a small
// capability interface: navigate, wait for an element, fill and click form
// controls, and read the page's cookie jar and web storage. Everything above
// this interface is testable without a live browser.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrNavigationTimeout is returned by WaitNavigation when no page-level
// navigation was observed within the deadline. Callers treat this as
// best-effort: some portals authenticate via in-page state change only.
var ErrNavigationTimeout = errors.New("navigation wait timed out")

// Session is a single authenticated browser page
//
//go:generate mockgen -source=session.go -destination=../mocks/browser.go -package=mocks -mock_names=Session=MockSession,Launcher=MockLauncher
type Session interface {
	// Navigate loads the given URL and waits for the document to be ready
	Navigate(ctx context.Context, url string) error

	// WaitVisible blocks until the selector matches a visible element or the
	// timeout elapses
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error

	// Fill clears the matched field and types the value into it
	Fill(ctx context.Context, selector, value string) error

	// Click dispatches a click on the first element matching the selector
	Click(ctx context.Context, selector string) error

	// WaitNavigation blocks until the page location changes or the timeout
	// elapses, returning ErrNavigationTimeout in the latter case
	WaitNavigation(ctx context.Context, timeout time.Duration) error

	// Cookies returns the page's cookies as a name->value map
	Cookies(ctx context.Context) (map[string]string, error)

	// LocalStorage returns the page-local persistent key/value store
	LocalStorage(ctx context.Context) (map[string]string, error)

	// SessionStorage returns the session-scoped key/value store
	SessionStorage(ctx context.Context) (map[string]string, error)

	// Location returns the page's current URL
	Location(ctx context.Context) (string, error)

	// Close tears down the page and its browser process
	Close() error
}

// Launcher creates a fresh browser session for each pipeline run
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}

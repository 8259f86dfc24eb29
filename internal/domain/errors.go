package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoToken is returned when no bearer token can be recovered from the
	// authenticated browser session
	ErrNoToken = errors.New("no authentication token found")

	// ErrWorkerBusy is returned when the pipeline worker backlog is full
	ErrWorkerBusy = errors.New("pipeline worker backlog is full")
)

// ResolutionError is returned when none of the candidate selectors for a login
// form element resolved on the live page. It is fatal for the login attempt;
// retrying with the same candidate list is assumed useless.
type ResolutionError struct {
	// Role identifies which form element could not be found (email, password, submit)
	Role string
	// Attempted lists every selector that was probed, in priority order
	Attempted []string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("no %s element resolved, tried: %s", e.Role, strings.Join(e.Attempted, ", "))
}

// FetchError is returned when the portal API responds with a non-2xx status.
// The body is carried for logging; the run aborts without retry.
type FetchError struct {
	Status int
	Body   string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("production fetch failed with status %d: %s", e.Status, e.Body)
}

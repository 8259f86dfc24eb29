package portal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/adc-dairy/milkroom/internal/browser"
	"github.com/adc-dairy/milkroom/internal/logger"
)

// navigationWait bounds the post-submit wait for a page-level navigation.
// Timing out here is not a failure: the portal may authenticate via an
// in-page state change without navigating.
const navigationWait = 15 * time.Second

// LoginForm holds the selectors resolved for the three login controls
type LoginForm struct {
	Email    string
	Password string
	Submit   string
}

// ResolveLoginForm locates the email field, password field and submit control
// on the current page. Any unresolvable control fails the login attempt.
func ResolveLoginForm(ctx context.Context, session browser.Session, probeTimeout time.Duration) (*LoginForm, error) {
	email, err := ResolveFirst(ctx, session, "email field", EmailSelectors, probeTimeout)
	if err != nil {
		return nil, err
	}

	password, err := ResolveFirst(ctx, session, "password field", PasswordSelectors, probeTimeout)
	if err != nil {
		return nil, err
	}

	submit, err := ResolveFirst(ctx, session, "submit control", SubmitSelectors, probeTimeout)
	if err != nil {
		return nil, err
	}

	return &LoginForm{Email: email, Password: password, Submit: submit}, nil
}

// SubmitCredentials fills the resolved form, activates the submit control and
// waits (best-effort) for a navigation. The caller proceeds to token
// discovery regardless of whether a navigation was observed.
func SubmitCredentials(ctx context.Context, session browser.Session, form *LoginForm, email, password string) error {
	if err := session.Fill(ctx, form.Email, email); err != nil {
		return fmt.Errorf("failed to fill email field: %w", err)
	}
	if err := session.Fill(ctx, form.Password, password); err != nil {
		return fmt.Errorf("failed to fill password field: %w", err)
	}
	if err := session.Click(ctx, form.Submit); err != nil {
		return fmt.Errorf("failed to activate submit control: %w", err)
	}

	logger.Info("login submitted, waiting for authentication")

	if err := session.WaitNavigation(ctx, navigationWait); err != nil {
		if !errors.Is(err, browser.ErrNavigationTimeout) {
			return fmt.Errorf("failed waiting for navigation: %w", err)
		}
		logger.Info("no navigation detected, checking current state")
	}

	if location, err := session.Location(ctx); err == nil {
		logger.Info("post-login location", zap.String("url", location))
	}

	return nil
}

// Package portal implements the extraction core against the dairy
// cooperative's web portal: login-form discovery, credential submission,
// bearer-token recovery from the authenticated session, the windowed
// production fetch, and payload normalization.
package portal

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/adc-dairy/milkroom/internal/browser"
	"github.com/adc-dairy/milkroom/internal/domain"
	"github.com/adc-dairy/milkroom/internal/logger"
)

// DefaultProbeTimeout bounds each individual selector probe
const DefaultProbeTimeout = 2 * time.Second

// Candidate selector lists for the login form, most specific first. The
// portal is a SPA whose markup shifts between releases; list order is the
// fallback priority.
var (
	EmailSelectors = []string{
		`input[type="email"]`,
		`input[name="email"]`,
		`input[name="username"]`,
		`input[placeholder*="email" i]`,
		`#email`,
		`#username`,
	}

	PasswordSelectors = []string{
		`input[type="password"]`,
		`input[name="password"]`,
		`#password`,
	}

	SubmitSelectors = []string{
		`button[type="submit"]`,
		`input[type="submit"]`,
	}
)

// ResolveFirst probes each candidate selector in order and returns the first
// one that resolves to a visible element within the per-probe timeout. When
// none resolve it returns a ResolutionError carrying the attempted list;
// retrying with the same list is pointless, so callers treat that as fatal
// for the login attempt.
func ResolveFirst(ctx context.Context, session browser.Session, role string, candidates []string, probeTimeout time.Duration) (string, error) {
	for _, selector := range candidates {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := session.WaitVisible(ctx, selector, probeTimeout); err != nil {
			logger.Debug("selector did not resolve",
				zap.String("role", role),
				zap.String("selector", selector),
			)
			continue
		}
		logger.Debug("selector resolved",
			zap.String("role", role),
			zap.String("selector", selector),
		)
		return selector, nil
	}

	return "", &domain.ResolutionError{Role: role, Attempted: candidates}
}

package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"

	"github.com/adc-dairy/milkroom/internal/config"
)

const storageDumpScript = `(() => {
	const items = {};
	for (let i = 0; i < %s.length; i++) {
		const key = %s.key(i);
		items[key] = %s.getItem(key);
	}
	return items;
})()`

// ChromeLauncher launches headless Chrome sessions via the DevTools protocol
type ChromeLauncher struct {
	cfg config.BrowserConfig
}

// NewChromeLauncher creates a launcher from browser configuration
func NewChromeLauncher(cfg config.BrowserConfig) *ChromeLauncher {
	return &ChromeLauncher{cfg: cfg}
}

// Launch starts a browser process and opens a fresh page. The session lives
// until Close; the parent context cancels the whole browser.
func (l *ChromeLauncher) Launch(ctx context.Context) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.cfg.Headless),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-first-run", true),
	)
	if l.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(l.cfg.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	pageCtx, pageCancel := chromedp.NewContext(allocCtx)

	// Force the browser process to start now so launch failures surface here
	// instead of on the first navigation
	if err := chromedp.Run(pageCtx); err != nil {
		pageCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return &chromeSession{
		ctx:         pageCtx,
		pageCancel:  pageCancel,
		allocCancel: allocCancel,
	}, nil
}

type chromeSession struct {
	ctx         context.Context
	pageCancel  context.CancelFunc
	allocCancel context.CancelFunc
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := chromedp.Run(s.ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (s *chromeSession) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	waitCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	return chromedp.Run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (s *chromeSession) Fill(ctx context.Context, selector, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// Clear first so a browser-restored value is overwritten, not appended to
	if err := chromedp.Run(s.ctx,
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("failed to fill %s: %w", selector, err)
	}
	return nil
}

func (s *chromeSession) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := chromedp.Run(s.ctx, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to click %s: %w", selector, err)
	}
	return nil
}

func (s *chromeSession) WaitNavigation(ctx context.Context, timeout time.Duration) error {
	start, err := s.Location(ctx)
	if err != nil {
		return err
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		current, err := s.Location(ctx)
		if err != nil {
			return err
		}
		if current != start {
			return nil
		}
		time.Sleep(250 * time.Millisecond)
	}

	return ErrNavigationTimeout
}

func (s *chromeSession) Cookies(ctx context.Context) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	jar := make(map[string]string)
	err := chromedp.Run(s.ctx, chromedp.ActionFunc(func(cdpCtx context.Context) error {
		cookies, err := storage.GetCookies().Do(cdpCtx)
		if err != nil {
			return err
		}
		for _, c := range cookies {
			jar[c.Name] = c.Value
		}
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}
	return jar, nil
}

func (s *chromeSession) LocalStorage(ctx context.Context) (map[string]string, error) {
	return s.dumpStorage(ctx, "localStorage")
}

func (s *chromeSession) SessionStorage(ctx context.Context) (map[string]string, error) {
	return s.dumpStorage(ctx, "sessionStorage")
}

func (s *chromeSession) dumpStorage(ctx context.Context, scope string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := make(map[string]string)
	script := fmt.Sprintf(storageDumpScript, scope, scope, scope)
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(script, &items)); err != nil {
		return nil, fmt.Errorf("failed to dump %s: %w", scope, err)
	}
	return items, nil
}

func (s *chromeSession) Location(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var url string
	if err := chromedp.Run(s.ctx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return url, nil
}

func (s *chromeSession) Close() error {
	s.pageCancel()
	s.allocCancel()
	// Cancellation is asynchronous; chromedp reports teardown errors through
	// the context, which is already gone here
	if s.ctx.Err() != nil && !errors.Is(s.ctx.Err(), context.Canceled) {
		return s.ctx.Err()
	}
	return nil
}

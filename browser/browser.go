// Package browser owns the one headless browser session shared by every
// scrape in a sync run. The session is started lazily on first use and must
// be closed exactly once by the run orchestrator; Close is safe on every
// exit path, including when the browser was never started.
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"
)

const userAgent = "releaseradar/1.0"

// NewSession prepares a lazy headless session. No browser process exists
// until the first Visit.
func NewSession(logger *log.Logger, navTimeout time.Duration) *Session {
	return &Session{
		log:        logger,
		navTimeout: navTimeout,
	}
}

type Session struct {
	log        *log.Logger
	navTimeout time.Duration

	startOnce sync.Once
	closeOnce sync.Once

	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	startErr      error
}

func (s *Session) start() {
	s.startOnce.Do(func() {
		allocCtx, allocCancel := chromedp.NewExecAllocator(
			context.Background(),
			append(
				chromedp.DefaultExecAllocatorOptions[:],
				chromedp.Flag("headless", true),
				chromedp.Flag("disable-gpu", true),
				chromedp.Flag("no-sandbox", true),
				chromedp.Flag("disable-dev-shm-usage", true),
				chromedp.UserAgent(userAgent),
			)...,
		)

		browserCtx, browserCancel := chromedp.NewContext(allocCtx)

		// Launch the browser now so a broken chrome install surfaces
		// here rather than mid-navigation.
		if err := chromedp.Run(browserCtx); err != nil {
			browserCancel()
			allocCancel()
			s.startErr = fmt.Errorf("error starting headless browser: %w", err)
			return
		}

		s.browserCtx = browserCtx
		s.browserCancel = browserCancel
		s.allocCancel = allocCancel
		s.log.Info("headless browser started")
	})
}

// Visit navigates a fresh tab to the URL and returns the rendered page HTML.
// Each visit is bounded by the session's navigation timeout so one
// unresponsive page cannot stall the whole run.
func (s *Session) Visit(ctx context.Context, url string) (string, error) {
	s.start()
	if s.startErr != nil {
		return "", s.startErr
	}

	tabCtx, tabCancel := chromedp.NewContext(s.browserCtx)
	defer tabCancel()
	tabCtx, timeoutCancel := context.WithTimeout(tabCtx, s.navTimeout)
	defer timeoutCancel()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			tabCancel()
		case <-done:
		}
	}()
	defer close(done)

	var html string
	if err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	); err != nil {
		return "", fmt.Errorf("error visiting '%s': %w", url, err)
	}
	return html, nil
}

// Close tears the browser down. Safe to call more than once and when the
// session never started.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.browserCancel != nil {
			s.browserCancel()
		}
		if s.allocCancel != nil {
			s.allocCancel()
		}
		if s.browserCtx != nil {
			s.log.Info("headless browser closed")
		}
	})
}

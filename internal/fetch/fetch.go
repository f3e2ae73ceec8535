// Package fetch retrieves raw product-page markup. Most storefronts are
// served static; a few only materialize product details client side and
// need a headless browser.
package fetch

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

var logger = log.New(os.Stdout, "FETCH: ", log.LstdFlags|log.Lshortfile)

// Fetcher retrieves the raw markup of one page.
type Fetcher interface {
	Page(ctx context.Context, url string) (string, error)
}

// Static fetches over plain HTTP.
type Static struct {
	client *resty.Client
}

func NewStatic() *Static {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetHeader("User-Agent", "bean-atlas/1.0")
	return &Static{client: client}
}

func (s *Static) Page(ctx context.Context, url string) (string, error) {
	res, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if res.IsError() {
		return "", fmt.Errorf("failed to fetch %s: status %s", url, res.Status())
	}
	return res.String(), nil
}

// Rendered drives a stealth headless page for JS-heavy storefronts.
type Rendered struct {
	browser *rod.Browser
}

func NewRendered() (*Rendered, error) {
	l := launcher.New().Headless(true).NoSandbox(true)
	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	return &Rendered{browser: rod.New().ControlURL(u).MustConnect()}, nil
}

func (r *Rendered) Page(ctx context.Context, url string) (html string, err error) {
	page, err := stealth.Page(r.browser)
	if err != nil {
		return "", err
	}
	defer func() {
		if rec := recover(); rec != nil {
			logger.Printf("Panic fetching %s: %v", url, rec)
			err = fmt.Errorf("failed to render %s: %v", url, rec)
		}
		page.MustClose()
	}()

	page = page.Context(ctx).Timeout(60 * time.Second)
	err = rod.Try(func() {
		page.MustNavigate(url)
		page.MustWaitStable()
	})
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", url, err)
	}
	return page.HTML()
}

func (r *Rendered) Close() {
	r.browser.MustClose()
}

package rod

import (
	"context"
	"time"

	"github.com/fwojciec/mangawatch"
	"github.com/go-rod/rod/lib/proto"
)

// Renderer loads a page, performs actions on it and returns the resulting HTML.
type Renderer interface {
	Render(ctx context.Context, url string, actions []mangawatch.Action) (string, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, url string, actions []mangawatch.Action) (string, error)

// Render calls fn.
func (fn RendererFunc) Render(ctx context.Context, url string, actions []mangawatch.Action) (string, error) {
	return fn(ctx, url, actions)
}

var _ Renderer = (*BrowserRenderer)(nil)

// BrowserRenderer renders pages in the managed Chrome instance.
type BrowserRenderer struct {
	manager *BrowserManager
}

// NewBrowserRenderer creates a BrowserRenderer using manager's browser.
func NewBrowserRenderer(manager *BrowserManager) *BrowserRenderer {
	return &BrowserRenderer{manager: manager}
}

// Render navigates to url, waits for load and runs actions in order.
func (r *BrowserRenderer) Render(ctx context.Context, url string, actions []mangawatch.Action) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	browser := r.manager.Browser()
	if browser == nil {
		return "", mangawatch.Errorf(mangawatch.EINVALID, "browser is closed")
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()
	defer r.manager.IncrementPageCount()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	for _, a := range actions {
		switch a.Type {
		case mangawatch.ActionClick:
			el, err := page.Element(a.Selector)
			if err != nil {
				return "", err
			}
			if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
				return "", err
			}
		case mangawatch.ActionWait:
			if err := sleep(ctx, time.Duration(a.Milliseconds)*time.Millisecond); err != nil {
				return "", err
			}
		default:
			return "", mangawatch.Errorf(mangawatch.EINVALID, "unknown action type %q", a.Type)
		}
	}

	return page.HTML()
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

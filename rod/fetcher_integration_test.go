//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/mangawatch"
	"github.com/fwojciec/mangawatch/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserRenderer_RunsClickAction(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html><body>
<ul id="list"><li>Chapter 1</li><li>Chapter 2</li></ul>
<button class="bg-blue-700" onclick="var l=document.getElementById('list');l.insertBefore(l.lastElementChild,l.firstElementChild);this.textContent='sorted'">order</button>
</body></html>`))
	}))
	defer srv.Close()

	manager, err := rod.NewBrowserManager()
	require.NoError(t, err)
	defer manager.Close()

	html, err := rod.NewBrowserRenderer(manager).Render(context.Background(), srv.URL, []mangawatch.Action{
		mangawatch.ClickAction("button.bg-blue-700"),
		mangawatch.WaitAction(100),
	})

	require.NoError(t, err)
	assert.Contains(t, html, "sorted")
	assert.Regexp(t, `Chapter 2</li><li>Chapter 1`, html)
}

func TestBrowserRenderer_AfterClose_ReturnsError(t *testing.T) {
	t.Parallel()

	manager, err := rod.NewBrowserManager()
	require.NoError(t, err)
	require.NoError(t, manager.Close())
	require.NoError(t, manager.Close())

	_, err = rod.NewBrowserRenderer(manager).Render(context.Background(), "http://example.com", nil)

	require.Error(t, err)
	assert.Equal(t, mangawatch.EINVALID, mangawatch.ErrorCode(err))
}

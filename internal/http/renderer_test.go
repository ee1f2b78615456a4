package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjsce/kj-connect/internal/domain/catalog"
)

// templateFS holds a single layout plus the page and partial files the renderer expects.
func templateFS(layout string) fstest.MapFS {
	return fstest.MapFS{
		"layout.tmpl":       {Data: []byte(layout)},
		"pages/home.tmpl":   {Data: []byte(`{{define "home-content"}}home{{end}}`)},
		"partials/nav.tmpl": {Data: []byte(`{{define "nav"}}nav{{end}}`)},
	}
}

func TestNewTemplateRenderer_RequiresFS(t *testing.T) {
	_, err := NewTemplateRenderer(TemplateRendererConfig{})
	require.Error(t, err)
}

func TestNewTemplateRenderer_ParseError(t *testing.T) {
	fsys := templateFS(`{{define "layout"}}{{.Title`)
	_, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: fsys, Logger: discardLogger()})
	require.Error(t, err)
}

func TestTemplateRenderer_DefinesEveryPage(t *testing.T) {
	tr := RequireTemplateRenderer(t)
	for page, name := range ContentTemplateMap() {
		assert.NotNil(t, tr.t.Lookup(name), "page %s has no %s template", page, name)
	}
	for _, name := range []string{"layout", "error-layout", "nav", "toasts", "footer", "event-card", "exam-file-card"} {
		assert.NotNil(t, tr.t.Lookup(name), name)
	}
}

func TestTemplateRenderer_RenderFull(t *testing.T) {
	tr := RequireTemplateRenderer(t)
	r := httptest.NewRequest(http.MethodGet, "/events/1", nil)
	data := NewTemplateData(r, PageMeta{Title: "React Workshop - KJ Connect", CurrentPage: PageEventDetail}).
		With("Event", catalog.SeedEvents()[1]).
		Build()

	rec := httptest.NewRecorder()
	require.NoError(t, tr.RenderFull(rec, http.StatusOK, data))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<title>React Workshop - KJ Connect</title>")
	assert.Contains(t, body, "Organized by Developer Club")
	assert.Contains(t, body, "December 5, 2023")
	assert.Contains(t, body, "react-workshop.pdf")
	assert.Contains(t, body, "Register Now")
}

func TestTemplateRenderer_RenderErrorLayout(t *testing.T) {
	tr := RequireTemplateRenderer(t)
	rec := httptest.NewRecorder()
	require.NoError(t, tr.RenderError(rec, http.StatusServiceUnavailable, map[string]any{
		"ErrorMessage": "Catalog is unavailable",
	}))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Catalog is unavailable")
}

func TestTemplateRenderer_ExecutionErrorWritesNothing(t *testing.T) {
	fsys := templateFS(`{{define "layout"}}before{{template "missing" .}}{{end}}`)
	tr, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: fsys, Logger: discardLogger()})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.Error(t, tr.RenderFull(rec, http.StatusOK, nil))
	assert.Empty(t, rec.Body.String())
	assert.False(t, rec.Flushed)
}

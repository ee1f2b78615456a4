package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kjsce/kj-connect/internal/adapters/credentials"
	"github.com/kjsce/kj-connect/internal/adapters/memstore"
	"github.com/kjsce/kj-connect/internal/data"
	domainauth "github.com/kjsce/kj-connect/internal/domain/auth"
	"github.com/kjsce/kj-connect/internal/observability/statsd"
	"github.com/kjsce/kj-connect/internal/ports"
	"github.com/kjsce/kj-connect/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// RequireTemplateRenderer parses the on-disk templates, skipping the test when they are missing.
func RequireTemplateRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: os.DirFS(TemplatePathFromTest),
		Logger:     discardLogger(),
	})
	if err != nil {
		t.Skipf("Templates not available, skipping: %v", err)
		return nil
	}
	return tr
}

// testApp is a running router backed by in-memory storage and the demo credential table.
type testApp struct {
	server  *httptest.Server
	client  *http.Client
	storage *memstore.ClientStorage
	metrics *statsd.Recorder
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	table, err := credentials.NewTable(credentials.Config{Entries: credentials.DemoEntries(), Cost: 4})
	require.NoError(t, err)
	recorder := &statsd.Recorder{}
	catalogSvc, err := service.NewCatalogService(service.CatalogServiceOptions{
		Repo:    data.NewSeededCatalogRepo(),
		Logger:  discardLogger(),
		Metrics: recorder,
	})
	require.NoError(t, err)

	storage := memstore.NewClientStorage(16, discardLogger())
	handler, err := NewRouter(RouterServices{
		Catalog: catalogSvc,
		Storage: storage,
		NewSession: func(store ports.SessionStore, n ports.Notifier) *service.SessionManager {
			return service.NewSessionManager(service.SessionManagerOptions{
				Validator: table,
				Store:     store,
				Notifier:  n,
				Logger:    discardLogger(),
				Metrics:   recorder,
			})
		},
		Guard:      service.NewRouteGuard(service.RouteGuardOptions{}),
		Metrics:    recorder,
		Accounts:   table.Accounts(),
		DemoSecret: credentials.DemoSecret,
		TemplateFS: os.DirFS(TemplatePathFromTest),
		StaticFS:   os.DirFS("../../frontend/static"),
		Logger:     discardLogger(),
	})
	require.NoError(t, err)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testApp{server: srv, client: newTestClient(t), storage: storage, metrics: recorder}
}

// newTestClient keeps cookies like a browser tab but does not follow redirects.
func newTestClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// otherClient returns a view of the same server from a browser with no cookies.
func (a *testApp) otherClient(t *testing.T) *testApp {
	t.Helper()
	return &testApp{server: a.server, client: newTestClient(t), storage: a.storage, metrics: a.metrics}
}

type pageResult struct {
	status int
	header http.Header
	body   string
}

func (a *testApp) do(t *testing.T, req *http.Request) pageResult {
	t.Helper()
	resp, err := a.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return pageResult{status: resp.StatusCode, header: resp.Header, body: string(body)}
}

func (a *testApp) get(t *testing.T, path string, header ...string) pageResult {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, a.server.URL+path, nil)
	require.NoError(t, err)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	return a.do(t, req)
}

// postForm submits form with the client's CSRF token, fetching one first when needed.
func (a *testApp) postForm(t *testing.T, path string, form url.Values) pageResult {
	t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set(DefaultCSRFCookieName, a.csrfToken(t))
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, a.server.URL+path,
		strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(t, req)
}

func (a *testApp) csrfToken(t *testing.T) string {
	t.Helper()
	if tok := a.cookie(t, DefaultCSRFCookieName); tok != "" {
		return tok
	}
	a.get(t, PathLogin)
	tok := a.cookie(t, DefaultCSRFCookieName)
	require.NotEmpty(t, tok, "csrf cookie not issued")
	return tok
}

func (a *testApp) cookie(t *testing.T, name string) string {
	t.Helper()
	u, err := url.Parse(a.server.URL)
	require.NoError(t, err)
	for _, c := range a.client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func (a *testApp) login(t *testing.T, email string) {
	t.Helper()
	res := a.postForm(t, PathLogin, url.Values{
		"email":    {email},
		"password": {credentials.DemoSecret},
	})
	require.Equal(t, http.StatusSeeOther, res.status, res.body)
	require.Equal(t, PathHome, res.header.Get("Location"))
}

// withIdentity returns a request whose client scope is logged in as identity.
func withIdentity(t *testing.T, r *http.Request, identity *domainauth.Identity) (*http.Request, *memstore.Queue) {
	t.Helper()
	queue := memstore.NewQueue(16, discardLogger())
	store := memstore.NewSessionStore()
	if identity != nil {
		record, err := domainauth.EncodeRecord(*identity)
		require.NoError(t, err)
		require.NoError(t, store.Set(r.Context(), service.DefaultSessionKey, record))
	}
	manager := service.NewSessionManager(service.SessionManagerOptions{Store: store, Notifier: queue, Logger: discardLogger()})
	manager.Initialize(r.Context())
	ctx := SetClientScopeInContext(r.Context(), &ClientScope{
		ClientID:      "11111111-1111-1111-1111-111111111111",
		Session:       manager,
		Notifications: queue,
	})
	return r.WithContext(ctx), queue
}

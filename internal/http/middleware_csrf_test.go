package httpx

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCSRFToken = "tok-123"

func csrfHandler(seen *string) http.Handler {
	return CSRFProtection(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = GetCSRFToken(r)
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestCSRFProtection_IssuesCookieOnSafeRequest(t *testing.T) {
	var token string
	rec := httptest.NewRecorder()
	csrfHandler(&token).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	c := findCookie(rec.Result().Cookies(), DefaultCSRFCookieName)
	require.NotNil(t, c)
	assert.NotEmpty(t, c.Value)
	assert.Equal(t, c.Value, token, "handlers see the token they must embed in forms")
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.False(t, c.Secure)
}

func TestCSRFProtection_ReusesExistingCookie(t *testing.T) {
	var token string
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRFToken})
	rec := httptest.NewRecorder()
	csrfHandler(&token).ServeHTTP(rec, req)

	assert.Equal(t, testCSRFToken, token)
	assert.Nil(t, findCookie(rec.Result().Cookies(), DefaultCSRFCookieName))
}

func TestCSRFProtection_SecureBehindTLSProxy(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := httptest.NewRecorder()
	csrfHandler(nil).ServeHTTP(rec, req)

	c := findCookie(rec.Result().Cookies(), DefaultCSRFCookieName)
	require.NotNil(t, c)
	assert.True(t, c.Secure)
}

func TestCSRFProtection_UnsafeMethods(t *testing.T) {
	multipartBody := func(token string) (*bytes.Buffer, string) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		_ = mw.WriteField("title", "React Workshop")
		if token != "" {
			_ = mw.WriteField(DefaultCSRFCookieName, token)
		}
		_ = mw.Close()
		return &buf, mw.FormDataContentType()
	}

	tests := []struct {
		name   string
		build  func() *http.Request
		accept string
		want   int
	}{
		{
			name: "header token matches",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/logout", nil)
				r.Header.Set(DefaultCSRFHeaderName, testCSRFToken)
				return r
			},
			want: http.StatusOK,
		},
		{
			name: "header token mismatch",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/logout", nil)
				r.Header.Set(DefaultCSRFHeaderName, "other")
				return r
			},
			want: http.StatusForbidden,
		},
		{
			name: "urlencoded form token",
			build: func() *http.Request {
				form := url.Values{"email": {"student@somaiya.edu"}, DefaultCSRFCookieName: {testCSRFToken}}
				r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
				r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				return r
			},
			want: http.StatusOK,
		},
		{
			name: "multipart form token",
			build: func() *http.Request {
				body, ct := multipartBody(testCSRFToken)
				r := httptest.NewRequest(http.MethodPost, "/post-event", body)
				r.Header.Set("Content-Type", ct)
				return r
			},
			want: http.StatusOK,
		},
		{
			name: "multipart form without token",
			build: func() *http.Request {
				body, ct := multipartBody("")
				r := httptest.NewRequest(http.MethodPost, "/post-event", body)
				r.Header.Set("Content-Type", ct)
				return r
			},
			want: http.StatusForbidden,
		},
		{
			name: "json body is never read for tokens",
			build: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"csrf_token":"tok-123"}`))
				r.Header.Set("Content-Type", "application/json")
				return r
			},
			want: http.StatusForbidden,
		},
		{
			name: "delete without token",
			build: func() *http.Request {
				return httptest.NewRequest(http.MethodDelete, "/events/1", nil)
			},
			want: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.build()
			req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRFToken})
			rec := httptest.NewRecorder()
			csrfHandler(nil).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCSRFProtection_PostWithoutCookieFails(t *testing.T) {
	form := url.Values{DefaultCSRFCookieName: {testCSRFToken}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	csrfHandler(nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCSRFProtection_JSONClientGetsJSONError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/post-event", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	csrfHandler(nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"csrf_failed","message":"CSRF token validation failed"}`, rec.Body.String())
}

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/persona"
	"github.com/layer-3/persona/adapters/store"
	"github.com/layer-3/persona/core"
	"github.com/layer-3/persona/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAudience = "https://widget.example.com"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	calls int
	resp  []byte
	err   error
}

func (f *fakeVerifier) Verify(ctx context.Context, assertion, audience string) ([]byte, error) {
	f.calls++
	return f.resp, f.err
}

func okayResponse(email string) []byte {
	raw, _ := json.Marshal(map[string]any{
		"status":  "okay",
		"email":   email,
		"expires": time.Now().Add(time.Hour).UnixMilli(),
	})
	return raw
}

func newTestRouter(t *testing.T, v *fakeVerifier) *gin.Engine {
	t.Helper()

	cfg := &persona.Config{Audience: testAudience}
	require.NoError(t, cfg.Validate())

	sessions := service.NewSessionService(store.NewMemoryStore(), v, nil, cfg.Audience, nil)
	return SetupRouter(cfg, sessions)
}

func actionRequest(action string, fields url.Values, cookies []*http.Cookie) *http.Request {
	if fields == nil {
		fields = url.Values{}
	}
	fields.Set(ActionField, action)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(fields.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(AsyncMarkerHeader, AsyncMarkerValue)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestShouldServe(t *testing.T) {
	t.Parallel()

	form := func(action string) (string, string) {
		return url.Values{ActionField: {action}}.Encode(), "application/x-www-form-urlencoded"
	}

	tests := []struct {
		name   string
		method string
		marker string
		action string
		want   bool
	}{
		{name: "login", method: http.MethodPost, marker: AsyncMarkerValue, action: "login", want: true},
		{name: "logout", method: http.MethodPost, marker: AsyncMarkerValue, action: "logout", want: true},
		{name: "no-marker", method: http.MethodPost, marker: "", action: "login", want: false},
		{name: "wrong-marker", method: http.MethodPost, marker: "fetch", action: "login", want: false},
		{name: "get", method: http.MethodGet, marker: AsyncMarkerValue, action: "login", want: false},
		{name: "capitalized-action", method: http.MethodPost, marker: AsyncMarkerValue, action: "Login", want: false},
		{name: "unknown-action", method: http.MethodPost, marker: AsyncMarkerValue, action: "delete", want: false},
		{name: "no-action", method: http.MethodPost, marker: AsyncMarkerValue, action: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := form(tt.action)
			req := httptest.NewRequest(tt.method, "/", strings.NewReader(body))
			req.Header.Set("Content-Type", contentType)
			if tt.marker != "" {
				req.Header.Set(AsyncMarkerHeader, tt.marker)
			}
			assert.Equal(t, tt.want, ShouldServe(req))
		})
	}
}

func TestDispatcher_LoginSuccess(t *testing.T) {
	t.Parallel()

	v := &fakeVerifier{resp: okayResponse("a@example.com")}
	router := newTestRouter(t, v)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, actionRequest("login", url.Values{"assertion": {"the-assertion"}}, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.Equal(t, testAudience, w.Header().Get(HeaderAudience))
	assert.Equal(t, "a@example.com", w.Header().Get(HeaderUser))

	var outcome core.Outcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outcome))
	assert.Equal(t, core.OK("a@example.com"), outcome)
}

func TestDispatcher_LoginFailure(t *testing.T) {
	t.Parallel()

	v := &fakeVerifier{resp: []byte(`{"status": "failure", "reason": "assertion has expired"}`)}
	router := newTestRouter(t, v)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, actionRequest("login", url.Values{"assertion": {"stale"}}, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testAudience, w.Header().Get(HeaderAudience))
	// no user header without a verified email
	assert.Empty(t, w.Header().Get(HeaderUser))

	var outcome core.Outcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outcome))
	assert.Equal(t, core.Failure("assertion has expired"), outcome)
}

func TestDispatcher_LoginThenLogoutRoundTrip(t *testing.T) {
	t.Parallel()

	v := &fakeVerifier{resp: okayResponse("a@example.com")}
	router := newTestRouter(t, v)

	// login establishes the session
	w := httptest.NewRecorder()
	router.ServeHTTP(w, actionRequest("login", url.Values{"assertion": {"the-assertion"}}, nil))
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	// the page now renders the signed-in state
	w = httptest.NewRecorder()
	page := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		page.AddCookie(c)
	}
	router.ServeHTTP(w, page)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "a@example.com")
	assert.Contains(t, w.Body.String(), "persona-logout")

	// logout clears it
	w = httptest.NewRecorder()
	router.ServeHTTP(w, actionRequest("logout", nil, cookies))
	require.Equal(t, http.StatusOK, w.Code)

	var outcome core.Outcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outcome))
	assert.Equal(t, core.Outcome{Status: core.StatusOK}, outcome)

	w = httptest.NewRecorder()
	page = httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		page.AddCookie(c)
	}
	router.ServeHTTP(w, page)
	assert.Contains(t, w.Body.String(), "persona-login")
	assert.NotContains(t, w.Body.String(), "persona-logout")
}

func TestDispatcher_NonMatchingRequestsFallThrough(t *testing.T) {
	t.Parallel()

	v := &fakeVerifier{}
	router := newTestRouter(t, v)

	// a POST without the async marker renders the page like any other request
	body := url.Values{ActionField: {"login"}, "assertion": {"tok"}}.Encode()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Empty(t, w.Header().Get(HeaderAudience))
	assert.Zero(t, v.calls)
}

func TestSessionMiddleware_MintsAndKeepsSessionID(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &fakeVerifier{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	// a request that already carries the cookie gets no new one
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Result().Cookies())
}

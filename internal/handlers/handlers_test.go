package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskboard/internal/constants"
	"github.com/yukikurage/taskboard/internal/kvstore"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/workspace"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, opts ...workspace.Option) (*gin.Engine, *workspace.Factory) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	factory := workspace.NewFactory(kvstore.NewMemoryProvider(), zap.NewNop(), opts...)
	Register(r, factory, zap.NewNop())
	return r, factory
}

// browser replays the profile cookie the way a browser profile would.
type browser struct {
	t       *testing.T
	router  *gin.Engine
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, router *gin.Engine) *browser {
	return &browser{t: t, router: router, cookies: make(map[string]*http.Cookie)}
}

// tab returns another client sharing this browser's profile
func (b *browser) tab() *browser {
	other := newBrowser(b.t, b.router)
	for name, c := range b.cookies {
		other.cookies[name] = c
	}
	return other
}

func (b *browser) do(method, path string, payload interface{}) *httptest.ResponseRecorder {
	b.t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(b.t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	b.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return w
}

func (b *browser) signup(name, email string, role models.Role) string {
	b.t.Helper()
	w := b.do(http.MethodPost, "/api/auth/signup", map[string]string{
		"name":     name,
		"email":    email,
		"password": "password123",
		"role":     string(role),
	})
	require.Equal(b.t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decode(b.t, w, &resp)
	return resp.User.ID
}

func (b *browser) login(email string) {
	b.t.Helper()
	w := b.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": "password123",
	})
	require.Equal(b.t, http.StatusOK, w.Code, w.Body.String())
}

func decode(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target))
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details struct {
		Redirect string `json:"redirect"`
	} `json:"details"`
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	w := newBrowser(t, router).do(http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	decode(t, w, &body)
	require.Equal(t, "ok", body["status"])
	require.Equal(t, false, body["ai_enabled"])
}

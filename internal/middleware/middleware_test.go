package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payswiftly/internal/config"
	"payswiftly/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testSessionConfig = config.SessionConfig{CookieName: "sid", TTL: time.Hour}

func TestSessions_IssuesCookieOnce(t *testing.T) {
	store := session.NewMemoryStore()
	router := gin.New()
	router.Use(Sessions(store, testSessionConfig))
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, SessionFrom(c).ID())
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, cookies[0].Value, w.Body.String())
	_, err := uuid.Parse(cookies[0].Value)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Empty(t, w.Result().Cookies())
	assert.Equal(t, cookies[0].Value, w.Body.String())
}

func TestSessions_ReplacesMalformedCookie(t *testing.T) {
	router := gin.New()
	router.Use(Sessions(session.NewMemoryStore(), testSessionConfig))
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, SessionFrom(c).ID())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "../../etc"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Len(t, w.Result().Cookies(), 1)
	assert.NotEqual(t, "../../etc", w.Body.String())
}

func TestSessionFrom_OutsideMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, SessionFrom(c))
}

// memoryLock is an in-process LockStoreInterface.
type memoryLock struct {
	mu       sync.Mutex
	held     map[string]bool
	released []string
	err      error
}

func (m *memoryLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if m.held[key] {
		return false, nil
	}
	m.held[key] = true
	return true, nil
}

func (m *memoryLock) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, key)
	m.released = append(m.released, key)
	return nil
}

func postForm(router http.Handler, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/pay", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func newGuardedRouter(locks *memoryLock) *gin.Engine {
	router := gin.New()
	router.POST("/pay", SubmitGuard(locks, func(c *gin.Context) {
		c.String(http.StatusConflict, c.Errors.Last().Error())
	}), func(c *gin.Context) {
		c.String(http.StatusOK, "sent")
	})
	return router
}

func TestSubmitGuard_RejectsWhileHeld(t *testing.T) {
	locks := &memoryLock{held: map[string]bool{"flow-1": true}}
	router := newGuardedRouter(locks)

	w := postForm(router, url.Values{"flow_id": {"flow-1"}})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "a payment request is already being submitted", w.Body.String())
	assert.Empty(t, locks.released)
}

func TestSubmitGuard_ReleasesAfterHandler(t *testing.T) {
	locks := &memoryLock{held: map[string]bool{}}
	router := newGuardedRouter(locks)

	w := postForm(router, url.Values{"flow_id": {"flow-1"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"flow-1"}, locks.released)
	assert.False(t, locks.held["flow-1"])
}

func TestSubmitGuard_PassesWithoutFlowOrOnLockError(t *testing.T) {
	locks := &memoryLock{held: map[string]bool{}, err: errors.New("redis down")}
	router := newGuardedRouter(locks)

	assert.Equal(t, http.StatusOK, postForm(router, url.Values{}).Code)
	assert.Equal(t, http.StatusOK, postForm(router, url.Values{"flow_id": {"flow-1"}}).Code)
}

func TestRequestID_ReusesCallerHeader(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(requestIDKey))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

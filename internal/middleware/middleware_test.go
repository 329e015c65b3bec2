package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"task-tracker/backend/internal/config"
	"task-tracker/backend/internal/middleware"
	"task-tracker/backend/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
)

const cookieName = "session_token"

func setupSessionRouter(t *testing.T) (*gin.Engine, *session.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	store := session.NewStore(&session.Config{Addr: mr.Addr(), TTL: time.Hour})
	t.Cleanup(func() { store.Close() })

	r := gin.New()
	r.Use(middleware.LoadSession(store, cookieName))
	r.GET("/private", middleware.RequirePage(), func(c *gin.Context) {
		userID, _ := middleware.CurrentUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})

	return r, store
}

func TestRequirePageRedirectsWithoutSession(t *testing.T) {
	r, _ := setupSessionRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/private", nil))

	if w.Code != http.StatusFound {
		t.Errorf("Expected status %d, got %d", http.StatusFound, w.Code)
	}
	if w.Header().Get("Location") != "/login" {
		t.Errorf("Expected redirect to /login, got %q", w.Header().Get("Location"))
	}
}

func TestLoadSessionPopulatesIdentity(t *testing.T) {
	r, store := setupSessionRouter(t)

	token, err := store.Create(session.Identity{UserID: 42, Username: "alice"})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	req := httptest.NewRequest("GET", "/private", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestLoadSessionIgnoresBogusToken(t *testing.T) {
	r, _ := setupSessionRouter(t)

	req := httptest.NewRequest("GET", "/private", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "bogus"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusFound {
		t.Errorf("Expected bogus token to behave as unauthenticated, got %d", w.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := middleware.NewRateLimiter(config.RateLimitConfig{
		Enabled:         true,
		RequestsPerMin:  60,
		BurstSize:       2,
		CleanupInterval: time.Minute,
	})

	r := gin.New()
	r.POST("/login", limiter.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("Expected the burst to pass, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("Expected the third request to be limited, got %v", codes)
	}

	// A different client has its own bucket.
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected a fresh client to pass, got %d", w.Code)
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)

	limiter := middleware.NewRateLimiter(config.RateLimitConfig{Enabled: false})

	r := gin.New()
	r.POST("/login", limiter.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 20; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected disabled limiter to pass everything, got %d", w.Code)
		}
	}
}

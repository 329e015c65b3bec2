package handlers

import (
	"errors"
	"log"
	"net/http"

	"task-tracker/backend/internal/middleware"
	"task-tracker/backend/internal/services"
	"task-tracker/backend/internal/session"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthHandler serves the registration, login, and logout pages and binds
// successful logins to a session cookie.
type AuthHandler struct {
	db          *gorm.DB
	authService services.AuthService
	sessions    *session.Store
	cookie      CookieSettings
}

// CookieSettings describes how the session cookie is issued.
type CookieSettings struct {
	Name   string
	MaxAge int
	Secure bool
}

func NewAuthHandler(db *gorm.DB, authService services.AuthService, sessions *session.Store, cookie CookieSettings) *AuthHandler {
	return &AuthHandler{db: db, authService: authService, sessions: sessions, cookie: cookie}
}

func (h *AuthHandler) RegisterRoutes(r *gin.Engine, limiter gin.HandlerFunc) {
	r.GET("/", h.Home)
	r.GET("/register", h.RegisterPage)
	r.POST("/register", limiter, h.Register)
	r.GET("/login", h.LoginPage)
	r.POST("/login", limiter, h.Login)
	r.GET("/logout", h.Logout)
}

// Home routes to the dashboard or the login page depending on session state.
func (h *AuthHandler) Home(c *gin.Context) {
	if _, ok := middleware.CurrentIdentity(c); ok {
		c.Redirect(http.StatusFound, "/dashboard")
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) RegisterPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{})
}

func (h *AuthHandler) Register(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	_, err := h.authService.RegisterUser(h.db, username, password)
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			c.String(http.StatusConflict, "Username already exists. Go back and try another.")
			return
		}
		log.Printf("register failed: %v", err)
		c.String(http.StatusInternalServerError, "Registration failed. Try again later.")
		return
	}

	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	user, err := h.authService.LoginUser(h.db, username, password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.String(http.StatusUnauthorized, "Invalid login. Try again.")
			return
		}
		log.Printf("login failed: %v", err)
		c.String(http.StatusInternalServerError, "Login failed. Try again later.")
		return
	}

	if err := h.startSession(c, session.Identity{
		UserID:   user.ID,
		Username: user.Username,
	}); err != nil {
		log.Printf("session create failed: %v", err)
		c.String(http.StatusInternalServerError, "Login failed. Try again later.")
		return
	}

	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(h.cookie.Name); err == nil {
		if err := h.sessions.Destroy(token); err != nil {
			log.Printf("session destroy failed: %v", err)
		}
	}
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	c.Redirect(http.StatusFound, "/login")
}

func (h *AuthHandler) startSession(c *gin.Context, identity session.Identity) error {
	token, err := h.sessions.Create(identity)
	if err != nil {
		return err
	}
	c.SetCookie(h.cookie.Name, token, h.cookie.MaxAge, "/", "", h.cookie.Secure, true)
	return nil
}

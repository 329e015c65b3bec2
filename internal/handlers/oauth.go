package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"task-tracker/backend/internal/config"
	"task-tracker/backend/internal/services"
	"task-tracker/backend/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

const (
	oauthStateCookie = "oauth_state"
	userinfoEndpoint = "https://openidconnect.googleapis.com/v1/userinfo"
)

// OAuthHandler implements the delegated Google login flow. The callback
// resolves the asserted email to a durable local user before a session is
// issued, so federated logins own todos the same way local ones do.
type OAuthHandler struct {
	db          *gorm.DB
	authService services.AuthService
	sessions    *session.Store
	cookie      CookieSettings
	oauth       *oauth2.Config
}

func NewOAuthHandler(db *gorm.DB, authService services.AuthService, sessions *session.Store, cookie CookieSettings, cfg config.OAuthConfig) *OAuthHandler {
	return &OAuthHandler{
		db:          db,
		authService: authService,
		sessions:    sessions,
		cookie:      cookie,
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

func (h *OAuthHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/login/google", h.LoginGoogle)
	r.GET("/auth/google/callback", h.Callback)
}

func (h *OAuthHandler) enabled() bool {
	return h.oauth.ClientID != "" && h.oauth.ClientSecret != ""
}

func (h *OAuthHandler) LoginGoogle(c *gin.Context) {
	if !h.enabled() {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	state, err := uuid.NewV4()
	if err != nil {
		log.Printf("oauth state generation failed: %v", err)
		c.String(http.StatusInternalServerError, "Login is unavailable. Try again later.")
		return
	}

	c.SetCookie(oauthStateCookie, state.String(), int((10 * time.Minute).Seconds()), "/", "", h.cookie.Secure, true)
	c.Redirect(http.StatusFound, h.oauth.AuthCodeURL(state.String()))
}

func (h *OAuthHandler) Callback(c *gin.Context) {
	if !h.enabled() {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || c.Query("state") != state {
		c.String(http.StatusBadRequest, "Invalid login state. Start over from the login page.")
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", h.cookie.Secure, true)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	token, err := h.oauth.Exchange(ctx, c.Query("code"))
	if err != nil {
		log.Printf("oauth code exchange failed: %v", err)
		c.String(http.StatusBadGateway, "Login with Google failed. Try again.")
		return
	}

	email, name := h.profileClaims(ctx, token)
	if email == "" {
		c.String(http.StatusBadGateway, "Google did not return an email address.")
		return
	}

	user, err := h.authService.ResolveFederated(h.db, email, name)
	if err != nil {
		log.Printf("federated identity resolution failed: %v", err)
		c.String(http.StatusInternalServerError, "Login with Google failed. Try again.")
		return
	}

	sessionToken, err := h.sessions.Create(session.Identity{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     email,
		Name:      name,
		Federated: true,
	})
	if err != nil {
		log.Printf("session create failed: %v", err)
		c.String(http.StatusInternalServerError, "Login with Google failed. Try again.")
		return
	}

	c.SetCookie(h.cookie.Name, sessionToken, h.cookie.MaxAge, "/", "", h.cookie.Secure, true)
	c.Redirect(http.StatusFound, "/dashboard")
}

// profileClaims extracts email and name from the token response. The id_token
// arrived over TLS directly from the issuer, so its claims are decoded without
// signature verification; the userinfo endpoint is the fallback.
func (h *OAuthHandler) profileClaims(ctx context.Context, token *oauth2.Token) (string, string) {
	if raw, ok := token.Extra("id_token").(string); ok && raw != "" {
		claims := jwt.MapClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err == nil {
			email, _ := claims["email"].(string)
			name, _ := claims["name"].(string)
			if email != "" {
				return email, name
			}
		}
	}

	resp, err := h.oauth.Client(ctx, token).Get(userinfoEndpoint)
	if err != nil {
		log.Printf("userinfo fetch failed: %v", err)
		return "", ""
	}
	defer resp.Body.Close()

	var profile struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		log.Printf("userinfo decode failed: %v", err)
		return "", ""
	}
	return profile.Email, profile.Name
}

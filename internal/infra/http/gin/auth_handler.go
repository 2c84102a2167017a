package ginserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	gin "github.com/gin-gonic/gin"

	"rara/internal/app/dto"
	authsvc "rara/internal/app/services/auth"
)

const oauthStateCookie = "rara_oauth_state"

type AuthHTTP interface {
	Signup(c *gin.Context)
	Login(c *gin.Context)
	Me(c *gin.Context)
	Google(c *gin.Context)
	GoogleCallback(c *gin.Context)
}

// GoogleProvider performs the OAuth code flow against Google.
type GoogleProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (authsvc.GoogleProfile, error)
}

type StateGenerator interface {
	NewToken() (string, error)
}

type AuthHandler struct {
	Service    *authsvc.Service
	OAuth      GoogleProvider
	State      StateGenerator
	SuccessURL string
	Secure     bool
	Logger     *slog.Logger
}

type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	result, err := h.Service.Signup(c.Request.Context(), authsvc.SignupParams{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.AuthResult{Token: result.Token, User: dto.MapUser(result.User)})
}

func (h AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	result, err := h.Service.Login(c.Request.Context(), authsvc.LoginParams{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.AuthResult{Token: result.Token, User: dto.MapUser(result.User)})
}

func (h AuthHandler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		respondError(c, h.Logger, authsvc.ErrTokenRequired)
		return
	}
	c.JSON(http.StatusOK, dto.MapUser(user))
}

// Google redirects to the consent screen and pins the state in a short-lived cookie.
func (h AuthHandler) Google(c *gin.Context) {
	if h.OAuth == nil || h.State == nil {
		c.AbortWithStatusJSON(http.StatusNotImplemented, gin.H{"message": "google sign-in is not configured"})
		return
	}
	state, err := h.State.NewToken()
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/api/auth", "", h.Secure, true)
	c.Redirect(http.StatusFound, h.OAuth.AuthCodeURL(state))
}

func (h AuthHandler) GoogleCallback(c *gin.Context) {
	if h.OAuth == nil {
		c.AbortWithStatusJSON(http.StatusNotImplemented, gin.H{"message": "google sign-in is not configured"})
		return
	}
	expected, err := c.Cookie(oauthStateCookie)
	c.SetCookie(oauthStateCookie, "", -1, "/api/auth", "", h.Secure, true)
	if err != nil || expected == "" || c.Query("state") != expected {
		badRequest(c, "invalid oauth state")
		return
	}
	code := c.Query("code")
	if code == "" {
		badRequest(c, "missing authorization code")
		return
	}
	profile, err := h.OAuth.Exchange(c.Request.Context(), code)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("google exchange failed", "error", err)
		}
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"message": "google sign-in failed"})
		return
	}
	result, err := h.Service.GoogleSignIn(c.Request.Context(), profile)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	target, err := successRedirect(h.SuccessURL, result.Token)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}

func successRedirect(base, token string) (string, error) {
	if base == "" {
		return "", errors.New("auth success url not configured")
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

var _ AuthHTTP = AuthHandler{}

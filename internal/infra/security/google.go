package security

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"

	"rara/internal/app/services/auth"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

var googleEndpoint = oauth2.Endpoint{
	AuthURL:   "https://accounts.google.com/o/oauth2/auth",
	TokenURL:  "https://oauth2.googleapis.com/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

var ErrGoogleNotConfigured = errors.New("security: google sign-in is not configured")

// GoogleOAuth runs the authorization code flow and fetches the user's profile.
type GoogleOAuth struct {
	config      *oauth2.Config
	userInfoURL string
}

func NewGoogleOAuth(clientID, clientSecret, redirectURL string) *GoogleOAuth {
	if clientID == "" || clientSecret == "" {
		return nil
	}
	return &GoogleOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     googleEndpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

func (g *GoogleOAuth) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Exchange trades the callback code for a token and loads the profile.
func (g *GoogleOAuth) Exchange(ctx context.Context, code string) (auth.GoogleProfile, error) {
	if g == nil {
		return auth.GoogleProfile{}, ErrGoogleNotConfigured
	}
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return auth.GoogleProfile{}, fmt.Errorf("security: google exchange: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return auth.GoogleProfile{}, err
	}
	resp, err := g.config.Client(ctx, token).Do(req)
	if err != nil {
		return auth.GoogleProfile{}, fmt.Errorf("security: google userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return auth.GoogleProfile{}, fmt.Errorf("security: google userinfo status %d: %s", resp.StatusCode, body)
	}
	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return auth.GoogleProfile{}, fmt.Errorf("security: decode google userinfo: %w", err)
	}
	if info.Email != "" && !info.EmailVerified {
		info.Email = ""
	}
	first, last := info.GivenName, info.FamilyName
	if first == "" && last == "" {
		first = info.Name
	}
	return auth.GoogleProfile{
		ID:        info.Sub,
		Email:     info.Email,
		FirstName: first,
		LastName:  last,
		Avatar:    info.Picture,
	}, nil
}

package security

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"rara/internal/app/services/auth"
)

func TestJWTRoundTrip(t *testing.T) {
	issuer := JWTIssuer{Secret: []byte("s3cret"), TTL: time.Hour, Issuer: "rara"}

	token, err := issuer.Issue(auth.Claims{UserID: "U1", Email: "guest@rara.dev"})
	require.NoError(t, err)
	claims, err := issuer.Parse(token)
	require.NoError(t, err)

	assert.Equal(t, auth.Claims{UserID: "U1", Email: "guest@rara.dev"}, claims)
}

func TestJWTRejectsExpiredAndForeignTokens(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	issuer := JWTIssuer{Secret: []byte("s3cret"), TTL: time.Hour, Issuer: "rara", Clock: func() time.Time { return now }}
	token, err := issuer.Issue(auth.Claims{UserID: "U1"})
	require.NoError(t, err)

	later := issuer
	later.Clock = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = later.Parse(token)
	assert.Error(t, err)

	other := issuer
	other.Secret = []byte("different")
	_, err = other.Parse(token)
	assert.Error(t, err)

	foreign := issuer
	foreign.Issuer = "someone-else"
	_, err = foreign.Parse(token)
	assert.Error(t, err)
}

func TestJWTRequiresSecret(t *testing.T) {
	_, err := JWTIssuer{}.Issue(auth.Claims{UserID: "U1"})

	assert.ErrorIs(t, err, ErrSecretRequired)
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("correct-horse")
	require.NoError(t, err)

	assert.NotEqual(t, "correct-horse", hash)
	assert.NoError(t, h.Compare(hash, "correct-horse"))
	assert.Error(t, h.Compare(hash, "wrong-horse"))
}

func TestRandomTokensDiffer(t *testing.T) {
	gen := RandomTokenGenerator{Size: 16}

	a, err := gen.NewToken()
	require.NoError(t, err)
	b, err := gen.NewToken()
	require.NoError(t, err)

	assert.Len(t, a, 22)
	assert.NotEqual(t, a, b)
}

func TestGoogleOAuthDisabledWithoutCredentials(t *testing.T) {
	assert.Nil(t, NewGoogleOAuth("", "", ""))
}

func TestGoogleExchangeLoadsVerifiedProfile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"g-42","email":"ana@example.com","email_verified":true,"given_name":"Ana","family_name":"Lee","picture":"https://img/ana.png"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	g := NewGoogleOAuth("client", "secret", "http://localhost/callback")
	require.NotNil(t, g)
	g.config.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}
	g.userInfoURL = srv.URL + "/userinfo"

	profile, err := g.Exchange(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, auth.GoogleProfile{
		ID:        "g-42",
		Email:     "ana@example.com",
		FirstName: "Ana",
		LastName:  "Lee",
		Avatar:    "https://img/ana.png",
	}, profile)

	authURL, err := url.Parse(g.AuthCodeURL("state-1"))
	require.NoError(t, err)
	assert.Equal(t, "state-1", authURL.Query().Get("state"))
	assert.Equal(t, "client", authURL.Query().Get("client_id"))
}

package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newGitHubTestProvider(tokenURL string) *GitHubProvider {
	return NewGitHubProvider(&oauth2.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "https://api.example.com/api/auth/link/github/callback",
		Scopes:       []string{"read:user", "user:email"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://github.example/login/oauth/authorize",
			TokenURL: tokenURL,
		},
	})
}

func TestGitHubProvider_AuthCodeURL(t *testing.T) {
	p := newGitHubTestProvider("https://github.example/login/oauth/access_token")

	u := p.AuthCodeURL("corr-1")
	assert.Contains(t, u, "state=corr-1")
	assert.Contains(t, u, "client_id=client-id")
}

func TestGitHubProvider_ExchangeCode(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "auth-code", r.FormValue("code"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"gh-at","token_type":"bearer"}`))
		}))
		defer srv.Close()

		p := newGitHubTestProvider(srv.URL)
		tokens, err := p.ExchangeCode(context.Background(), "auth-code")
		require.NoError(t, err)
		assert.Equal(t, "gh-at", tokens.AccessToken)
	})

	t.Run("ProviderRejectsCode", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"bad_verification_code"}`))
		}))
		defer srv.Close()

		p := newGitHubTestProvider(srv.URL)
		_, err := p.ExchangeCode(context.Background(), "spent-code")
		assert.ErrorIs(t, err, ErrExchangeFailed)
	})

	t.Run("EmptyAccessToken", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"","token_type":"bearer"}`))
		}))
		defer srv.Close()

		p := newGitHubTestProvider(srv.URL)
		_, err := p.ExchangeCode(context.Background(), "auth-code")
		assert.ErrorIs(t, err, ErrExchangeFailed)
	})
}

func TestGitHubProvider_FetchIdentity(t *testing.T) {
	t.Run("PublicEmail", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer gh-at", r.Header.Get("Authorization"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":99,"login":"ada-dev","name":"Ada Runner","email":"ada@example.com","avatar_url":"https://avatars.example/99"}`))
		}))
		defer srv.Close()

		p := newGitHubTestProvider("unused")
		p.userAPI = srv.URL

		identity, err := p.FetchIdentity(context.Background(), "gh-at")
		require.NoError(t, err)
		assert.Equal(t, "99", identity.ProviderUserID)
		assert.Equal(t, "ada-dev", identity.Login)
		assert.Equal(t, "Ada Runner", identity.DisplayName)
		assert.Equal(t, "ada@example.com", identity.Email)
	})

	t.Run("PrivateEmailFallsBackToEmailListing", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":99,"login":"ada-dev","name":"","email":""}`))
		})
		mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[
				{"email":"noreply@users.example","primary":false,"verified":false},
				{"email":"ada@example.com","primary":true,"verified":true}
			]`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		p := newGitHubTestProvider("unused")
		p.userAPI = srv.URL + "/user"
		p.emailsAPI = srv.URL + "/user/emails"

		identity, err := p.FetchIdentity(context.Background(), "gh-at")
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", identity.Email)
		// Missing display name falls back to the login.
		assert.Equal(t, "ada-dev", identity.DisplayName)
	})

	t.Run("EmailListingFailureIsNotFatal", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":99,"login":"ada-dev"}`))
		})
		mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		p := newGitHubTestProvider("unused")
		p.userAPI = srv.URL + "/user"
		p.emailsAPI = srv.URL + "/user/emails"

		identity, err := p.FetchIdentity(context.Background(), "gh-at")
		require.NoError(t, err)
		assert.Empty(t, identity.Email)
	})

	t.Run("Unauthorized", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		p := newGitHubTestProvider("unused")
		p.userAPI = srv.URL

		_, err := p.FetchIdentity(context.Background(), "bad-token")
		assert.ErrorIs(t, err, ErrIdentityFetchFailed)
	})

	t.Run("MissingUserID", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		p := newGitHubTestProvider("unused")
		p.userAPI = srv.URL

		_, err := p.FetchIdentity(context.Background(), "gh-at")
		assert.ErrorIs(t, err, ErrIdentityFetchFailed)
	})
}

package provider

import (
	"context"
	"fmt"
	"strconv"

	"github.com/questfit/questfit-server/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const githubName = "github"

// GitHubProvider is the code-hosting provider client.
type GitHubProvider struct {
	oauthConfig *oauth2.Config
	userAPI     string
	emailsAPI   string
}

func NewGitHubProvider(oauthConfig *oauth2.Config) *GitHubProvider {
	return &GitHubProvider{
		oauthConfig: oauthConfig,
		userAPI:     "https://api.github.com/user",
		emailsAPI:   "https://api.github.com/user/emails",
	}
}

func (p *GitHubProvider) Name() string {
	return githubName
}

func (p *GitHubProvider) AuthCodeURL(state string) string {
	return p.oauthConfig.AuthCodeURL(state)
}

func (p *GitHubProvider) ExchangeCode(ctx context.Context, code string) (*models.ProviderTokens, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	token, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		log.Error().Err(err).Str("provider", githubName).Msg("Error exchanging OAuth code for token")
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	if token.AccessToken == "" {
		log.Warn().Str("provider", githubName).Msg("Token response missing access token")
		return nil, fmt.Errorf("%w: response missing access_token", ErrExchangeFailed)
	}
	return &models.ProviderTokens{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}, nil
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// FetchIdentity fetches the authenticated user. GitHub omits the email for
// users with a private address, so a missing email falls back to the
// /user/emails listing.
func (p *GitHubProvider) FetchIdentity(ctx context.Context, accessToken string) (*models.ProviderIdentity, error) {
	var user githubUser
	if err := getJSON(ctx, p.userAPI, accessToken, &user); err != nil {
		log.Error().Err(err).Str("provider", githubName).Msg("Error fetching user")
		return nil, fmt.Errorf("%w: %v", ErrIdentityFetchFailed, err)
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("%w: user response missing id", ErrIdentityFetchFailed)
	}

	email := user.Email
	if email == "" {
		primary, err := p.fetchPrimaryEmail(ctx, accessToken)
		if err != nil {
			log.Warn().Err(err).Str("provider", githubName).Msg("Primary email lookup failed")
		} else {
			email = primary
		}
	}

	displayName := user.Name
	if displayName == "" {
		displayName = user.Login
	}
	return &models.ProviderIdentity{
		ProviderUserID: strconv.FormatInt(user.ID, 10),
		Login:          user.Login,
		DisplayName:    displayName,
		Email:          email,
		AvatarURL:      user.AvatarURL,
	}, nil
}

func (p *GitHubProvider) fetchPrimaryEmail(ctx context.Context, accessToken string) (string, error) {
	var emails []githubEmail
	if err := getJSON(ctx, p.emailsAPI, accessToken, &emails); err != nil {
		return "", err
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email, nil
		}
	}
	return "", fmt.Errorf("no verified email on account")
}

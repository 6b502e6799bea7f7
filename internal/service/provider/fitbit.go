package provider

import (
	"context"
	"fmt"

	"github.com/questfit/questfit-server/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const fitbitName = "fitbit"

// FitbitProvider is the fitness-data provider client.
type FitbitProvider struct {
	oauthConfig *oauth2.Config
	api         string
}

func NewFitbitProvider(oauthConfig *oauth2.Config) *FitbitProvider {
	return &FitbitProvider{
		oauthConfig: oauthConfig,
		api:         "https://api.fitbit.com/1/user/-/profile.json",
	}
}

func (p *FitbitProvider) Name() string {
	return fitbitName
}

func (p *FitbitProvider) AuthCodeURL(state string) string {
	return p.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (p *FitbitProvider) ExchangeCode(ctx context.Context, code string) (*models.ProviderTokens, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	token, err := p.oauthConfig.Exchange(ctx, code)
	if err != nil {
		log.Error().Err(err).Str("provider", fitbitName).Msg("Error exchanging OAuth code for token")
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	if !token.Valid() {
		log.Warn().Str("provider", fitbitName).Msg("Received invalid OAuth token after exchange")
		return nil, fmt.Errorf("%w: received invalid token", ErrExchangeFailed)
	}
	return &models.ProviderTokens{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}, nil
}

// fitbitProfile mirrors the relevant slice of the Fitbit profile response.
type fitbitProfile struct {
	User struct {
		EncodedID   string `json:"encodedId"`
		DisplayName string `json:"displayName"`
		FullName    string `json:"fullName"`
		Avatar      string `json:"avatar150"`
		Email       string `json:"email"`
	} `json:"user"`
}

func (p *FitbitProvider) FetchIdentity(ctx context.Context, accessToken string) (*models.ProviderIdentity, error) {
	var profile fitbitProfile
	if err := getJSON(ctx, p.api, accessToken, &profile); err != nil {
		log.Error().Err(err).Str("provider", fitbitName).Msg("Error fetching user profile")
		return nil, fmt.Errorf("%w: %v", ErrIdentityFetchFailed, err)
	}
	if profile.User.EncodedID == "" {
		return nil, fmt.Errorf("%w: profile response missing user id", ErrIdentityFetchFailed)
	}

	displayName := profile.User.DisplayName
	if displayName == "" {
		displayName = profile.User.FullName
	}
	return &models.ProviderIdentity{
		ProviderUserID: profile.User.EncodedID,
		DisplayName:    displayName,
		Email:          profile.User.Email,
		AvatarURL:      profile.User.Avatar,
	}, nil
}

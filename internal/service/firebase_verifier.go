package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/questfit/questfit-server/internal/models"
	"github.com/questfit/questfit-server/internal/repository"
	"github.com/rs/zerolog/log"
)

// FirebaseVerifier verifies Firebase ID-token assertions against the
// securetoken issuer for the configured project and reports whether the
// subject already has an account.
type FirebaseVerifier struct {
	verifier *oidc.IDTokenVerifier
	accounts repository.AccountRepository
}

var _ AssertionVerifier = (*FirebaseVerifier)(nil)

func NewFirebaseVerifier(ctx context.Context, projectID string, accounts repository.AccountRepository) (*FirebaseVerifier, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	issuer := fmt.Sprintf("https://securetoken.google.com/%s", projectID)
	oidcProvider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider for %s: %w", issuer, err)
	}

	return &FirebaseVerifier{
		verifier: oidcProvider.Verifier(&oidc.Config{ClientID: projectID}),
		accounts: accounts,
	}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, assertionToken string) (*models.AssertionResult, error) {
	idToken, err := v.verifier.Verify(ctx, assertionToken)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to verify identity assertion")
		return nil, fmt.Errorf("failed to verify assertion: %w", err)
	}

	var claims struct {
		Name    string `json:"name"`
		Picture string `json:"picture"`
		Email   string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse assertion claims: %w", err)
	}

	result := &models.AssertionResult{
		SubjectID:   idToken.Subject,
		DisplayName: claims.Name,
		IconURL:     claims.Picture,
		Email:       claims.Email,
	}

	_, err = v.accounts.GetAccountBySubjectID(ctx, idToken.Subject)
	switch {
	case err == nil:
		result.ExistingUser = true
	case errors.Is(err, repository.ErrAccountNotFound):
		result.ExistingUser = false
	default:
		return nil, fmt.Errorf("failed to look up account for subject: %w", err)
	}

	log.Info().Str("subject", idToken.Subject).Bool("existing", result.ExistingUser).Msg("Identity assertion verified")
	return result, nil
}

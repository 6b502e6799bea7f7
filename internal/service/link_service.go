package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/questfit/questfit-server/internal/models"
	"github.com/questfit/questfit-server/internal/repository"
	"github.com/questfit/questfit-server/internal/service/provider"
	"github.com/rs/zerolog/log"
)

// LinkService sequences the chained account-linking protocol: verify the
// primary assertion, optionally run the fitness and code-host OAuth legs, and
// converge to a provisioned account with a full session.
//
// The OAuth state value is a minted, unguessable correlation id; all identity
// data is bound to it server-side in the link-state store. No lock is ever
// held across a provider round trip: each completion atomically takes the
// state record first and re-puts it only when a retry is legitimate.
type LinkService struct {
	verifier AssertionVerifier
	tokens   StageTokenIssuer
	fitness  provider.IdentityProvider
	codeHost provider.IdentityProvider
	links    repository.LinkStateRepository
	accounts repository.AccountRepository
	sessions SessionManager

	primaryTTL      time.Duration
	secondFactorTTL time.Duration
}

var _ LinkFlow = (*LinkService)(nil)

func NewLinkService(
	verifier AssertionVerifier,
	tokens StageTokenIssuer,
	fitness provider.IdentityProvider,
	codeHost provider.IdentityProvider,
	links repository.LinkStateRepository,
	accounts repository.AccountRepository,
	sessions SessionManager,
	primaryTTL, secondFactorTTL time.Duration,
) *LinkService {
	return &LinkService{
		verifier:        verifier,
		tokens:          tokens,
		fitness:         fitness,
		codeHost:        codeHost,
		links:           links,
		accounts:        accounts,
		sessions:        sessions,
		primaryTTL:      primaryTTL,
		secondFactorTTL: secondFactorTTL,
	}
}

// BeginPrimary verifies the assertion and picks the convergence path. An
// existing user gets a full session immediately, with no provider calls. A
// new user gets a correlation id bound to their verified identity and the
// authorization URL for the next leg.
func (s *LinkService) BeginPrimary(ctx context.Context, assertionToken, fitnessAccessToken string) (*models.PrimaryOutcome, error) {
	identity, err := s.verifier.Verify(ctx, assertionToken)
	if err != nil {
		return nil, NewFlowError(CodeTokenMalformed, "primary identity assertion could not be verified", err)
	}

	if identity.ExistingUser {
		return s.completeExistingUser(ctx, identity, fitnessAccessToken)
	}

	correlationID := uuid.NewString()

	if fitnessAccessToken != "" {
		// The caller already holds fitness credentials; run the fitness leg
		// inline instead of issuing a redirect.
		return s.bindFitnessInline(ctx, identity, correlationID, fitnessAccessToken)
	}

	primaryToken, _, err := s.tokens.Issue(KindPrimary, stageClaimsFor(identity, correlationID), s.primaryTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue primary token: %w", err)
	}

	state := models.LinkState{
		Stage:    models.StageAwaitingFitness,
		Identity: *identity,
	}
	if err := s.links.Put(ctx, correlationID, state); err != nil {
		return nil, fmt.Errorf("failed to store link state: %w", err)
	}

	log.Info().Str("subject", identity.SubjectID).Msg("Primary identity verified, fitness leg pending")
	return &models.PrimaryOutcome{
		Done:             false,
		Next:             models.NextFitness,
		CorrelationToken: primaryToken,
		AuthorizationURL: s.fitness.AuthCodeURL(correlationID),
		PartialIdentity:  identity,
	}, nil
}

// completeExistingUser is the fast path: the account exists, so every
// downstream provider call is short-circuited.
func (s *LinkService) completeExistingUser(ctx context.Context, identity *models.AssertionResult, fitnessAccessToken string) (*models.PrimaryOutcome, error) {
	account, err := s.accounts.GetAccountBySubjectID(ctx, identity.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account for existing user: %w", err)
	}

	if fitnessAccessToken != "" {
		// Out-of-band token refresh; no provider verification happens on the
		// fast path.
		err := s.accounts.UpdateFitnessTokens(ctx, account.ID, models.ProviderTokens{AccessToken: fitnessAccessToken})
		if err != nil {
			return nil, fmt.Errorf("failed to update fitness tokens: %w", err)
		}
		account.FitnessAccessToken = fitnessAccessToken
	}

	sessionToken, _, err := s.sessions.IssueSession(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session for existing user: %w", err)
	}

	log.Info().Int64("accountId", account.ID).Msg("Existing user signed in via fast path")
	return &models.PrimaryOutcome{
		Done:         true,
		SessionToken: sessionToken,
		Account:      account,
	}, nil
}

// bindFitnessInline runs the fitness leg with a caller-supplied access token:
// the identity is fetched and bound now, and only the code-host leg remains.
func (s *LinkService) bindFitnessInline(ctx context.Context, identity *models.AssertionResult, correlationID, accessToken string) (*models.PrimaryOutcome, error) {
	fitnessIdentity, err := s.fitness.FetchIdentity(ctx, accessToken)
	if err != nil {
		return nil, classifyProviderError(s.fitness.Name(), err)
	}
	if err := checkEmailBinding(identity.Email, fitnessIdentity.Email, s.fitness.Name()); err != nil {
		return nil, err
	}

	state := models.LinkState{
		Stage:           models.StageAwaitingCodeHost,
		Identity:        *identity,
		FitnessIdentity: fitnessIdentity,
		FitnessTokens:   &models.ProviderTokens{AccessToken: accessToken},
	}
	if err := s.links.Put(ctx, correlationID, state); err != nil {
		return nil, fmt.Errorf("failed to store link state: %w", err)
	}

	secondFactor, _, err := s.tokens.Issue(KindSecondFactor, secondFactorClaimsFor(identity, correlationID), s.secondFactorTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue second-factor token: %w", err)
	}

	log.Info().Str("subject", identity.SubjectID).Msg("Fitness leg bound inline, code-host leg pending")
	return &models.PrimaryOutcome{
		Done:             false,
		Next:             models.NextCodeHost,
		CorrelationToken: secondFactor,
		AuthorizationURL: s.codeHost.AuthCodeURL(correlationID),
		PartialIdentity:  identity,
	}, nil
}

// CompleteFitness finishes the fitness leg for a redirect-based flow. On
// provider failure the taken state is re-put so the user can retry the leg;
// on a security violation it is dropped.
func (s *LinkService) CompleteFitness(ctx context.Context, code, state string) (*models.PrimaryOutcome, error) {
	if code == "" || state == "" {
		return nil, NewFlowError(CodeMissingOAuthParams, "code and state are required", nil)
	}

	linkState, err := s.links.TakeOnce(ctx, state)
	if err != nil {
		if errors.Is(err, repository.ErrLinkStateNotFound) {
			return nil, NewFlowError(CodeLinkDataMissing, "no linking flow in progress for this state", err)
		}
		return nil, fmt.Errorf("failed to take link state: %w", err)
	}
	if linkState.Stage != models.StageAwaitingFitness {
		s.reput(ctx, state, *linkState)
		return nil, NewFlowError(CodeLinkDataMissing, "linking flow is not awaiting the fitness provider", nil)
	}

	tokens, err := s.fitness.ExchangeCode(ctx, code)
	if err != nil {
		s.reput(ctx, state, *linkState)
		return nil, classifyProviderError(s.fitness.Name(), err)
	}

	fitnessIdentity, err := s.fitness.FetchIdentity(ctx, tokens.AccessToken)
	if err != nil {
		s.reput(ctx, state, *linkState)
		return nil, classifyProviderError(s.fitness.Name(), err)
	}

	if err := checkEmailBinding(linkState.Identity.Email, fitnessIdentity.Email, s.fitness.Name()); err != nil {
		// Identity substitution attempt: no partial state survives.
		return nil, err
	}

	advanced := models.LinkState{
		Stage:           models.StageAwaitingCodeHost,
		Identity:        linkState.Identity,
		FitnessIdentity: fitnessIdentity,
		FitnessTokens:   tokens,
	}
	if err := s.links.Put(ctx, state, advanced); err != nil {
		return nil, fmt.Errorf("failed to store advanced link state: %w", err)
	}

	secondFactor, _, err := s.tokens.Issue(KindSecondFactor, secondFactorClaimsFor(&linkState.Identity, state), s.secondFactorTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue second-factor token: %w", err)
	}

	log.Info().Str("subject", linkState.Identity.SubjectID).Str("provider", s.fitness.Name()).Msg("Fitness leg completed")
	return &models.PrimaryOutcome{
		Done:             false,
		Next:             models.NextCodeHost,
		CorrelationToken: secondFactor,
		AuthorizationURL: s.codeHost.AuthCodeURL(state),
		PartialIdentity:  &linkState.Identity,
	}, nil
}

// CompleteCodeHost finishes the code-host leg, materializes the account, and
// issues the full session. The atomic TakeOnce is what prevents one fitness
// leg from being spent into two completions.
func (s *LinkService) CompleteCodeHost(ctx context.Context, code, state string) (*models.LinkCompleteResult, error) {
	if code == "" || state == "" {
		return nil, NewFlowError(CodeMissingOAuthParams, "code and state are required", nil)
	}

	linkState, err := s.links.TakeOnce(ctx, state)
	if err != nil {
		if errors.Is(err, repository.ErrLinkStateNotFound) {
			return nil, NewFlowError(CodeLinkDataMissing, "linking data is missing, expired, or already used", err)
		}
		return nil, fmt.Errorf("failed to take link state: %w", err)
	}
	if linkState.Stage != models.StageAwaitingCodeHost {
		s.reput(ctx, state, *linkState)
		return nil, NewFlowError(CodeLinkDataMissing, "fitness leg has not completed for this flow", nil)
	}

	tokens, err := s.codeHost.ExchangeCode(ctx, code)
	if err != nil {
		// The code is spent, but the fitness progress is retriable until the
		// link state expires.
		s.reput(ctx, state, *linkState)
		return nil, classifyProviderError(s.codeHost.Name(), err)
	}

	codeHostIdentity, err := s.codeHost.FetchIdentity(ctx, tokens.AccessToken)
	if err != nil {
		s.reput(ctx, state, *linkState)
		return nil, classifyProviderError(s.codeHost.Name(), err)
	}

	if err := checkEmailBinding(linkState.Identity.Email, codeHostIdentity.Email, s.codeHost.Name()); err != nil {
		return nil, err
	}

	account, err := s.materializeAccount(ctx, linkState, codeHostIdentity)
	if err != nil {
		return nil, err
	}

	sessionToken, _, err := s.sessions.IssueSession(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}

	log.Info().Int64("accountId", account.ID).Msg("Account provisioned, both providers linked")
	return &models.LinkCompleteResult{
		Success:         true,
		SessionToken:    sessionToken,
		Account:         account,
		LinkedProviders: []string{s.fitness.Name(), s.codeHost.Name()},
	}, nil
}

// materializeAccount performs the single account write joining the stored
// fitness leg with the fresh code-host identity. A concurrent duplicate
// insert resolves to the row that won.
func (s *LinkService) materializeAccount(ctx context.Context, linkState *models.LinkState, codeHostIdentity *models.ProviderIdentity) (*models.Account, error) {
	email := linkState.Identity.Email
	if email == "" {
		email = codeHostIdentity.Email
	}
	if email == "" && linkState.FitnessIdentity != nil {
		email = linkState.FitnessIdentity.Email
	}

	account := &models.Account{
		ExternalID:  uuid.NewString(),
		SubjectID:   linkState.Identity.SubjectID,
		DisplayName: linkState.Identity.DisplayName,
		IconURL:     linkState.Identity.IconURL,
		Email:       email,

		CodeHostUserID: codeHostIdentity.ProviderUserID,
		CodeHostLogin:  codeHostIdentity.Login,
	}
	if account.DisplayName == "" {
		account.DisplayName = codeHostIdentity.DisplayName
	}
	if linkState.FitnessIdentity != nil {
		account.FitnessUserID = linkState.FitnessIdentity.ProviderUserID
	}
	if linkState.FitnessTokens != nil {
		account.FitnessAccessToken = linkState.FitnessTokens.AccessToken
		account.FitnessRefreshToken = linkState.FitnessTokens.RefreshToken
		account.FitnessTokenExpiry = linkState.FitnessTokens.Expiry
	}

	if _, err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, repository.ErrAccountExists) {
			existing, getErr := s.accounts.GetAccountBySubjectID(ctx, linkState.Identity.SubjectID)
			if getErr != nil {
				return nil, fmt.Errorf("failed to load existing account after duplicate insert: %w", getErr)
			}
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

// Resume re-validates a correlation token and replays the pending leg. The
// token kind alone determines which leg comes next; whether the server-side
// state is still live is only learned at the callback, where an expired flow
// surfaces as LINK_DATA_MISSING.
func (s *LinkService) Resume(ctx context.Context, correlationToken string) (*models.PrimaryOutcome, error) {
	claims, err := s.tokens.Verify(correlationToken, KindPrimary)
	if err != nil && CodeOf(err) == CodeTokenWrongKind {
		claims, err = s.tokens.Verify(correlationToken, KindSecondFactor)
	}
	if err != nil {
		return nil, err
	}

	outcome := &models.PrimaryOutcome{
		CorrelationToken: correlationToken,
		PartialIdentity: &models.AssertionResult{
			SubjectID:   claims.Subject,
			DisplayName: claims.DisplayName,
			IconURL:     claims.IconURL,
			Email:       claims.Email,
		},
	}
	switch claims.Kind {
	case KindPrimary:
		outcome.Next = models.NextFitness
		outcome.AuthorizationURL = s.fitness.AuthCodeURL(claims.CorrelationID)
	case KindSecondFactor:
		outcome.Next = models.NextCodeHost
		outcome.AuthorizationURL = s.codeHost.AuthCodeURL(claims.CorrelationID)
	}

	log.Info().Str("subject", claims.Subject).Str("next", string(outcome.Next)).Msg("Linking flow resumed")
	return outcome, nil
}

// reput restores a taken link state after a retriable failure. CreatedAt is
// kept as taken, so a failed retry never extends the flow's absolute
// deadline. Best effort: a lost re-put only costs the user a restart.
func (s *LinkService) reput(ctx context.Context, correlationID string, state models.LinkState) {
	if err := s.links.Put(ctx, correlationID, state); err != nil {
		log.Warn().Err(err).Msg("Failed to restore link state after retriable failure")
	}
}

// checkEmailBinding is the anti-substitution guard: when the primary identity
// carried an email and the provider reports one, they must match exactly.
func checkEmailBinding(assertionEmail, providerEmail, providerName string) error {
	if assertionEmail == "" || providerEmail == "" {
		return nil
	}
	if assertionEmail != providerEmail {
		log.Warn().Str("provider", providerName).Msg("Provider email does not match primary identity email")
		return NewFlowError(CodeEmailMismatch,
			fmt.Sprintf("the %s account email does not match the signed-in identity", providerName), nil)
	}
	return nil
}

// classifyProviderError maps the provider sentinels to their stable codes.
func classifyProviderError(providerName string, err error) error {
	switch {
	case errors.Is(err, provider.ErrExchangeFailed):
		return NewFlowError(CodeTokenExchangeFailed,
			fmt.Sprintf("%s authorization code exchange failed", providerName), err)
	case errors.Is(err, provider.ErrIdentityFetchFailed):
		return NewFlowError(CodeIdentityFetchFailed,
			fmt.Sprintf("%s identity could not be fetched", providerName), err)
	default:
		return NewFlowError(CodeOAuthProviderError,
			fmt.Sprintf("%s provider call failed", providerName), err)
	}
}

func stageClaimsFor(identity *models.AssertionResult, correlationID string) StageClaims {
	claims := StageClaims{
		DisplayName:   identity.DisplayName,
		IconURL:       identity.IconURL,
		Email:         identity.Email,
		CorrelationID: correlationID,
	}
	claims.Subject = identity.SubjectID
	return claims
}

func secondFactorClaimsFor(identity *models.AssertionResult, correlationID string) StageClaims {
	claims := StageClaims{CorrelationID: correlationID}
	claims.Subject = identity.SubjectID
	return claims
}

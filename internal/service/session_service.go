package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/questfit/questfit-server/internal/models"
	"github.com/questfit/questfit-server/internal/repository"
	"github.com/rs/zerolog/log"
)

// SessionService issues full-session tokens and keeps the revocable session
// registry in sync with them.
type SessionService struct {
	sessionRepo repository.SessionRepository
	tokenSvc    StageTokenIssuer
	fullTTL     time.Duration
}

var _ SessionManager = (*SessionService)(nil)

func NewSessionService(sessionRepo repository.SessionRepository, tokenSvc StageTokenIssuer, fullTTL time.Duration) *SessionService {
	return &SessionService{sessionRepo: sessionRepo, tokenSvc: tokenSvc, fullTTL: fullTTL}
}

// IssueSession mints a FULL stage token for the account and records it so it
// can be revoked before expiry.
func (s *SessionService) IssueSession(ctx context.Context, account *models.Account) (string, time.Time, error) {
	if account == nil || account.ID <= 0 {
		return "", time.Time{}, errors.New("account must be persisted before a session is issued")
	}

	claims := StageClaims{
		DisplayName: account.DisplayName,
		IconURL:     account.IconURL,
		Email:       account.Email,
		AccountID:   account.ID,
	}
	claims.Subject = account.SubjectID

	token, expiry, err := s.tokenSvc.Issue(KindFull, claims, s.fullTTL)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to issue full session token: %w", err)
	}

	session := &models.Session{
		SessionID:   token,
		AccountID:   account.ID,
		SubjectID:   account.SubjectID,
		DisplayName: account.DisplayName,
		CreatedAt:   time.Now().UTC(),
		Expiry:      expiry,
	}
	if err := s.sessionRepo.StoreSession(ctx, session); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to store session: %w", err)
	}

	log.Info().Int64("accountId", account.ID).Time("expiry", expiry).Msg("Full session issued")
	return token, expiry, nil
}

// VerifySession validates the token cryptographically, then checks the
// registry so revoked sessions fail even before the token expires.
func (s *SessionService) VerifySession(ctx context.Context, sessionToken string) (*models.VerifySessionResponse, error) {
	if sessionToken == "" {
		return nil, errors.New("session token cannot be empty")
	}

	if _, err := s.tokenSvc.Verify(sessionToken, KindFull); err != nil {
		return nil, err
	}

	session, err := s.sessionRepo.GetSession(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, fmt.Errorf("session not found or invalidated: %w", err)
		}
		return nil, fmt.Errorf("error verifying session: %w", err)
	}

	if session.IsExpired() {
		_ = s.sessionRepo.DeleteSession(ctx, sessionToken)
		return nil, fmt.Errorf("session expired: %w", repository.ErrSessionNotFound)
	}

	return &models.VerifySessionResponse{
		SessionID: sessionToken,
		AccountID: session.AccountID,
		IsValid:   true,
	}, nil
}

// ListSessions lists the account's live sessions.
func (s *SessionService) ListSessions(ctx context.Context, accountID int64) ([]*models.Session, error) {
	if accountID <= 0 {
		return nil, errors.New("account id must be positive")
	}

	sessions, err := s.sessionRepo.GetAccountSessions(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list account sessions: %w", err)
	}
	return sessions, nil
}

// SignOut invalidates a session. An already-missing session counts as success.
func (s *SessionService) SignOut(ctx context.Context, sessionToken string) error {
	if sessionToken == "" {
		return errors.New("session token cannot be empty")
	}

	err := s.sessionRepo.DeleteSession(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			log.Debug().Msg("Session already invalidated on sign-out")
			return nil
		}
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

// SignOutAccountSessions invalidates all sessions for an account, optionally
// excluding some (typically the caller's own).
func (s *SessionService) SignOutAccountSessions(ctx context.Context, accountID int64, excludeTokens ...string) (int64, error) {
	if accountID <= 0 {
		return 0, errors.New("account id must be positive")
	}

	deleted, err := s.sessionRepo.DeleteAccountSessions(ctx, accountID, excludeTokens...)
	if err != nil {
		return 0, fmt.Errorf("failed to sign out account sessions: %w", err)
	}

	log.Info().Int64("accountId", accountID).Int64("deleted", deleted).Msg("Account sessions signed out")
	return deleted, nil
}

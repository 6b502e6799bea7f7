package service

import (
	"context"
	"time"

	"github.com/questfit/questfit-server/internal/models"
)

// StageTokenService signs and validates the three stage-token kinds with a
// single shared secret.
type StageTokenService struct {
	jwtSecret []byte
}

// StageTokenIssuer is the codec capability used by the orchestrator and the
// session service.
type StageTokenIssuer interface {
	Issue(kind TokenKind, claims StageClaims, ttl time.Duration) (string, time.Time, error)
	Verify(token string, expectedKind TokenKind) (*StageClaims, error)
}

// AssertionVerifier verifies the primary identity assertion presented by the
// client and reports whether the subject already has an account.
type AssertionVerifier interface {
	Verify(ctx context.Context, assertionToken string) (*models.AssertionResult, error)
}

// LinkFlow is the account-linking orchestrator as seen by the transport layer.
type LinkFlow interface {
	// BeginPrimary verifies the assertion and either converges immediately
	// (existing user) or returns the next provider leg to run. A non-empty
	// fitnessAccessToken runs the fitness leg inline.
	BeginPrimary(ctx context.Context, assertionToken, fitnessAccessToken string) (*models.PrimaryOutcome, error)
	// CompleteFitness finishes the fitness-provider leg for the given
	// correlation state and returns the code-host leg to run next.
	CompleteFitness(ctx context.Context, code, state string) (*models.PrimaryOutcome, error)
	// CompleteCodeHost finishes the code-host leg, materializes the account,
	// and issues the full session.
	CompleteCodeHost(ctx context.Context, code, state string) (*models.LinkCompleteResult, error)
	// Resume validates a primary or second-factor correlation token and
	// replays the pending leg's authorization URL for a client that lost the
	// original response.
	Resume(ctx context.Context, correlationToken string) (*models.PrimaryOutcome, error)
}

// SessionManager issues, verifies, lists, and revokes full sessions.
type SessionManager interface {
	IssueSession(ctx context.Context, account *models.Account) (string, time.Time, error)
	VerifySession(ctx context.Context, sessionToken string) (*models.VerifySessionResponse, error)
	ListSessions(ctx context.Context, accountID int64) ([]*models.Session, error)
	SignOut(ctx context.Context, sessionToken string) error
	SignOutAccountSessions(ctx context.Context, accountID int64, excludeTokens ...string) (int64, error)
}

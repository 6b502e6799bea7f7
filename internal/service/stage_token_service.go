package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind discriminates the three stage-token kinds. Tokens of one kind are
// never accepted where another kind is expected.
type TokenKind string

const (
	// KindPrimary proves a verified first-factor identity and authorizes
	// starting the provider legs. Short-lived.
	KindPrimary TokenKind = "primary"
	// KindSecondFactor correlates a completed fitness leg with the code-host
	// leg. Narrower than primary; carries no icon or display name.
	KindSecondFactor TokenKind = "second_factor"
	// KindFull represents a completed account. Long-lived.
	KindFull TokenKind = "full"
)

// StageClaims are the claims carried by a stage token. Which fields are set
// depends on the kind; Kind must be checked before trusting any of them.
type StageClaims struct {
	Kind          TokenKind `json:"knd"`
	DisplayName   string    `json:"name,omitempty"`
	IconURL       string    `json:"icon,omitempty"`
	Email         string    `json:"email,omitempty"`
	AccountID     int64     `json:"acc,omitempty"`
	CorrelationID string    `json:"cid,omitempty"`
	jwt.RegisteredClaims
}

var _ StageTokenIssuer = (*StageTokenService)(nil)

// NewStageTokenService creates a StageTokenService signing with the shared secret.
func NewStageTokenService(secret string) *StageTokenService {
	return &StageTokenService{jwtSecret: []byte(secret)}
}

// Issue serializes the claims plus kind and iat, signs them, and sets
// exp = iat + ttl. Timestamps are whole seconds since epoch.
func (s *StageTokenService) Issue(kind TokenKind, claims StageClaims, ttl time.Duration) (string, time.Time, error) {
	now := time.Now().Truncate(time.Second)
	exp := now.Add(ttl)

	claims.Kind = kind
	claims.Issuer = "questfit-auth"
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.NotBefore = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(exp)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, exp, nil
}

// Verify checks the signature, then the kind, then the expiry, and returns
// the claims. A wrong-kind token is reported as TOKEN_WRONG_KIND even when it
// is also expired, so claims validation is done by hand rather than by the
// JWT parser.
func (s *StageTokenService) Verify(tokenString string, expectedKind TokenKind) (*StageClaims, error) {
	claims := &StageClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, NewFlowError(CodeTokenMalformed, "token is malformed or has an invalid signature", err)
	}
	if !token.Valid {
		return nil, NewFlowError(CodeTokenMalformed, "token is not valid", nil)
	}

	if claims.Kind != expectedKind {
		return nil, NewFlowError(CodeTokenWrongKind,
			fmt.Sprintf("token kind %q cannot be used where %q is required", claims.Kind, expectedKind), nil)
	}

	// A token is valid up to and excluding its expiry second.
	if claims.ExpiresAt == nil || time.Now().Unix() >= claims.ExpiresAt.Unix() {
		return nil, NewFlowError(CodeTokenExpired, "token has expired", nil)
	}

	return claims, nil
}

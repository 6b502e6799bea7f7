package models

import (
	"time"
)

// Session represents an active login session backing a full-session token.
// The token itself is self-describing; the session row exists so tokens can
// be revoked server-side before they expire.
type Session struct {
	SessionID   string    `json:"sessionId"`
	AccountID   int64     `json:"accountId"`
	SubjectID   string    `json:"subjectId"`
	DisplayName string    `json:"displayName"`
	Host        string    `json:"host,omitempty"`
	UserAgent   string    `json:"userAgent,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Expiry      time.Time `json:"expiry"`
}

// IsExpired checks if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().UTC().After(s.Expiry)
}

type GetSessionsResponse struct {
	Sessions []*Session `json:"sessions"`
}

type VerifySessionResponse struct {
	SessionID string `json:"sessionId"`
	AccountID int64  `json:"accountId"`
	IsValid   bool   `json:"isValid"`
}

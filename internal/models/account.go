package models

import "time"

// Account is the durable user entity, created exactly once per human user
// when the second linking leg completes. Points and token-refresh mutations
// happen in unrelated subsystems; the linking core only ever creates it.
type Account struct {
	ID         int64  `json:"id"`
	ExternalID string `json:"externalId"`
	// SubjectID is the primary-assertion subject the account is keyed by.
	SubjectID   string `json:"subjectId"`
	DisplayName string `json:"displayName"`
	IconURL     string `json:"iconUrl,omitempty"`
	Email       string `json:"email,omitempty"`
	Points      int64  `json:"points"`

	FitnessUserID       string    `json:"fitnessUserId,omitempty"`
	FitnessAccessToken  string    `json:"-"`
	FitnessRefreshToken string    `json:"-"`
	FitnessTokenExpiry  time.Time `json:"-"`

	CodeHostUserID string `json:"codeHostUserId,omitempty"`
	CodeHostLogin  string `json:"codeHostLogin,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

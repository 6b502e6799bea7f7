package models

import "time"

// AssertionResult is the outcome of verifying a primary identity assertion
// (the Firebase-style ID token presented by the client). It is consumed once
// per primary-auth call and never stored as-is.
type AssertionResult struct {
	SubjectID    string `json:"subjectId"`
	DisplayName  string `json:"displayName"`
	IconURL      string `json:"iconUrl"`
	Email        string `json:"email,omitempty"`
	ExistingUser bool   `json:"existingUser"`
}

// ProviderIdentity is the normalized identity returned by an OAuth provider's
// user-info endpoint.
type ProviderIdentity struct {
	ProviderUserID string `json:"providerUserId"`
	Login          string `json:"login,omitempty"`
	DisplayName    string `json:"displayName"`
	Email          string `json:"email,omitempty"`
	AvatarURL      string `json:"avatarUrl,omitempty"`
}

// ProviderTokens holds the credentials returned by an authorization-code
// exchange.
type ProviderTokens struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

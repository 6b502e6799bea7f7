package models

// LinkNext names the provider leg the client must run next.
type LinkNext string

const (
	NextFitness  LinkNext = "fitness"
	NextCodeHost LinkNext = "codehost"
)

// VerifyPrimaryRequest is the input for the primary-auth endpoint. The
// fitness access token is optional; when present the fitness leg runs inline
// instead of through a redirect.
type VerifyPrimaryRequest struct {
	AssertionToken     string `json:"assertion_token"`
	FitnessAccessToken string `json:"fitness_access_token,omitempty"`
}

// PrimaryOutcome is the non-terminal response family shared by primary
// verification and the fitness callback. Done discriminates the two shapes:
// an existing user converges immediately with a session, a new user gets the
// next leg to run.
type PrimaryOutcome struct {
	Done bool `json:"done"`

	// Done == true
	SessionToken string   `json:"session_token,omitempty"`
	Account      *Account `json:"account,omitempty"`

	// Done == false
	Next             LinkNext         `json:"next,omitempty"`
	CorrelationToken string           `json:"correlation_token,omitempty"`
	AuthorizationURL string           `json:"authorization_url,omitempty"`
	PartialIdentity  *AssertionResult `json:"partial_identity,omitempty"`
}

// LinkCompleteResult is the terminal response of the code-host callback for a
// fully provisioned new user.
type LinkCompleteResult struct {
	Success         bool     `json:"success"`
	SessionToken    string   `json:"session_token"`
	Account         *Account `json:"account"`
	LinkedProviders []string `json:"linked_providers"`
}

// ErrorResponse is the stable failure shape surfaced to callers.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

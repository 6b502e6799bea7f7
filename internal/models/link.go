package models

import "time"

// LinkStage is the explicit stage of an in-flight account-linking flow.
// Completion calls made from the wrong stage are rejected instead of being
// inferred from which fields happen to be set.
type LinkStage string

const (
	// StageAwaitingFitness means the primary identity is verified and the
	// fitness-provider leg has not completed yet.
	StageAwaitingFitness LinkStage = "awaiting_fitness"
	// StageAwaitingCodeHost means the fitness leg is done and the code-host
	// leg is outstanding.
	StageAwaitingCodeHost LinkStage = "awaiting_codehost"
)

// LinkState is the server-side record bound to a correlation id while a user
// walks the redirect-based linking flow. The correlation id itself is an
// opaque random value; all identity data lives here, never in the browser.
type LinkState struct {
	Stage           LinkStage         `json:"stage"`
	Identity        AssertionResult   `json:"identity"`
	FitnessIdentity *ProviderIdentity `json:"fitnessIdentity,omitempty"`
	FitnessTokens   *ProviderTokens   `json:"fitnessTokens,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
}

package signon

// Stage is the state machine's current position in the login flow.
type Stage int

const (
	// StageIdle means the machine has not started yet.
	StageIdle Stage = iota
	// StageAwaitProviderButton polls for the identity provider button.
	StageAwaitProviderButton
	// StageAwaitIdentifierField polls for the username input.
	StageAwaitIdentifierField
	// StageAwaitPasswordField polls for the password input.
	StageAwaitPasswordField
	// StageAwaitRedirect waits for the post-login redirect to land.
	StageAwaitRedirect
	// StageDone means the landing page was reached.
	StageDone
	// StageFailed means the flow ended with an error.
	StageFailed
)

// String returns the stage name for logging.
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAwaitProviderButton:
		return "await-provider-button"
	case StageAwaitIdentifierField:
		return "await-identifier-field"
	case StageAwaitPasswordField:
		return "await-password-field"
	case StageAwaitRedirect:
		return "await-redirect"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

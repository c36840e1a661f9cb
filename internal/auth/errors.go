package auth

import "errors"

var (
	// ErrMissingState is returned when a callback arrives with no stored state.
	ErrMissingState = errors.New("no oauth state stored for this session")
	// ErrStateMismatch is returned when the callback state does not match the stored one.
	ErrStateMismatch = errors.New("oauth state mismatch")
	// ErrProviderError is returned when the provider reports an error parameter.
	ErrProviderError = errors.New("oauth provider reported an error")
	// ErrUnverifiedEmail is returned when the provider reports the email as unverified.
	ErrUnverifiedEmail = errors.New("email not verified by provider")
	// ErrNoCredentials is returned when a session holds no refreshable credentials.
	ErrNoCredentials = errors.New("no oauth credentials stored for this session")
)

package gate

import "errors"

// Sentinel errors returned by HybridGate.Authorize.
// Every denial wraps ErrUnauthorized so callers can match with errors.Is.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNoProfile         = errors.New("no profile assigned")
	ErrMissingPermission = errors.New("missing permission")
	ErrPolicyDenied      = errors.New("denied by resource policy")
)

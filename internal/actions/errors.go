package actions

import "errors"

// Rejection reasons carried by a Rejected result. They are recovered
// inside the dispatcher and coordinator and never returned as errors.
var (
	ErrPreconditionViolation = errors.New("precondition violation")
	ErrAuthorizationDenied   = errors.New("authorization denied")
	ErrUnknownAction         = errors.New("unknown action")
	ErrConversion            = errors.New("document is not convertible")
	ErrNotFound              = errors.New("not found")
	ErrNotImplemented        = errors.New("not implemented")
)

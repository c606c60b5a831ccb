package services

import "errors"

// Sentinel errors returned by the domain services. Handlers map these
// to HTTP status codes at their own boundary.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrForbidden           = errors.New("access denied")
	ErrAlreadyAssigned     = errors.New("request already assigned")
	ErrNoVolunteerAssigned = errors.New("no volunteer assigned yet")
	ErrRequestCancelled    = errors.New("request is cancelled")
	ErrTerminalStatus      = errors.New("request is already closed")
	ErrSenderRoleMismatch  = errors.New("sender role does not match account role")
)

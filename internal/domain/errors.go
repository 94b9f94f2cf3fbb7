package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotOwner             = errors.New("conversation owned by another attendant")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrTenantNotFound       = errors.New("tenant not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrInvalidID            = errors.New("invalid id")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAttendantRequired    = errors.New("attendant id required")
	ErrCustomerRefRequired  = errors.New("customer ref required")
	ErrEmptyMessage         = errors.New("campaign message is empty")
	ErrNoTargets            = errors.New("no campaign targets selected")
	ErrProductNameRequired  = errors.New("product name required")
	ErrInvalidPrice         = errors.New("invalid price")
)

// AlreadyClaimedError reports a claim attempt on an owned conversation,
// carrying the current owner so the caller can surface "locked by X".
type AlreadyClaimedError struct {
	Owner string
}

func (e *AlreadyClaimedError) Error() string {
	if e.Owner == "" {
		return "conversation already claimed"
	}
	return fmt.Sprintf("conversation already claimed by %s", e.Owner)
}

// AsAlreadyClaimed unwraps err into an AlreadyClaimedError when it is one.
func AsAlreadyClaimed(err error) (*AlreadyClaimedError, bool) {
	var claimed *AlreadyClaimedError
	if errors.As(err, &claimed) {
		return claimed, true
	}
	return nil, false
}

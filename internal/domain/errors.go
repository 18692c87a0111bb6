package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so transports can map to responses without leaking
// infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Registration flow errors. Every rejection maps to one user-facing message
// and resets the session to idle, except an incorrect code while retries
// remain (see CodeIncorrectError).
var (
	ErrNotIdentified          = errors.New("sender not identified")
	ErrSessionMissing         = errors.New("no registration step awaiting this input")
	ErrPhoneNotFound          = errors.New("phone not found in the school directory")
	ErrPlatformIDConflict     = errors.New("platform id and directory record do not match")
	ErrPhoneOwnershipMismatch = errors.New("submitted contact is not the sender's own")
	ErrEmailMissing           = errors.New("directory record has no email")
	ErrEmailDispatchFailed    = errors.New("could not send verification email")
	ErrCodeExpired            = errors.New("verification code expired")
	ErrCodeIncorrect          = errors.New("verification code incorrect")
	ErrAttemptsExhausted      = errors.New("verification attempts exhausted")
)

// CodeIncorrectError reports a wrong code submission while retries remain.
// errors.Is(err, ErrCodeIncorrect) holds for it.
type CodeIncorrectError struct {
	AttemptsLeft int
}

func (e *CodeIncorrectError) Error() string {
	return fmt.Sprintf("verification code incorrect, %d attempts left", e.AttemptsLeft)
}

func (e *CodeIncorrectError) Unwrap() error { return ErrCodeIncorrect }

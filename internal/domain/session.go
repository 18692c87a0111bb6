package domain

import "time"

// SessionState is the registration flow state for one platform user.
type SessionState string

const (
	StateIdle                 SessionState = "idle"
	StateAwaitingContact      SessionState = "awaiting_contact"
	StateAwaitingConfirmation SessionState = "awaiting_confirmation"
	StateAwaitingEmailCode    SessionState = "awaiting_email_code"
)

// MaxCodeAttempts caps wrong-code submissions per issued code.
const MaxCodeAttempts = 3

// ContactPending is held while the user confirms the record found by phone.
// Nothing durable has been written at this point.
type ContactPending struct {
	Phone      string // digits only
	PlatformID string
	Record     *DirectoryRecord // snapshot from the phone lookup
}

// CodePending is held while an emailed code awaits verification.
type CodePending struct {
	ContactPending
	Code     string
	IssuedAt time.Time
	Attempts int // 0-based
}

// Session is the ephemeral per-user flow state. It is never the source of
// truth for authorization; that is the directory record's platform binding.
//
// Invariant: Contact is non-nil only in StateAwaitingConfirmation, Code only
// in StateAwaitingEmailCode, and both are nil in StateIdle.
type Session struct {
	State   SessionState
	Contact *ContactPending
	Code    *CodePending
}

// NewSession returns the lazily-created default session.
func NewSession() *Session { return &Session{State: StateIdle} }

package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maxschool-bot/internal/domain"
	"github.com/maxschool-bot/internal/infrastructure/smtp"
	"github.com/maxschool-bot/internal/pkg/otp"
	"github.com/maxschool-bot/internal/pkg/phone"
)

// DirectoryStore is the slice of the school directory the protocol consumes.
// It is the only source of truth for "is this platform ID authorized".
type DirectoryStore interface {
	GetByPhone(ctx context.Context, rawPhone string) (*domain.DirectoryRecord, error)
	GetByPlatformID(ctx context.Context, platformID string) (*domain.DirectoryRecord, error)
	BindPlatformID(ctx context.Context, recordID, platformID string) (*domain.DirectoryRecord, error)
}

// StartResult reports the outcome of a start request.
type StartResult struct {
	// Record is non-nil when the platform ID is already bound; the flow was
	// not entered.
	Record *domain.DirectoryRecord
}

// ContactResult reports the outcome of a contact submission.
type ContactResult struct {
	Record *domain.DirectoryRecord
	// AlreadyBound is set when the record found by phone was already bound
	// to this same platform ID; confirmation and email steps were skipped.
	AlreadyBound bool
}

// ConfirmResult reports where the verification code was dispatched.
type ConfirmResult struct {
	Email string
}

// Service is the identity binding protocol: the state machine that takes a
// contact submission through lookup, conflict checks, confirmation and email
// code verification, ending in a durable platform-ID binding.
type Service interface {
	Start(ctx context.Context, platformID string) (*StartResult, error)
	SubmitContact(ctx context.Context, platformID, contactPhone, senderPhone string) (*ContactResult, error)
	Confirm(ctx context.Context, platformID string) (*ConfirmResult, error)
	Reject(ctx context.Context, platformID string) error
	VerifyCode(ctx context.Context, platformID, code string) (*domain.DirectoryRecord, error)
	Cancel(ctx context.Context, platformID string) error
	Authorized(ctx context.Context, platformID string) (*domain.DirectoryRecord, error)
	SessionState(ctx context.Context, platformID string) (domain.SessionState, error)
}

type service struct {
	directory DirectoryStore
	sessions  SessionStore
	codes     smtp.CodeSender
	locks     *userLocks
	now       func() time.Time
}

func NewService(directory DirectoryStore, sessions SessionStore, codes smtp.CodeSender) Service {
	return &service{
		directory: directory,
		sessions:  sessions,
		codes:     codes,
		locks:     newUserLocks(),
		now:       time.Now,
	}
}

// Start enters the flow for an unbound platform ID, or short-circuits with
// the existing record when the ID is already bound. The short-circuit never
// re-enters the flow and leaves session state untouched.
func (s *service) Start(ctx context.Context, platformID string) (*StartResult, error) {
	if platformID == "" {
		return nil, domain.ErrNotIdentified
	}
	unlock := s.locks.lock(platformID)
	defer unlock()

	rec, err := s.binding(ctx, platformID)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		return &StartResult{Record: rec}, nil
	}

	err = s.sessions.Put(ctx, platformID, &domain.Session{State: domain.StateAwaitingContact})
	if err != nil {
		return nil, err
	}
	return &StartResult{}, nil
}

// SubmitContact runs the lookup and conflict checks on a submitted contact
// card. senderPhone is the submitter's own phone as reported by the
// platform; it must match the contact's phone after normalization, otherwise
// the submission is rejected outright to prevent impersonation.
func (s *service) SubmitContact(ctx context.Context, platformID, contactPhone, senderPhone string) (*ContactResult, error) {
	if platformID == "" {
		return nil, domain.ErrNotIdentified
	}
	unlock := s.locks.lock(platformID)
	defer unlock()

	sess, err := s.sessions.Get(ctx, platformID)
	if err != nil {
		return nil, err
	}
	if sess.State != domain.StateAwaitingContact {
		// Unexpected submission: reject without touching state.
		return nil, domain.ErrSessionMissing
	}

	contact := phone.Normalize(contactPhone)
	sender := phone.Normalize(senderPhone)
	if contact == "" || sender == "" || contact != sender {
		return nil, s.reject(ctx, platformID, domain.ErrPhoneOwnershipMismatch)
	}

	rec, err := s.directory.GetByPhone(ctx, contact)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, s.reject(ctx, platformID, domain.ErrPhoneNotFound)
		}
		return nil, err
	}

	if rec.Bound() {
		if *rec.PlatformID == platformID {
			// Idempotent re-authorization: already bound to this very user,
			// so confirmation and email verification are skipped.
			if err := s.sessions.Reset(ctx, platformID); err != nil {
				return nil, err
			}
			return &ContactResult{Record: rec, AlreadyBound: true}, nil
		}
		return nil, s.reject(ctx, platformID, domain.ErrPlatformIDConflict)
	}

	// The record is free, but this platform ID may already own a different
	// record.
	other, err := s.binding(ctx, platformID)
	if err != nil {
		return nil, err
	}
	if other != nil && other.RecordID != rec.RecordID {
		return nil, s.reject(ctx, platformID, domain.ErrPlatformIDConflict)
	}

	if !rec.EmailSet() {
		// Email is the only verification channel; without one the flow
		// cannot proceed.
		return nil, s.reject(ctx, platformID, domain.ErrEmailMissing)
	}

	next := &domain.Session{
		State: domain.StateAwaitingConfirmation,
		Contact: &domain.ContactPending{
			Phone:      contact,
			PlatformID: platformID,
			Record:     rec,
		},
	}
	if err := s.sessions.Put(ctx, platformID, next); err != nil {
		return nil, err
	}
	return &ContactResult{Record: rec}, nil
}

// Confirm re-validates the uniqueness and email checks (state may have
// changed since the contact step), then dispatches a verification code.
// Nothing durable is written here.
func (s *service) Confirm(ctx context.Context, platformID string) (*ConfirmResult, error) {
	if platformID == "" {
		return nil, domain.ErrNotIdentified
	}
	unlock := s.locks.lock(platformID)
	defer unlock()

	sess, err := s.sessions.Get(ctx, platformID)
	if err != nil {
		return nil, err
	}
	if sess.State != domain.StateAwaitingConfirmation || sess.Contact == nil {
		return nil, domain.ErrSessionMissing
	}
	pending := sess.Contact

	other, err := s.binding(ctx, platformID)
	if err != nil {
		return nil, err
	}
	if other != nil && other.RecordID != pending.Record.RecordID {
		return nil, s.reject(ctx, platformID, domain.ErrPlatformIDConflict)
	}
	if !pending.Record.EmailSet() {
		return nil, s.reject(ctx, platformID, domain.ErrEmailMissing)
	}

	code, err := otp.Generate()
	if err != nil {
		return nil, err
	}
	email := *pending.Record.Email
	if err := s.codes.SendCode(email, code); err != nil {
		// Do not leave the user waiting for a code that never arrives.
		slog.Warn("verification email dispatch failed", "email", email, "err", err)
		return nil, s.reject(ctx, platformID, domain.ErrEmailDispatchFailed)
	}

	next := &domain.Session{
		State: domain.StateAwaitingEmailCode,
		Code: &domain.CodePending{
			ContactPending: *pending,
			Code:           code,
			IssuedAt:       s.now(),
		},
	}
	if err := s.sessions.Put(ctx, platformID, next); err != nil {
		return nil, err
	}
	return &ConfirmResult{Email: email}, nil
}

// Reject handles the "this is not me" answer: the flow ends with no durable
// change.
func (s *service) Reject(ctx context.Context, platformID string) error {
	if platformID == "" {
		return domain.ErrNotIdentified
	}
	unlock := s.locks.lock(platformID)
	defer unlock()

	sess, err := s.sessions.Get(ctx, platformID)
	if err != nil {
		return err
	}
	if sess.State != domain.StateAwaitingConfirmation {
		return domain.ErrSessionMissing
	}
	return s.sessions.Reset(ctx, platformID)
}

// VerifyCode checks the submitted token. On match it performs the one
// durable write of the whole flow, binds the platform ID, and re-reads the
// record as the canonical confirmation.
func (s *service) VerifyCode(ctx context.Context, platformID, code string) (*domain.DirectoryRecord, error) {
	if platformID == "" {
		return nil, domain.ErrNotIdentified
	}
	unlock := s.locks.lock(platformID)
	defer unlock()

	sess, err := s.sessions.Get(ctx, platformID)
	if err != nil {
		return nil, err
	}
	if sess.State != domain.StateAwaitingEmailCode || sess.Code == nil {
		return nil, domain.ErrSessionMissing
	}
	pending := sess.Code

	if !otp.Valid(pending.IssuedAt, s.now()) {
		return nil, s.reject(ctx, platformID, domain.ErrCodeExpired)
	}

	if code != pending.Code {
		pending.Attempts++
		if pending.Attempts >= domain.MaxCodeAttempts {
			return nil, s.reject(ctx, platformID, domain.ErrAttemptsExhausted)
		}
		if err := s.sessions.Put(ctx, platformID, sess); err != nil {
			return nil, err
		}
		return nil, &domain.CodeIncorrectError{AttemptsLeft: domain.MaxCodeAttempts - pending.Attempts}
	}

	rec, err := s.directory.BindPlatformID(ctx, pending.Record.RecordID, platformID)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			// Another flow won the race; the store's uniqueness backstop held.
			return nil, s.reject(ctx, platformID, domain.ErrPlatformIDConflict)
		}
		return nil, err
	}

	// Re-read through the binding index as the canonical confirmation.
	fresh, err := s.directory.GetByPlatformID(ctx, platformID)
	if err != nil {
		slog.Warn("post-bind re-read failed, using bind result", "platform_id", platformID, "err", err)
		fresh = rec
	}

	if err := s.sessions.Reset(ctx, platformID); err != nil {
		return nil, err
	}
	return fresh, nil
}

// Cancel aborts whatever step is in progress. Always succeeds.
func (s *service) Cancel(ctx context.Context, platformID string) error {
	if platformID == "" {
		return domain.ErrNotIdentified
	}
	unlock := s.locks.lock(platformID)
	defer unlock()

	return s.sessions.Reset(ctx, platformID)
}

// Authorized returns the bound directory record for the platform ID, or nil
// when no binding exists. The session is never consulted.
func (s *service) Authorized(ctx context.Context, platformID string) (*domain.DirectoryRecord, error) {
	if platformID == "" {
		return nil, domain.ErrNotIdentified
	}
	return s.binding(ctx, platformID)
}

func (s *service) SessionState(ctx context.Context, platformID string) (domain.SessionState, error) {
	if platformID == "" {
		return "", domain.ErrNotIdentified
	}
	sess, err := s.sessions.Get(ctx, platformID)
	if err != nil {
		return "", err
	}
	return sess.State, nil
}

// binding looks up the durable platform-ID binding; a missing record is not
// an error here.
func (s *service) binding(ctx context.Context, platformID string) (*domain.DirectoryRecord, error) {
	rec, err := s.directory.GetByPlatformID(ctx, platformID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup binding: %w", err)
	}
	return rec, nil
}

// reject resets the session to idle and returns reason, so terminal
// rejections read as a single return at the call site.
func (s *service) reject(ctx context.Context, platformID string, reason error) error {
	if err := s.sessions.Reset(ctx, platformID); err != nil {
		slog.Warn("session reset failed", "platform_id", platformID, "err", err)
	}
	return reason
}

package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/maxschool-bot/internal/domain"
	"github.com/maxschool-bot/internal/pkg/phone"
)

// User-facing texts. The bot speaks in fixed phrases so school staff can
// recognize and document every reply.
const (
	msgShareContact = "Hello! To get started, please confirm your phone number using the button below."
	msgAlreadyBound = "You are already registered."

	msgConfirmPrompt = "We found this directory entry for your number:\n\n%s\n\nIs that you?"
	msgCodeSent      = "We sent a 6-digit verification code to *%s*. Please enter it here. The code is valid for 5 minutes."
	msgBoundSuccess  = "Done! Your account is now linked.\n\n%s"
	msgRejectedAck   = "Okay, we won't link this entry. If this was a mistake, contact the school office and try again with /start."
	msgCancelled     = "Registration cancelled. Send /start to begin again."

	msgUnexpectedInput  = "I wasn't expecting that right now. Send /start to begin registration."
	msgForeignContact   = "Please share your own contact using the button, not someone else's."
	msgPhoneNotFound    = "This phone number is not in the school directory. Please contact the school office."
	msgConflict         = "This entry cannot be linked to your account. Please contact the school office."
	msgEmailMissing     = "Your directory entry has no email address, so we cannot verify you. Please contact the school office."
	msgEmailDispatch    = "We could not send the verification email. Please try again later with /start."
	msgCodeExpired      = "The verification code has expired. Send /start to request a new one."
	msgCodeIncorrect    = "Incorrect code. Attempts left: %d."
	msgAttemptsExceeded = "Too many incorrect attempts. Send /start to begin again."
	msgGenericFailure   = "Something went wrong. Please try again later."

	msgNotAuthorized  = "You are not registered yet. Send /start to link your account."
	msgNotIdentified  = "We could not identify your account. Please try again."
	msgAwaitingCode   = "Please enter the 6-digit code from the email, or send /cancel."
	msgAwaitingAnswer = "Please answer with the buttons above, or send /cancel."

	msgHelpCommands = "/start — begin registration\n" +
		"/status — show your registration status\n" +
		"/cancel — abort the current step\n" +
		"/help — this message"

	msgHelp = "This bot links your messenger account to the school directory.\n\n" +
		msgHelpCommands

	msgHelpAuthorized = "You are registered as *%s* (%s). " +
		"Use the \"My data\" button to see your directory entry.\n\n" +
		msgHelpCommands
)

var roleLabels = map[string]string{
	domain.RoleStudent: "Student",
	domain.RoleTeacher: "Teacher",
	domain.RoleParent:  "Parent",
	domain.RoleAdmin:   "Administrator",
}

// helpText picks the help variant: registered users get a greeting with
// their name and role, everyone else the generic command list.
func helpText(rec *domain.DirectoryRecord) string {
	if rec == nil {
		return msgHelp
	}
	role := rec.Role
	if label, ok := roleLabels[rec.Role]; ok {
		role = label
	}
	return fmt.Sprintf(msgHelpAuthorized, rec.FullName, role)
}

// renderRecord formats a directory entry for chat output.
func renderRecord(rec *domain.DirectoryRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*", rec.FullName)
	if label, ok := roleLabels[rec.Role]; ok {
		fmt.Fprintf(&b, "\nRole: %s", label)
	}
	if rec.GroupName != nil && *rec.GroupName != "" {
		fmt.Fprintf(&b, "\nClass: %s", *rec.GroupName)
	}
	if rec.Phone != nil && *rec.Phone != "" {
		fmt.Fprintf(&b, "\nPhone: %s", phone.Display(*rec.Phone))
	}
	return b.String()
}

// replyForErr maps a registration flow error to its user-facing reply.
func replyForErr(err error) string {
	var incorrect *domain.CodeIncorrectError
	switch {
	case errors.As(err, &incorrect):
		return fmt.Sprintf(msgCodeIncorrect, incorrect.AttemptsLeft)
	case errors.Is(err, domain.ErrNotIdentified):
		return msgNotIdentified
	case errors.Is(err, domain.ErrSessionMissing):
		return msgUnexpectedInput
	case errors.Is(err, domain.ErrPhoneOwnershipMismatch):
		return msgForeignContact
	case errors.Is(err, domain.ErrPhoneNotFound):
		return msgPhoneNotFound
	case errors.Is(err, domain.ErrPlatformIDConflict):
		return msgConflict
	case errors.Is(err, domain.ErrEmailMissing):
		return msgEmailMissing
	case errors.Is(err, domain.ErrEmailDispatchFailed):
		return msgEmailDispatch
	case errors.Is(err, domain.ErrCodeExpired):
		return msgCodeExpired
	case errors.Is(err, domain.ErrAttemptsExhausted):
		return msgAttemptsExceeded
	default:
		return msgGenericFailure
	}
}

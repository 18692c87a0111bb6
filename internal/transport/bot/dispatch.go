package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/maxschool-bot/internal/application/registration"
	"github.com/maxschool-bot/internal/domain"
	"github.com/maxschool-bot/internal/infrastructure/maxapi"
)

// Dispatcher routes webhook updates to the registration flow and renders
// replies. It holds no state of its own; everything lives in the flow's
// session store.
type Dispatcher struct {
	reg     registration.Service
	replier maxapi.Replier
}

func NewDispatcher(reg registration.Service, replier maxapi.Replier) *Dispatcher {
	return &Dispatcher{reg: reg, replier: replier}
}

// Dispatch handles one inbound update. Errors from the flow are rendered as
// chat replies; only transport failures propagate to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, upd *maxapi.Update) error {
	switch upd.UpdateType {
	case "message_created":
		if upd.Message == nil {
			return nil
		}
		return d.handleMessage(ctx, upd.Message)
	case "message_callback":
		if upd.Callback == nil {
			return nil
		}
		return d.handleCallback(ctx, upd.Callback)
	default:
		// Other update types (bot_added, chat events) are not ours to handle.
		return nil
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg *maxapi.Message) error {
	userID := msg.Sender.UserID
	if userID == 0 {
		slog.Warn("message without sender id dropped")
		return nil
	}
	pid := strconv.FormatInt(userID, 10)

	if contact := msg.Contact(); contact != nil {
		return d.handleContact(ctx, userID, pid, msg, contact)
	}

	text := strings.TrimSpace(msg.Body.Text)
	if strings.HasPrefix(text, "/") {
		return d.handleCommand(ctx, userID, pid, text)
	}
	return d.handleText(ctx, userID, pid, text)
}

func (d *Dispatcher) handleCommand(ctx context.Context, userID int64, pid, text string) error {
	cmd := text
	if i := strings.IndexAny(cmd, " @"); i > 0 {
		cmd = cmd[:i]
	}
	switch cmd {
	case "/start":
		res, err := d.reg.Start(ctx, pid)
		if err != nil {
			return d.reply(ctx, userID, replyForErr(err), nil)
		}
		if res.Record != nil {
			return d.reply(ctx, userID,
				msgAlreadyBound+"\n\n"+renderRecord(res.Record), mainKeyboard())
		}
		return d.reply(ctx, userID, msgShareContact, shareContactKeyboard())

	case "/status":
		return d.sendStatus(ctx, userID, pid)

	case "/cancel":
		if err := d.reg.Cancel(ctx, pid); err != nil {
			return d.reply(ctx, userID, replyForErr(err), nil)
		}
		return d.reply(ctx, userID, msgCancelled, nil)

	case "/help":
		return d.sendHelp(ctx, userID, pid)

	default:
		return d.sendHelp(ctx, userID, pid)
	}
}

func (d *Dispatcher) handleContact(ctx context.Context, userID int64, pid string, msg *maxapi.Message, contact *maxapi.Attachment) error {
	contactPhone := contact.Payload.Tel
	if contactPhone == "" && contact.Payload.MaxInfo != nil {
		contactPhone = contact.Payload.MaxInfo.Phone
	}
	// The sender's own phone is trusted only from the platform's contact
	// card, not from free-typed text.
	senderPhone := msg.Sender.Phone
	if info := contact.Payload.MaxInfo; info != nil && info.UserID == userID {
		senderPhone = info.Phone
	}

	res, err := d.reg.SubmitContact(ctx, pid, contactPhone, senderPhone)
	if err != nil {
		return d.reply(ctx, userID, replyForErr(err), nil)
	}
	if res.AlreadyBound {
		return d.reply(ctx, userID,
			msgAlreadyBound+"\n\n"+renderRecord(res.Record), mainKeyboard())
	}
	prompt := fmt.Sprintf(msgConfirmPrompt, renderRecord(res.Record))
	return d.reply(ctx, userID, prompt, confirmKeyboard())
}

func (d *Dispatcher) handleCallback(ctx context.Context, cb *maxapi.Callback) error {
	userID := cb.User.UserID
	if userID == 0 {
		// No sender to act for, but the button press can still be answered.
		slog.Warn("callback without user id", "callback_id", cb.CallbackID)
		if err := d.replier.AnswerCallback(ctx, cb.CallbackID, msgNotIdentified); err != nil {
			slog.Warn("callback answer failed", "callback_id", cb.CallbackID, "err", err)
		}
		return nil
	}
	pid := strconv.FormatInt(userID, 10)

	// Acknowledge the button press regardless of the outcome; a stuck
	// spinner looks like a dead bot.
	if err := d.replier.AnswerCallback(ctx, cb.CallbackID, ""); err != nil {
		slog.Warn("callback answer failed", "callback_id", cb.CallbackID, "err", err)
	}

	switch cb.Payload {
	case payloadConfirmData:
		res, err := d.reg.Confirm(ctx, pid)
		if err != nil {
			return d.reply(ctx, userID, replyForErr(err), nil)
		}
		return d.reply(ctx, userID, fmt.Sprintf(msgCodeSent, res.Email), nil)

	case payloadRejectData:
		if err := d.reg.Reject(ctx, pid); err != nil {
			return d.reply(ctx, userID, replyForErr(err), nil)
		}
		return d.reply(ctx, userID, msgRejectedAck, nil)

	case payloadShowMyData:
		return d.sendStatus(ctx, userID, pid)

	case payloadHelp:
		return d.sendHelp(ctx, userID, pid)

	default:
		return d.reply(ctx, userID, msgUnexpectedInput, nil)
	}
}

// handleText routes free text by session state: a pending email code eats the
// text as a code attempt, an in-flight step gets a nudge, and everything else
// gets the not-authorized default.
func (d *Dispatcher) handleText(ctx context.Context, userID int64, pid, text string) error {
	state, err := d.reg.SessionState(ctx, pid)
	if err != nil {
		return d.reply(ctx, userID, replyForErr(err), nil)
	}

	switch state {
	case domain.StateAwaitingEmailCode:
		rec, err := d.reg.VerifyCode(ctx, pid, text)
		if err != nil {
			return d.reply(ctx, userID, replyForErr(err), nil)
		}
		return d.reply(ctx, userID,
			fmt.Sprintf(msgBoundSuccess, renderRecord(rec)), mainKeyboard())

	case domain.StateAwaitingContact:
		return d.reply(ctx, userID, msgShareContact, shareContactKeyboard())

	case domain.StateAwaitingConfirmation:
		return d.reply(ctx, userID, msgAwaitingAnswer, nil)

	default:
		rec, err := d.reg.Authorized(ctx, pid)
		if err != nil {
			return d.reply(ctx, userID, replyForErr(err), nil)
		}
		if rec == nil {
			return d.reply(ctx, userID, msgNotAuthorized, nil)
		}
		return d.reply(ctx, userID, renderRecord(rec), mainKeyboard())
	}
}

func (d *Dispatcher) sendHelp(ctx context.Context, userID int64, pid string) error {
	rec, err := d.reg.Authorized(ctx, pid)
	if err != nil {
		return d.reply(ctx, userID, replyForErr(err), nil)
	}
	if rec != nil {
		return d.reply(ctx, userID, helpText(rec), mainKeyboard())
	}
	return d.reply(ctx, userID, msgHelp, nil)
}

func (d *Dispatcher) sendStatus(ctx context.Context, userID int64, pid string) error {
	rec, err := d.reg.Authorized(ctx, pid)
	if err != nil {
		return d.reply(ctx, userID, replyForErr(err), nil)
	}
	if rec != nil {
		return d.reply(ctx, userID,
			msgAlreadyBound+"\n\n"+renderRecord(rec), mainKeyboard())
	}

	state, err := d.reg.SessionState(ctx, pid)
	if err != nil {
		return d.reply(ctx, userID, replyForErr(err), nil)
	}
	switch state {
	case domain.StateAwaitingContact:
		return d.reply(ctx, userID, msgShareContact, shareContactKeyboard())
	case domain.StateAwaitingConfirmation:
		return d.reply(ctx, userID, msgAwaitingAnswer, nil)
	case domain.StateAwaitingEmailCode:
		return d.reply(ctx, userID, msgAwaitingCode, nil)
	default:
		return d.reply(ctx, userID, msgNotAuthorized, nil)
	}
}

func (d *Dispatcher) reply(ctx context.Context, userID int64, text string, kb *maxapi.Keyboard) error {
	if err := d.replier.SendMessage(ctx, userID, text, kb); err != nil {
		return fmt.Errorf("send reply to %d: %w", userID, err)
	}
	return nil
}

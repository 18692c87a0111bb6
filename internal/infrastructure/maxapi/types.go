package maxapi

// Update is the envelope the platform posts to the webhook.
type Update struct {
	UpdateType string    `json:"update_type"` // "message_created" | "message_callback"
	Timestamp  int64     `json:"timestamp"`
	Message    *Message  `json:"message,omitempty"`
	Callback   *Callback `json:"callback,omitempty"`
}

// Sender identifies the platform user behind a message or callback.
// UserID is the stable platform ID the registration flow binds to a
// directory record.
type Sender struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

type Message struct {
	Sender Sender      `json:"sender"`
	Body   MessageBody `json:"body"`
}

type MessageBody struct {
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment carries a shared contact card. Only "contact" attachments are
// inspected on the inbound path.
type Attachment struct {
	Type    string         `json:"type"`
	Payload ContactPayload `json:"payload,omitempty"`
}

// ContactPayload is the contact card body. MaxInfo is present only when the
// contact was shared through the request-contact button, which is the one
// submission path the flow accepts.
type ContactPayload struct {
	Tel     string  `json:"tel,omitempty"`
	VcfInfo string  `json:"vcf_info,omitempty"`
	MaxInfo *Sender `json:"max_info,omitempty"`
}

// Callback is an inline-keyboard button press.
type Callback struct {
	CallbackID string `json:"callback_id"`
	Payload    string `json:"payload"`
	User       Sender `json:"user"`
}

// Contact extracts the first contact attachment from a message, or nil.
func (m *Message) Contact() *Attachment {
	for i := range m.Body.Attachments {
		if m.Body.Attachments[i].Type == "contact" {
			return &m.Body.Attachments[i]
		}
	}
	return nil
}

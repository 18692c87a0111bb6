package maxapi

// Button types understood by the platform.
const (
	ButtonCallback       = "callback"
	ButtonLink           = "link"
	ButtonRequestContact = "request_contact"
)

// Keyboard is an inline keyboard attached to an outbound message.
type Keyboard struct {
	Buttons [][]Button `json:"buttons"`
}

type Button struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	Payload string `json:"payload,omitempty"`
	URL     string `json:"url,omitempty"`
}

func CallbackButton(text, payload string) Button {
	return Button{Type: ButtonCallback, Text: text, Payload: payload}
}

func LinkButton(text, url string) Button {
	return Button{Type: ButtonLink, Text: text, URL: url}
}

func RequestContactButton(text string) Button {
	return Button{Type: ButtonRequestContact, Text: text}
}

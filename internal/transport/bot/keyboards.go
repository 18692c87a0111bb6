package bot

import "github.com/maxschool-bot/internal/infrastructure/maxapi"

// Callback payloads carried by inline buttons.
const (
	payloadConfirmData = "confirm_data"
	payloadRejectData  = "reject_data"
	payloadShowMyData  = "show_my_data"
	payloadHelp        = "help_callback"
)

func shareContactKeyboard() *maxapi.Keyboard {
	return &maxapi.Keyboard{Buttons: [][]maxapi.Button{
		{maxapi.RequestContactButton("Share my phone number")},
	}}
}

func confirmKeyboard() *maxapi.Keyboard {
	return &maxapi.Keyboard{Buttons: [][]maxapi.Button{
		{maxapi.CallbackButton("Yes, that's me", payloadConfirmData)},
		{maxapi.CallbackButton("No, that's not me", payloadRejectData)},
	}}
}

func mainKeyboard() *maxapi.Keyboard {
	return &maxapi.Keyboard{Buttons: [][]maxapi.Button{
		{maxapi.CallbackButton("My data", payloadShowMyData)},
		{maxapi.CallbackButton("Help", payloadHelp)},
	}}
}

package nav

// Button is one menu option: a label and the token its press sends back.
type Button struct {
	Label string
	Token Token
}

// Screen is a render instruction for the transport layer: Markdown text plus
// an ordered button list.
type Screen struct {
	Text    string
	Buttons []Button
}

// Response is the engine's answer to one interaction. Exactly one of Screen
// or Alert is set: a Screen replaces the current message, an Alert is shown
// as a transient notice while the screen stays unchanged.
type Response struct {
	Screen *Screen
	Alert  string
}

func screenResponse(s Screen) Response {
	return Response{Screen: &s}
}

func alertResponse(text string) Response {
	return Response{Alert: text}
}

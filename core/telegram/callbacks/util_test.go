package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackDataRaw(t *testing.T) {
	cb := &tele.Callback{Data: "\fprogram|3"}
	unique, payload := ParseCallbackData(cb)
	if unique != "program" || payload != "3" {
		t.Fatalf("got (%q, %q)", unique, payload)
	}
}

func TestParseCallbackDataPreSplit(t *testing.T) {
	// Telebot sets Unique and strips it from Data before dispatch.
	cb := &tele.Callback{Unique: "figure_ver", Data: "100:5"}
	unique, payload := ParseCallbackData(cb)
	if unique != "figure_ver" || payload != "100:5" {
		t.Fatalf("got (%q, %q)", unique, payload)
	}
}

func TestParseCallbackDataNoPayload(t *testing.T) {
	unique, payload := ParseCallbackData(&tele.Callback{Data: "\fbuy"})
	if unique != "buy" || payload != "" {
		t.Fatalf("got (%q, %q)", unique, payload)
	}
}

func TestParseCallbackDataNil(t *testing.T) {
	unique, payload := ParseCallbackData(nil)
	if unique != "" || payload != "" {
		t.Fatalf("got (%q, %q)", unique, payload)
	}
}

package catalog

import (
	"encoding/json"
	"testing"
)

func TestResolveFieldPrecedence(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"text wins", `{"text": "a", "content": "b", "body": "c"}`, "a"},
		{"content second", `{"content": "b", "body": "c"}`, "b"},
		{"body last", `{"body": "c"}`, "c"},
		{"none present", `{"other": "x"}`, ""},
		{"empty object", `{}`, ""},
		{"non-string skipped", `{"text": 5, "content": "b"}`, "b"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveField(json.RawMessage(tc.doc), bodyCandidates, "")
			if got != tc.want {
				t.Fatalf("ResolveField(%s) = %q, want %q", tc.doc, got, tc.want)
			}
		})
	}
}

func TestResolveFieldBadInput(t *testing.T) {
	if got := ResolveField(nil, bodyCandidates, "fallback"); got != "fallback" {
		t.Fatalf("nil doc: got %q", got)
	}
	if got := ResolveField(json.RawMessage(`not json`), bodyCandidates, "fallback"); got != "fallback" {
		t.Fatalf("unparsable doc: got %q", got)
	}
	if got := ResolveField(json.RawMessage(`[1,2]`), bodyCandidates, "fallback"); got != "fallback" {
		t.Fatalf("non-object doc: got %q", got)
	}
}

func TestBlockBody(t *testing.T) {
	b := Block{Kind: "notes", Content: []byte(`{"content": "Late hip action."}`)}
	if got := b.Body(); got != "Late hip action." {
		t.Fatalf("Body() = %q", got)
	}
	empty := Block{Kind: "notes"}
	if got := empty.Body(); got != "" {
		t.Fatalf("empty block Body() = %q", got)
	}
}

package nav

import (
	"errors"
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := []Token{
		{Kind: KindProgram, ProgramID: 3},
		{Kind: KindDance, DanceID: 7, ProgramID: 3},
		{Kind: KindFigure, FigureID: 12, DanceID: 7, ProgramID: 3},
		{Kind: KindFigureVer, FigureID: 12, AuthorID: 2},
		{Kind: KindBackRoot},
		{Kind: KindBuy},
		{Kind: KindAbout},
		{Kind: KindAdmin},
	}
	for _, tok := range tokens {
		raw := tok.String()
		parsed, err := Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q): %v", raw, err)
		}
		if parsed != tok {
			t.Fatalf("round trip %q: got %+v, want %+v", raw, parsed, tok)
		}
	}
}

func TestTokenSplitRejoin(t *testing.T) {
	tokens := []Token{
		{Kind: KindProgram, ProgramID: 3},
		{Kind: KindDance, DanceID: 7, ProgramID: 3},
		{Kind: KindFigure, FigureID: 12, DanceID: 7, ProgramID: 3},
		{Kind: KindFigureVer, FigureID: 12, AuthorID: 2},
		{Kind: KindBackRoot},
		{Kind: KindBuy},
	}
	for _, tok := range tokens {
		key, payload := tok.Split()
		parsed, err := ParseParts(key, payload)
		if err != nil {
			t.Fatalf("ParseParts(%q, %q): %v", key, payload, err)
		}
		if parsed != tok {
			t.Fatalf("split rejoin (%q, %q): got %+v, want %+v", key, payload, parsed, tok)
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"unknown",
		"program",
		"program:",
		"program:abc",
		"program:0",
		"program:-4",
		"program:1:2",
		"dance:5",
		"dance:5:2:9",
		"figure:1:2",
		"figure:1:2:3:4",
		"figure_ver:1",
		"figure_ver:1:2:3",
		"back",
		"back:home",
		"buy:1",
		"about:x",
		"admin:1",
	}
	for _, raw := range cases {
		if _, err := Parse(raw); !errors.Is(err, ErrMalformedToken) {
			t.Errorf("Parse(%q): expected ErrMalformedToken, got %v", raw, err)
		}
	}
}

func TestParseTrimsWhitespace(t *testing.T) {
	tok, err := Parse("  program:4 ")
	if err != nil {
		t.Fatalf("parse with padding: %v", err)
	}
	if tok.Kind != KindProgram || tok.ProgramID != 4 {
		t.Fatalf("unexpected token: %+v", tok)
	}
}

func TestCallbackKeysCoverEveryKind(t *testing.T) {
	keys := CallbackKeys()
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			t.Fatalf("duplicate callback key %q", k)
		}
		seen[k] = true
	}

	tokens := []Token{
		{Kind: KindProgram, ProgramID: 1},
		{Kind: KindDance, DanceID: 1, ProgramID: 1},
		{Kind: KindFigure, FigureID: 1, DanceID: 1, ProgramID: 1},
		{Kind: KindFigureVer, FigureID: 1, AuthorID: 1},
		{Kind: KindBackRoot},
		{Kind: KindBuy},
		{Kind: KindAbout},
		{Kind: KindAdmin},
	}
	for _, tok := range tokens {
		key, _ := tok.Split()
		if !seen[key] {
			t.Errorf("token %+v splits to unrouted key %q", tok, key)
		}
	}
}

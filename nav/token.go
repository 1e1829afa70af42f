package nav

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedToken is returned for callback payloads that do not match any
// known token shape. The router answers these with a transient alert.
var ErrMalformedToken = errors.New("nav: malformed token")

// Kind enumerates the closed set of navigation token shapes.
type Kind int

const (
	KindProgram Kind = iota
	KindDance
	KindFigure
	KindFigureVer
	KindBackRoot
	KindBuy
	KindAbout
	KindAdmin
)

const (
	prefixProgram   = "program"
	prefixDance     = "dance"
	prefixFigure    = "figure"
	prefixFigureVer = "figure_ver"
	prefixBack      = "back"
	prefixBuy       = "buy"
	prefixAbout     = "about"
	prefixAdmin     = "admin"
)

// Token is the parsed form of a colon-delimited navigation payload. All
// navigation context travels in the token; the engine keeps no session
// state between interactions.
type Token struct {
	Kind      Kind
	ProgramID int64
	DanceID   int64
	FigureID  int64
	AuthorID  int64
}

// Parse converts a raw payload into a typed token, rejecting unknown shapes.
func Parse(raw string) (Token, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	switch parts[0] {
	case prefixProgram:
		if len(parts) != 2 {
			return Token{}, ErrMalformedToken
		}
		id, err := parseID(parts[1])
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: KindProgram, ProgramID: id}, nil
	case prefixDance:
		if len(parts) != 3 {
			return Token{}, ErrMalformedToken
		}
		id, err := parseID(parts[1])
		if err != nil {
			return Token{}, err
		}
		programID, err := parseID(parts[2])
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: KindDance, DanceID: id, ProgramID: programID}, nil
	case prefixFigure:
		if len(parts) != 4 {
			return Token{}, ErrMalformedToken
		}
		id, err := parseID(parts[1])
		if err != nil {
			return Token{}, err
		}
		danceID, err := parseID(parts[2])
		if err != nil {
			return Token{}, err
		}
		programID, err := parseID(parts[3])
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: KindFigure, FigureID: id, DanceID: danceID, ProgramID: programID}, nil
	case prefixFigureVer:
		if len(parts) != 3 {
			return Token{}, ErrMalformedToken
		}
		figureID, err := parseID(parts[1])
		if err != nil {
			return Token{}, err
		}
		authorID, err := parseID(parts[2])
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: KindFigureVer, FigureID: figureID, AuthorID: authorID}, nil
	case prefixBack:
		if len(parts) != 2 || parts[1] != "root" {
			return Token{}, ErrMalformedToken
		}
		return Token{Kind: KindBackRoot}, nil
	case prefixBuy, prefixAbout, prefixAdmin:
		if len(parts) != 1 {
			return Token{}, ErrMalformedToken
		}
		switch parts[0] {
		case prefixBuy:
			return Token{Kind: KindBuy}, nil
		case prefixAbout:
			return Token{Kind: KindAbout}, nil
		default:
			return Token{Kind: KindAdmin}, nil
		}
	}
	return Token{}, ErrMalformedToken
}

// ParseParts rebuilds a token from the callback key and its payload, as
// delivered by the transport's callback encoding.
func ParseParts(key, payload string) (Token, error) {
	if payload == "" {
		return Parse(key)
	}
	return Parse(key + ":" + payload)
}

// String re-encodes the token into its wire form.
func (t Token) String() string {
	switch t.Kind {
	case KindProgram:
		return fmt.Sprintf("%s:%d", prefixProgram, t.ProgramID)
	case KindDance:
		return fmt.Sprintf("%s:%d:%d", prefixDance, t.DanceID, t.ProgramID)
	case KindFigure:
		return fmt.Sprintf("%s:%d:%d:%d", prefixFigure, t.FigureID, t.DanceID, t.ProgramID)
	case KindFigureVer:
		return fmt.Sprintf("%s:%d:%d", prefixFigureVer, t.FigureID, t.AuthorID)
	case KindBackRoot:
		return prefixBack + ":root"
	case KindBuy:
		return prefixBuy
	case KindAbout:
		return prefixAbout
	case KindAdmin:
		return prefixAdmin
	}
	return ""
}

// Split separates the wire form into the callback key and the remaining
// payload, matching how inline buttons encode their data.
func (t Token) Split() (key, payload string) {
	raw := t.String()
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		return raw[:i], raw[i+1:]
	}
	return raw, ""
}

// CallbackKeys lists every token prefix the transport must route.
func CallbackKeys() []string {
	return []string{
		prefixProgram, prefixDance, prefixFigure, prefixFigureVer,
		prefixBack, prefixBuy, prefixAbout, prefixAdmin,
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrMalformedToken
	}
	return id, nil
}

package catalog

import (
	"encoding/json"

	"github.com/jmoiron/sqlx/types"
)

// Program is a root-level catalogue node, e.g. a syllabus programme.
type Program struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Dance belongs to exactly one program.
type Dance struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	ProgramID int64  `db:"program_id"`
}

// Figure is an atomic dance pattern, the unit of free-tier metering.
type Figure struct {
	ID      int64  `db:"id"`
	Name    string `db:"name"`
	DanceID int64  `db:"dance_id"`
}

// Author is a technique author; one figure may carry several authored
// interpretations.
type Author struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// Block is one ordered paragraph of technique text belonging to a
// (figure, author) variant. Content is stored as a JSON document whose text
// field name has drifted across catalogue imports.
type Block struct {
	Kind     string         `db:"block"`
	Content  types.JSONText `db:"content"`
	Position int            `db:"position"`
}

// bodyCandidates is the fixed precedence order for the block text field.
var bodyCandidates = []string{"text", "content", "body"}

// Body extracts the block's text, tolerating the known content-field drift.
func (b Block) Body() string {
	return ResolveField(json.RawMessage(b.Content), bodyCandidates, "")
}

// ResolveField returns the first present candidate key in a JSON document,
// or def when the document is unparsable or carries none of them.
func ResolveField(doc json.RawMessage, candidates []string, def string) string {
	if len(doc) == 0 {
		return def
	}
	var fields map[string]any
	if err := json.Unmarshal(doc, &fields); err != nil {
		return def
	}
	for _, key := range candidates {
		v, ok := fields[key]
		if !ok {
			continue
		}
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

package nav

import (
	"fmt"
	"strings"

	"latinbot/catalog"
	"latinbot/core/telegram/format"
)

const (
	textGreeting = "Hi! This is a Latin technique guide based on the *Walter Laird* book.\n\n" +
		"▫️ The free tier opens up to *%d figures*.\n" +
		"▫️ Full access by subscription — *%s* (payment via %s).\n\n" +
		"Pick a program:"
	textEmptyCatalogue = "The catalogue is empty for now. Check back soon!"
	textPickDance      = "Pick a dance:"
	textPickFigure     = "Pick a figure:"
	textPickAuthor     = "Pick a technique author:"
	textNoDances       = "No dances in this program yet."
	textNoFigures      = "No figures in this dance yet."
	textNoAuthors      = "No author descriptions for this figure yet."
	textAbout          = "This bot is a structured guide to Latin dance technique: " +
		"programs, dances, figures and authored descriptions.\n\n" +
		"The free tier opens up to *%d figures*; a subscription unlocks everything."
	textBuy = "⭐ Full access by subscription — *%s*.\n\n" +
		"1) Pay to %s\n" +
		"2) Send them your username\n" +
		"3) They will activate your subscription"
	textQuotaExhausted = "🔥 You have used all *%d free figures*.\n\n" +
		"To get full access:\n" +
		"1) Pay %s to %s\n" +
		"2) Send them your username\n" +
		"3) They will activate your subscription"
	textAdmin = "🛠 *Admin panel*\n\n" +
		"Users: %d\n" +
		"Subscribers: %d\n" +
		"Figure grants: %d"

	labelAbout    = "ℹ️ About"
	labelBuy      = "⭐ Full access"
	labelAdmin    = "🛠 Admin"
	labelBack     = "⬅️ Back"
	labelBackRoot = "⏮ Start over"
	labelByAuthor = "By %s"

	alertFigureGone = "This figure is no longer available."
	alertAuthorGone = "This author is no longer available."
	alertNoBlocks   = "No technique blocks for this version."
	alertNotAllowed = "Not allowed."

	truncationMarker = "\n\n…text truncated."
)

// blockHeadings maps block kinds to their rendered section titles. Kinds
// without a mapping render body text only.
var blockHeadings = map[string]string{
	"steps_leader":   "🕺 *Leader's steps*",
	"steps_follower": "💃 *Follower's steps*",
	"shaping":        "🌀 *Shaping*",
	"bounce":         "🔸 *Bounce*",
	"notes":          "✏️ *Notes*",
	"links":          "🔗 *Combinations*",
}

// renderDetail assembles the technique text for one (figure, author)
// variant: a title block, then every content block under its kind heading in
// position order, blank-line separated, cut at limit runes with a marker.
func renderDetail(figureName, authorName string, blocks []catalog.Block, limit int) (string, bool) {
	parts := []string{
		fmt.Sprintf("*%s*", mdSafe(figureName)),
		fmt.Sprintf("_by %s_", mdSafe(authorName)),
	}
	for _, b := range blocks {
		if heading, ok := blockHeadings[b.Kind]; ok {
			parts = append(parts, heading)
		}
		if body := b.Body(); body != "" {
			parts = append(parts, body)
		}
	}
	text := strings.Join(parts, "\n\n")
	return truncate(text, limit)
}

// truncate cuts text to limit runes and appends the truncation marker. Text
// is never dropped silently.
func truncate(text string, limit int) (string, bool) {
	if limit <= 0 {
		return text, false
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text, false
	}
	return string(runes[:limit]) + truncationMarker, true
}

func mdSafe(s string) string {
	escaped, err := format.EscapeMarkdown(s, format.MarkdownV1)
	if err != nil {
		return s
	}
	return escaped
}

package nav

import (
	"strings"
	"testing"

	"latinbot/catalog"
)

func block(kind, text string) catalog.Block {
	return catalog.Block{Kind: kind, Content: []byte(`{"text": "` + text + `"}`)}
}

func TestRenderDetailHeadingsAndOrder(t *testing.T) {
	blocks := []catalog.Block{
		block("steps_leader", "Forward walk on 1."),
		block("steps_follower", "Backward walk on 1."),
		block("notes", "Keep the hip action late."),
	}
	text, truncated := renderDetail("Closed Basic", "Walter Laird", blocks, 3900)
	if truncated {
		t.Fatal("short detail must not be truncated")
	}

	want := []string{
		"*Closed Basic*",
		"_by Walter Laird_",
		"🕺 *Leader's steps*",
		"Forward walk on 1.",
		"💃 *Follower's steps*",
		"Backward walk on 1.",
		"✏️ *Notes*",
		"Keep the hip action late.",
	}
	if got := strings.Join(want, "\n\n"); text != got {
		t.Fatalf("detail mismatch:\n got: %q\nwant: %q", text, got)
	}
}

func TestRenderDetailUnknownKindBodyOnly(t *testing.T) {
	blocks := []catalog.Block{
		block("timing", "SQQ throughout."),
	}
	text, _ := renderDetail("Fan", "Laird", blocks, 3900)
	if strings.Contains(text, "timing") {
		t.Fatalf("unknown kind must not leak a heading: %q", text)
	}
	if !strings.Contains(text, "SQQ throughout.") {
		t.Fatalf("body must still render: %q", text)
	}
}

func TestRenderDetailSkipsEmptyBody(t *testing.T) {
	blocks := []catalog.Block{
		{Kind: "notes", Content: []byte(`{}`)},
		block("shaping", "Left side stretch."),
	}
	text, _ := renderDetail("Whisk", "Laird", blocks, 3900)
	if strings.Contains(text, "\n\n\n") {
		t.Fatalf("empty body must not leave a hole: %q", text)
	}
	if !strings.Contains(text, "✏️ *Notes*") {
		t.Fatalf("heading of empty block still renders: %q", text)
	}
	if !strings.Contains(text, "Left side stretch.") {
		t.Fatalf("following block lost: %q", text)
	}
}

func TestTruncateAtLimit(t *testing.T) {
	long := strings.Repeat("а", 4000) // multibyte on purpose
	got, truncated := truncate(long, 3900)
	if !truncated {
		t.Fatal("expected truncation")
	}
	if !strings.HasSuffix(got, truncationMarker) {
		t.Fatalf("missing marker: %q", got[len(got)-40:])
	}
	body := strings.TrimSuffix(got, truncationMarker)
	if n := len([]rune(body)); n != 3900 {
		t.Fatalf("body cut at %d runes, want 3900", n)
	}
}

func TestTruncateLeavesShortTextAlone(t *testing.T) {
	got, truncated := truncate("short", 3900)
	if truncated || got != "short" {
		t.Fatalf("short text altered: %q truncated=%v", got, truncated)
	}
}

func TestTruncateExactLimit(t *testing.T) {
	text := strings.Repeat("x", 100)
	got, truncated := truncate(text, 100)
	if truncated || got != text {
		t.Fatalf("text at the limit must pass untouched, truncated=%v", truncated)
	}
}

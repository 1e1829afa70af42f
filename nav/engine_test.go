package nav

import (
	"context"
	"strings"
	"testing"

	"latinbot/access"
	"latinbot/catalog"
)

// fakeCatalogue serves a tiny fixed hierarchy:
// program 1 -> dance 10 -> figure 100 -> authors 5, 6.
type fakeCatalogue struct {
	programs []catalog.Program
	dances   map[int64][]catalog.Dance
	figures  map[int64][]catalog.Figure
	authors  map[int64][]catalog.Author
	blocks   map[[2]int64][]catalog.Block
}

func newFakeCatalogue() *fakeCatalogue {
	return &fakeCatalogue{
		programs: []catalog.Program{{ID: 1, Name: "Latin"}},
		dances: map[int64][]catalog.Dance{
			1: {{ID: 10, Name: "Rumba", ProgramID: 1}},
		},
		figures: map[int64][]catalog.Figure{
			10: {{ID: 100, Name: "Fan", DanceID: 10}},
		},
		authors: map[int64][]catalog.Author{
			100: {{ID: 5, Name: "Laird"}, {ID: 6, Name: "Moore"}},
		},
		blocks: map[[2]int64][]catalog.Block{
			{100, 5}: {block("notes", "Delay the turn.")},
		},
	}
}

func (f *fakeCatalogue) Programs(context.Context) ([]catalog.Program, error) {
	return f.programs, nil
}

func (f *fakeCatalogue) Dances(_ context.Context, programID int64) ([]catalog.Dance, error) {
	return f.dances[programID], nil
}

func (f *fakeCatalogue) Figures(_ context.Context, danceID int64) ([]catalog.Figure, error) {
	return f.figures[danceID], nil
}

func (f *fakeCatalogue) Figure(_ context.Context, id int64) (catalog.Figure, error) {
	for _, figs := range f.figures {
		for _, fig := range figs {
			if fig.ID == id {
				return fig, nil
			}
		}
	}
	return catalog.Figure{}, catalog.ErrNotFound
}

func (f *fakeCatalogue) Author(_ context.Context, id int64) (catalog.Author, error) {
	for _, as := range f.authors {
		for _, a := range as {
			if a.ID == id {
				return a, nil
			}
		}
	}
	return catalog.Author{}, catalog.ErrNotFound
}

func (f *fakeCatalogue) Authors(_ context.Context, figureID int64) ([]catalog.Author, error) {
	return f.authors[figureID], nil
}

func (f *fakeCatalogue) Blocks(_ context.Context, figureID, authorID int64) ([]catalog.Block, error) {
	return f.blocks[[2]int64{figureID, authorID}], nil
}

func (f *fakeCatalogue) ParentPath(_ context.Context, figureID int64) (int64, int64, error) {
	for danceID, figs := range f.figures {
		for _, fig := range figs {
			if fig.ID == figureID {
				for programID, ds := range f.dances {
					for _, d := range ds {
						if d.ID == danceID {
							return danceID, programID, nil
						}
					}
				}
			}
		}
	}
	return 0, 0, catalog.ErrNotFound
}

// fakeGate records gate calls and answers with a scripted decision.
type fakeGate struct {
	decision access.Decision
	stats    access.Stats
	calls    [][2]int64
}

func (g *fakeGate) CheckAndRegisterAccess(_ context.Context, telegramID, figureID int64) (access.Decision, error) {
	g.calls = append(g.calls, [2]int64{telegramID, figureID})
	return g.decision, nil
}

func (g *fakeGate) Stats(context.Context) (access.Stats, error) {
	return g.stats, nil
}

func testEngine(cat Catalogue, gate Gate) *Engine {
	return NewEngine(cat, gate, Options{
		QuotaLimit:        5,
		SubscriptionPrice: "500₽",
		PaymentContact:    "@admin",
		AdminID:           999,
	})
}

func buttonTokens(s *Screen) []string {
	out := make([]string, 0, len(s.Buttons))
	for _, b := range s.Buttons {
		out = append(out, b.Token.String())
	}
	return out
}

func TestRootListsProgramsAndStaticButtons(t *testing.T) {
	e := testEngine(newFakeCatalogue(), &fakeGate{})
	resp, err := e.Root(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Screen == nil {
		t.Fatal("root must render a screen")
	}
	got := buttonTokens(resp.Screen)
	want := []string{"program:1", "about", "buy"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("root buttons = %v, want %v", got, want)
	}
	if !strings.Contains(resp.Screen.Text, "5 figures") {
		t.Fatalf("greeting must state the quota: %q", resp.Screen.Text)
	}
}

func TestRootShowsAdminButtonOnlyToAdmin(t *testing.T) {
	e := testEngine(newFakeCatalogue(), &fakeGate{})

	resp, err := e.Root(context.Background(), 999)
	if err != nil {
		t.Fatal(err)
	}
	tokens := strings.Join(buttonTokens(resp.Screen), ",")
	if !strings.Contains(tokens, "admin") {
		t.Fatalf("admin misses the admin button: %v", tokens)
	}

	resp, err = e.Root(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	tokens = strings.Join(buttonTokens(resp.Screen), ",")
	if strings.Contains(tokens, "admin") {
		t.Fatalf("regular user sees the admin button: %v", tokens)
	}
}

func TestRootEmptyCatalogue(t *testing.T) {
	cat := newFakeCatalogue()
	cat.programs = nil
	e := testEngine(cat, &fakeGate{})

	resp, err := e.Root(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Screen == nil || resp.Screen.Text != textEmptyCatalogue {
		t.Fatalf("expected empty-catalogue notice, got %+v", resp)
	}
	if len(resp.Screen.Buttons) != 0 {
		t.Fatalf("empty catalogue must render no buttons: %v", resp.Screen.Buttons)
	}
}

func TestBackRootMatchesRoot(t *testing.T) {
	e := testEngine(newFakeCatalogue(), &fakeGate{})
	ctx := context.Background()

	direct, err := e.Root(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	viaToken, err := e.Handle(ctx, 1, Token{Kind: KindBackRoot})
	if err != nil {
		t.Fatal(err)
	}
	if direct.Screen.Text != viaToken.Screen.Text {
		t.Fatal("back:root must render the identical root text")
	}
	if strings.Join(buttonTokens(direct.Screen), ",") != strings.Join(buttonTokens(viaToken.Screen), ",") {
		t.Fatal("back:root must render the identical root buttons")
	}
}

func TestDanceAndFigureLists(t *testing.T) {
	e := testEngine(newFakeCatalogue(), &fakeGate{})
	ctx := context.Background()

	resp, err := e.Handle(ctx, 1, Token{Kind: KindProgram, ProgramID: 1})
	if err != nil {
		t.Fatal(err)
	}
	got := buttonTokens(resp.Screen)
	if got[0] != "dance:10:1" || got[len(got)-1] != "back:root" {
		t.Fatalf("dance list buttons = %v", got)
	}

	resp, err = e.Handle(ctx, 1, Token{Kind: KindDance, DanceID: 10, ProgramID: 1})
	if err != nil {
		t.Fatal(err)
	}
	got = buttonTokens(resp.Screen)
	if got[0] != "figure:100:10:1" || got[len(got)-1] != "program:1" {
		t.Fatalf("figure list buttons = %v", got)
	}
}

func TestEmptyBranchesKeepBackButton(t *testing.T) {
	cat := newFakeCatalogue()
	cat.dances[2] = nil
	e := testEngine(cat, &fakeGate{})
	ctx := context.Background()

	resp, err := e.Handle(ctx, 1, Token{Kind: KindProgram, ProgramID: 2})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Screen.Text != textNoDances {
		t.Fatalf("expected empty-program notice, got %q", resp.Screen.Text)
	}
	if got := buttonTokens(resp.Screen); len(got) != 1 || got[0] != "back:root" {
		t.Fatalf("empty program buttons = %v", got)
	}

	resp, err = e.Handle(ctx, 1, Token{Kind: KindDance, DanceID: 11, ProgramID: 1})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Screen.Text != textNoFigures {
		t.Fatalf("expected empty-dance notice, got %q", resp.Screen.Text)
	}
	if got := buttonTokens(resp.Screen); len(got) != 1 || got[0] != "program:1" {
		t.Fatalf("empty dance buttons = %v", got)
	}
}

func TestAuthorListButtons(t *testing.T) {
	e := testEngine(newFakeCatalogue(), &fakeGate{})
	resp, err := e.Handle(context.Background(), 1,
		Token{Kind: KindFigure, FigureID: 100, DanceID: 10, ProgramID: 1})
	if err != nil {
		t.Fatal(err)
	}
	got := buttonTokens(resp.Screen)
	want := []string{"figure_ver:100:5", "figure_ver:100:6", "dance:10:1"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("author buttons = %v, want %v", got, want)
	}
	if resp.Screen.Buttons[0].Label != "By Laird" {
		t.Fatalf("author label = %q", resp.Screen.Buttons[0].Label)
	}
	if !strings.Contains(resp.Screen.Text, "Fan") {
		t.Fatalf("author screen must name the figure: %q", resp.Screen.Text)
	}
}

func TestAuthorListDanglingFigure(t *testing.T) {
	e := testEngine(newFakeCatalogue(), &fakeGate{})
	resp, err := e.Handle(context.Background(), 1,
		Token{Kind: KindFigure, FigureID: 404, DanceID: 10, ProgramID: 1})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Screen != nil || resp.Alert != alertFigureGone {
		t.Fatalf("expected figure-gone alert, got %+v", resp)
	}
}

func TestTechniqueDetailAllowed(t *testing.T) {
	gate := &fakeGate{decision: access.Decision{Allowed: true}}
	e := testEngine(newFakeCatalogue(), gate)

	resp, err := e.Handle(context.Background(), 42,
		Token{Kind: KindFigureVer, FigureID: 100, AuthorID: 5})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Screen == nil {
		t.Fatalf("expected detail screen, got %+v", resp)
	}
	if !strings.Contains(resp.Screen.Text, "Delay the turn.") {
		t.Fatalf("detail body missing: %q", resp.Screen.Text)
	}
	if len(gate.calls) != 1 || gate.calls[0] != [2]int64{42, 100} {
		t.Fatalf("gate must be consulted once per detail open, got %v", gate.calls)
	}

	got := buttonTokens(resp.Screen)
	want := []string{"figure:100:10:1", "back:root"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("detail buttons = %v, want %v", got, want)
	}
}

func TestTechniqueDetailDeniedUpsell(t *testing.T) {
	count := 5
	gate := &fakeGate{decision: access.Decision{Allowed: false, Count: &count}}
	e := testEngine(newFakeCatalogue(), gate)

	resp, err := e.Handle(context.Background(), 42,
		Token{Kind: KindFigureVer, FigureID: 100, AuthorID: 5})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Screen == nil {
		t.Fatalf("denial must render the upsell screen, got %+v", resp)
	}
	if !strings.Contains(resp.Screen.Text, "5 free figures") {
		t.Fatalf("upsell must state the limit: %q", resp.Screen.Text)
	}
	if got := buttonTokens(resp.Screen); len(got) != 1 || got[0] != "back:root" {
		t.Fatalf("upsell buttons = %v", got)
	}
}

func TestTechniqueDetailDanglingReferences(t *testing.T) {
	gate := &fakeGate{decision: access.Decision{Allowed: true}}
	e := testEngine(newFakeCatalogue(), gate)
	ctx := context.Background()

	resp, err := e.Handle(ctx, 1, Token{Kind: KindFigureVer, FigureID: 404, AuthorID: 5})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Alert != alertFigureGone {
		t.Fatalf("expected figure-gone alert, got %+v", resp)
	}

	resp, err = e.Handle(ctx, 1, Token{Kind: KindFigureVer, FigureID: 100, AuthorID: 404})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Alert != alertAuthorGone {
		t.Fatalf("expected author-gone alert, got %+v", resp)
	}

	resp, err = e.Handle(ctx, 1, Token{Kind: KindFigureVer, FigureID: 100, AuthorID: 6})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Alert != alertNoBlocks {
		t.Fatalf("expected no-blocks alert, got %+v", resp)
	}
}

func TestAdminPanelGating(t *testing.T) {
	gate := &fakeGate{stats: access.Stats{Users: 10, Subscribers: 2, Grants: 31}}
	e := testEngine(newFakeCatalogue(), gate)
	ctx := context.Background()

	resp, err := e.Handle(ctx, 1, Token{Kind: KindAdmin})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Alert != alertNotAllowed {
		t.Fatalf("non-admin must be rejected, got %+v", resp)
	}

	resp, err = e.Handle(ctx, 999, Token{Kind: KindAdmin})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Screen == nil {
		t.Fatalf("admin must see the panel, got %+v", resp)
	}
	for _, needle := range []string{"Users: 10", "Subscribers: 2", "Figure grants: 31"} {
		if !strings.Contains(resp.Screen.Text, needle) {
			t.Fatalf("panel missing %q: %q", needle, resp.Screen.Text)
		}
	}
}

func TestBuyAndAboutScreens(t *testing.T) {
	e := testEngine(newFakeCatalogue(), &fakeGate{})
	ctx := context.Background()

	resp, err := e.Handle(ctx, 1, Token{Kind: KindBuy})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Screen.Text, "500₽") || !strings.Contains(resp.Screen.Text, "@admin") {
		t.Fatalf("buy screen must carry price and contact: %q", resp.Screen.Text)
	}

	resp, err = e.Handle(ctx, 1, Token{Kind: KindAbout})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.Screen.Text, "5 figures") {
		t.Fatalf("about screen must state the quota: %q", resp.Screen.Text)
	}
}

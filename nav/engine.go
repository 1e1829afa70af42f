package nav

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"latinbot/access"
	"latinbot/catalog"
	"latinbot/core/logger"
)

// Catalogue is the read side of the content hierarchy the engine navigates.
type Catalogue interface {
	Programs(ctx context.Context) ([]catalog.Program, error)
	Dances(ctx context.Context, programID int64) ([]catalog.Dance, error)
	Figures(ctx context.Context, danceID int64) ([]catalog.Figure, error)
	Figure(ctx context.Context, id int64) (catalog.Figure, error)
	Author(ctx context.Context, id int64) (catalog.Author, error)
	Authors(ctx context.Context, figureID int64) ([]catalog.Author, error)
	Blocks(ctx context.Context, figureID, authorID int64) ([]catalog.Block, error)
	ParentPath(ctx context.Context, figureID int64) (danceID, programID int64, err error)
}

// Gate decides access to technique detail and reports registry totals.
type Gate interface {
	CheckAndRegisterAccess(ctx context.Context, telegramID, figureID int64) (access.Decision, error)
	Stats(ctx context.Context) (access.Stats, error)
}

// Options carry the engine's presentation settings.
type Options struct {
	QuotaLimit        int
	SubscriptionPrice string
	PaymentContact    string
	// MaxDetailChars bounds rendered technique detail; longer texts are cut
	// and marked as truncated.
	MaxDetailChars int
	AdminID        int64
}

const defaultMaxDetailChars = 3900

// Engine is the stateless navigation state machine. Every interaction
// arrives as a token, is resolved against the catalogue, and produces the
// next screen; nothing is remembered between calls.
type Engine struct {
	cat  Catalogue
	gate Gate
	opts Options
}

// NewEngine wires the engine with its collaborators.
func NewEngine(cat Catalogue, gate Gate, opts Options) *Engine {
	if opts.QuotaLimit <= 0 {
		opts.QuotaLimit = access.DefaultQuotaLimit
	}
	if opts.MaxDetailChars <= 0 {
		opts.MaxDetailChars = defaultMaxDetailChars
	}
	return &Engine{cat: cat, gate: gate, opts: opts}
}

// Handle dispatches one parsed token for the given Telegram user.
func (e *Engine) Handle(ctx context.Context, userID int64, t Token) (Response, error) {
	logger.Debug(ctx, "service.nav", "nav.dispatch",
		slog.String("token", t.String()),
		slog.Int64("user_id", userID),
	)
	switch t.Kind {
	case KindBackRoot:
		return e.Root(ctx, userID)
	case KindProgram:
		return e.danceList(ctx, t.ProgramID)
	case KindDance:
		return e.figureList(ctx, t)
	case KindFigure:
		return e.authorList(ctx, t.FigureID, t.DanceID, t.ProgramID)
	case KindFigureVer:
		return e.techniqueDetail(ctx, userID, t.FigureID, t.AuthorID)
	case KindBuy:
		return screenResponse(e.buyScreen()), nil
	case KindAbout:
		return screenResponse(e.aboutScreen()), nil
	case KindAdmin:
		return e.adminPanel(ctx, userID)
	}
	return Response{}, fmt.Errorf("nav: unhandled token kind %d", t.Kind)
}

// Root renders the program list. It is the entry screen and the target of
// every back-to-root transition, identical regardless of prior path.
func (e *Engine) Root(ctx context.Context, userID int64) (Response, error) {
	programs, err := e.cat.Programs(ctx)
	if err != nil {
		return Response{}, err
	}
	if len(programs) == 0 {
		return screenResponse(Screen{Text: textEmptyCatalogue}), nil
	}

	text := fmt.Sprintf(textGreeting,
		e.opts.QuotaLimit, e.opts.SubscriptionPrice, e.opts.PaymentContact)

	buttons := make([]Button, 0, len(programs)+3)
	for _, p := range programs {
		buttons = append(buttons, Button{
			Label: p.Name,
			Token: Token{Kind: KindProgram, ProgramID: p.ID},
		})
	}
	buttons = append(buttons,
		Button{Label: labelAbout, Token: Token{Kind: KindAbout}},
		Button{Label: labelBuy, Token: Token{Kind: KindBuy}},
	)
	if e.opts.AdminID != 0 && userID == e.opts.AdminID {
		buttons = append(buttons, Button{Label: labelAdmin, Token: Token{Kind: KindAdmin}})
	}
	return screenResponse(Screen{Text: text, Buttons: buttons}), nil
}

func (e *Engine) danceList(ctx context.Context, programID int64) (Response, error) {
	dances, err := e.cat.Dances(ctx, programID)
	if err != nil {
		return Response{}, err
	}
	back := Button{Label: labelBackRoot, Token: Token{Kind: KindBackRoot}}
	if len(dances) == 0 {
		return screenResponse(Screen{
			Text:    textNoDances,
			Buttons: []Button{back},
		}), nil
	}

	buttons := make([]Button, 0, len(dances)+1)
	for _, d := range dances {
		buttons = append(buttons, Button{
			Label: d.Name,
			Token: Token{Kind: KindDance, DanceID: d.ID, ProgramID: programID},
		})
	}
	buttons = append(buttons, back)
	return screenResponse(Screen{Text: textPickDance, Buttons: buttons}), nil
}

func (e *Engine) figureList(ctx context.Context, t Token) (Response, error) {
	figures, err := e.cat.Figures(ctx, t.DanceID)
	if err != nil {
		return Response{}, err
	}
	back := Button{
		Label: labelBack,
		Token: Token{Kind: KindProgram, ProgramID: t.ProgramID},
	}
	if len(figures) == 0 {
		return screenResponse(Screen{
			Text:    textNoFigures,
			Buttons: []Button{back},
		}), nil
	}

	buttons := make([]Button, 0, len(figures)+1)
	for _, f := range figures {
		buttons = append(buttons, Button{
			Label: f.Name,
			Token: Token{Kind: KindFigure, FigureID: f.ID, DanceID: t.DanceID, ProgramID: t.ProgramID},
		})
	}
	buttons = append(buttons, back)
	return screenResponse(Screen{Text: textPickFigure, Buttons: buttons}), nil
}

func (e *Engine) authorList(ctx context.Context, figureID, danceID, programID int64) (Response, error) {
	figure, err := e.cat.Figure(ctx, figureID)
	if errors.Is(err, catalog.ErrNotFound) {
		return alertResponse(alertFigureGone), nil
	}
	if err != nil {
		return Response{}, err
	}
	authors, err := e.cat.Authors(ctx, figureID)
	if err != nil {
		return Response{}, err
	}
	back := Button{
		Label: labelBack,
		Token: Token{Kind: KindDance, DanceID: danceID, ProgramID: programID},
	}
	if len(authors) == 0 {
		return screenResponse(Screen{
			Text:    textNoAuthors,
			Buttons: []Button{back},
		}), nil
	}

	buttons := make([]Button, 0, len(authors)+1)
	for _, a := range authors {
		buttons = append(buttons, Button{
			Label: fmt.Sprintf(labelByAuthor, a.Name),
			Token: Token{Kind: KindFigureVer, FigureID: figureID, AuthorID: a.ID},
		})
	}
	buttons = append(buttons, back)
	text := fmt.Sprintf("*%s*\n\n%s", mdSafe(figure.Name), textPickAuthor)
	return screenResponse(Screen{Text: text, Buttons: buttons}), nil
}

func (e *Engine) techniqueDetail(ctx context.Context, userID, figureID, authorID int64) (Response, error) {
	// Metering is keyed on the figure, not the authored variant: reading a
	// second author's take on a granted figure is free.
	decision, err := e.gate.CheckAndRegisterAccess(ctx, userID, figureID)
	if err != nil {
		return Response{}, err
	}
	if !decision.Allowed {
		return screenResponse(e.upsellScreen()), nil
	}

	figure, err := e.cat.Figure(ctx, figureID)
	if errors.Is(err, catalog.ErrNotFound) {
		return alertResponse(alertFigureGone), nil
	}
	if err != nil {
		return Response{}, err
	}
	author, err := e.cat.Author(ctx, authorID)
	if errors.Is(err, catalog.ErrNotFound) {
		return alertResponse(alertAuthorGone), nil
	}
	if err != nil {
		return Response{}, err
	}
	blocks, err := e.cat.Blocks(ctx, figureID, authorID)
	if err != nil {
		return Response{}, err
	}
	if len(blocks) == 0 {
		return alertResponse(alertNoBlocks), nil
	}

	text, truncated := renderDetail(figure.Name, author.Name, blocks, e.opts.MaxDetailChars)
	logger.Debug(ctx, "service.nav", "nav.detail",
		slog.Int64("figure_id", figureID),
		slog.Int64("author_id", authorID),
		slog.Int("blocks", len(blocks)),
		slog.Int("chars", len([]rune(text))),
		slog.Bool("truncated", truncated),
	)

	buttons := []Button{{Label: labelBackRoot, Token: Token{Kind: KindBackRoot}}}
	// The detail token carries only (figure, author); the parent figure
	// screen is rebuilt by resolving the figure's place in the hierarchy.
	danceID, programID, err := e.cat.ParentPath(ctx, figureID)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		// keep back-to-root only
	case err != nil:
		return Response{}, err
	default:
		buttons = append([]Button{{
			Label: labelBack,
			Token: Token{Kind: KindFigure, FigureID: figureID, DanceID: danceID, ProgramID: programID},
		}}, buttons...)
	}

	return screenResponse(Screen{Text: text, Buttons: buttons}), nil
}

func (e *Engine) buyScreen() Screen {
	return Screen{
		Text: fmt.Sprintf(textBuy, e.opts.SubscriptionPrice, e.opts.PaymentContact),
		Buttons: []Button{
			{Label: labelBackRoot, Token: Token{Kind: KindBackRoot}},
		},
	}
}

func (e *Engine) upsellScreen() Screen {
	return Screen{
		Text: fmt.Sprintf(textQuotaExhausted,
			e.opts.QuotaLimit, e.opts.SubscriptionPrice, e.opts.PaymentContact),
		Buttons: []Button{
			{Label: labelBackRoot, Token: Token{Kind: KindBackRoot}},
		},
	}
}

func (e *Engine) aboutScreen() Screen {
	return Screen{
		Text: fmt.Sprintf(textAbout, e.opts.QuotaLimit),
		Buttons: []Button{
			{Label: labelBackRoot, Token: Token{Kind: KindBackRoot}},
		},
	}
}

func (e *Engine) adminPanel(ctx context.Context, userID int64) (Response, error) {
	if e.opts.AdminID == 0 || userID != e.opts.AdminID {
		return alertResponse(alertNotAllowed), nil
	}
	stats, err := e.gate.Stats(ctx)
	if err != nil {
		return Response{}, err
	}
	text := fmt.Sprintf(textAdmin, stats.Users, stats.Subscribers, stats.Grants)
	return screenResponse(Screen{
		Text: text,
		Buttons: []Button{
			{Label: labelBackRoot, Token: Token{Kind: KindBackRoot}},
		},
	}), nil
}

package app

import (
	"errors"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"latinbot/core/logger"
	"latinbot/core/telegram/callbacks"
	tghelpers "latinbot/core/telegram/helpers"
	"latinbot/core/telegram/keyboard"
	"latinbot/nav"
)

const textGenericFailure = "Something went wrong. Please try again."

// handleStart renders the root screen as a fresh message. It doubles as the
// /help handler and the fallback for unrecognised text.
func (a *App) handleStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if _, err := tghelpers.EnsureUser(ctx, a.users, c); err != nil {
		logger.Error(ctx, "tg", "user.ensure_failed", slog.String("err", err.Error()))
		return a.fail(c, err)
	}

	resp, err := a.engine.Root(ctx, senderID(c))
	if err != nil {
		return a.fail(c, err)
	}
	return a.deliver(c, resp, false)
}

// staticCommand maps a slash command onto the engine's handling of a static
// leaf token (about, buy, admin).
func (a *App) staticCommand(t nav.Token) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		if _, err := tghelpers.EnsureUser(ctx, a.users, c); err != nil {
			logger.Error(ctx, "tg", "user.ensure_failed", slog.String("err", err.Error()))
			return a.fail(c, err)
		}
		resp, err := a.engine.Handle(ctx, senderID(c), t)
		if err != nil {
			return a.fail(c, err)
		}
		return a.deliver(c, resp, false)
	}
}

// callbackHandler routes one registered callback key through the engine.
// Menu selections edit the originating message in place.
func (a *App) callbackHandler(key string) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)

		token, err := nav.ParseParts(key, callbacks.CallbackPayload(c))
		if err != nil {
			logger.Warn(ctx, "tg", "callback.malformed",
				slog.String("cb_key", key),
				slog.String("err", err.Error()),
			)
			return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
		}

		if _, err := tghelpers.EnsureUser(ctx, a.users, c); err != nil {
			logger.Error(ctx, "tg", "user.ensure_failed", slog.String("err", err.Error()))
			return a.fail(c, err)
		}

		resp, err := a.engine.Handle(ctx, senderID(c), token)
		if err != nil {
			return a.fail(c, err)
		}
		return a.deliver(c, resp, true)
	}
}

// deliver renders an engine response: alerts become transient callback
// notices, screens become Markdown messages with an inline keyboard.
func (a *App) deliver(c tele.Context, resp nav.Response, edit bool) error {
	if resp.Screen == nil {
		if c.Callback() != nil {
			return c.Respond(&tele.CallbackResponse{Text: resp.Alert, ShowAlert: true})
		}
		return tghelpers.SendText(c, resp.Alert)
	}

	markup := screenMarkup(resp.Screen)
	if edit {
		if err := tghelpers.EditOrSendMD(c, resp.Screen.Text, markup); err != nil {
			return err
		}
		return c.Respond()
	}
	return tghelpers.SendMD(c, resp.Screen.Text, markup)
}

// fail surfaces an unexpected store or transport failure as a generic
// notice; the error still propagates for the router's summary log.
func (a *App) fail(c tele.Context, err error) error {
	if c.Callback() != nil {
		respErr := c.Respond(&tele.CallbackResponse{Text: textGenericFailure, ShowAlert: true})
		return errors.Join(err, respErr)
	}
	sendErr := tghelpers.SendText(c, textGenericFailure)
	return errors.Join(err, sendErr)
}

func screenMarkup(s *nav.Screen) *tele.ReplyMarkup {
	if len(s.Buttons) == 0 {
		return nil
	}
	btns := make([]keyboard.InlineBtn, 0, len(s.Buttons))
	for _, b := range s.Buttons {
		key, payload := b.Token.Split()
		btns = append(btns, keyboard.InlineBtn{
			Text:   b.Label,
			Unique: key,
			Data:   payload,
		})
	}
	return keyboard.InlineButtons(btns)
}

func senderID(c tele.Context) int64 {
	if sender := c.Sender(); sender != nil {
		return sender.ID
	}
	return 0
}

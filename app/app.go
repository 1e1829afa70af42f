package app

import (
	"context"
	"fmt"

	tele "gopkg.in/telebot.v4"

	"latinbot/access"
	"latinbot/catalog"
	"latinbot/core/bootstrap"
	coredatabase "latinbot/core/database"
	coretelegram "latinbot/core/telegram"
	"latinbot/core/telegram/commands"
	"latinbot/core/telegram/router"
	"latinbot/nav"
)

// App wires the catalogue, the entitlement gate, and the navigation engine
// on top of the shared bot core.
type App struct {
	cfg    *Config
	pool   *coredatabase.Pool
	users  *access.Service
	engine *nav.Engine
}

// Bootstrap initializes infrastructure and composes the application services.
func Bootstrap(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	users := access.NewService(access.NewPostgresStore(res.Pool), cfg.Content.QuotaLimit)
	engine := nav.NewEngine(catalog.NewStore(res.Pool), users, nav.Options{
		QuotaLimit:        users.QuotaLimit(),
		SubscriptionPrice: cfg.Content.SubscriptionPrice,
		PaymentContact:    cfg.Content.PaymentContact,
		MaxDetailChars:    cfg.Content.MaxDetailChars,
		AdminID:           cfg.Core.Telegram.AdminID,
	})

	return &App{
		cfg:    cfg,
		pool:   res.Pool,
		users:  users,
		engine: engine,
	}, nil
}

// TelegramRunOptions builds the bot runtime wiring for the cmd runner.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Open the technique catalogue",
		Aliases:     []string{"/help"},
	})
	reg.RegisterCommand("/about", commands.Command{
		Handler:     a.staticCommand(nav.Token{Kind: nav.KindAbout}),
		Description: "What this bot is",
	})
	reg.RegisterCommand("/buy", commands.Command{
		Handler:     a.staticCommand(nav.Token{Kind: nav.KindBuy}),
		Description: "Get full access",
	})
	reg.RegisterCommand("/admin", commands.Command{
		Handler:     a.staticCommand(nav.Token{Kind: nav.KindAdmin}),
		Description: "Registry counters",
		AdminOnly:   true,
		Hidden:      true,
	})

	for _, key := range nav.CallbackKeys() {
		if err := reg.RegisterCallback(key, a.callbackHandler(key)); err != nil {
			return coretelegram.RunOptions{}, err
		}
	}
	reg.SetCallbackNotFound(func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	})
	reg.SetTextFallback(a.handleStart)

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Core.Telegram.AdminID,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoutes(reg, router.TextOptions{})...)

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil),
		Routes:      routes,
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			return a.pool.Close()
		},
	}, nil
}

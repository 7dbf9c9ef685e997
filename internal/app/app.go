package app

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	tele "gopkg.in/telebot.v4"

	"tasabot/core/bootstrap"
	"tasabot/core/logger"
	coretelegram "tasabot/core/telegram"
	"tasabot/core/telegram/router"
	"tasabot/core/telegram/session"
	"tasabot/internal/bot"
	"tasabot/internal/httpapi"
	"tasabot/internal/repo"
	"tasabot/internal/service"
	"tasabot/internal/storage"
)

// App is the fully wired bot application.
type App struct {
	cfg      *Config
	result   *bootstrap.Result
	handlers *bot.Handlers
	summary  *service.DailySummary

	notifier *adminNotifier
	cron     *cron.Cron
	cronLoc  *time.Location
}

// New bootstraps infrastructure and wires services and handlers.
func New(cfg *Config) (*App, error) {
	result, err := bootstrap.Run(bootstrap.Options{
		Config:   &cfg.Core,
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := bootstrap.RunSeeders(ctx, result.DB,
		bootstrap.SeederFunc(seedReceiveAccounts(cfg.ReceiveAccounts)),
	); err != nil {
		_ = result.DB.Close()
		return nil, err
	}

	spread, err := decimal.NewFromString(cfg.Core.Exchange.SpreadOffset)
	if err != nil {
		_ = result.DB.Close()
		return nil, fmt.Errorf("app: parse exchange.spread_offset: %w", err)
	}

	objects, err := storage.New(cfg.Storage, nil)
	if err != nil {
		_ = result.DB.Close()
		return nil, err
	}

	users := repo.NewUsers(result.DB)
	transactions := repo.NewTransactions(result.DB)
	accounts := repo.NewAccounts(result.DB)
	receipts := repo.NewReceipts(result.DB)

	rates := service.NewRates(repo.NewRates(result.DB), spread)
	orders := service.NewOrders(transactions, accounts, rates, cfg.Core.Exchange.Currency)
	receiptSvc := service.NewReceipts(receipts, objects, orders)
	summary, err := service.NewDailySummary(transactions, cfg.Core.Exchange.Timezone)
	if err != nil {
		_ = result.DB.Close()
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Core.Exchange.Timezone)
	if err != nil {
		_ = result.DB.Close()
		return nil, err
	}

	sessions := session.NewManager(time.Duration(cfg.Core.Exchange.SessionTTLSeconds) * time.Second)
	handlers := bot.NewHandlers(users, rates, orders, receiptSvc, summary, sessions)

	return &App{
		cfg:      cfg,
		result:   result,
		handlers: handlers,
		summary:  summary,
		notifier: &adminNotifier{chatID: cfg.Core.Telegram.AdminChatID},
		cronLoc:  loc,
	}, nil
}

// TelegramRunOptions builds the bot runtime: registry, middleware chain,
// routes, and the lifecycle hooks that start the cron schedule and the
// closing-report API.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	if err := a.handlers.Register(reg); err != nil {
		return coretelegram.RunOptions{}, err
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID:       a.cfg.Core.Telegram.AdminChatID,
		OnAdminReject: a.handlers.AdminReject,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	routes = append(routes, router.TextRoute(reg, router.TextOptions{}))
	routes = append(routes, router.MediaRoutes(a.handlers.Receipt)...)

	return coretelegram.RunOptions{
		Config:      &a.cfg.Core,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(&a.cfg.Core),
		Routes:      routes,
		OnStart:     a.onStart,
		OnStop:      a.onStop,
	}, nil
}

func (a *App) onStart(ctx context.Context, rt coretelegram.Runtime) error {
	a.notifier.bot = rt.Bot

	if spec := a.cfg.Core.Exchange.ClosingCron; spec != "" {
		a.cron = cron.New(cron.WithLocation(a.cronLoc))
		if _, err := a.cron.AddFunc(spec, a.pushClosing); err != nil {
			return fmt.Errorf("app: cron spec %q: %w", spec, err)
		}
		a.cron.Start()
		logger.L.With("component", "app").Info("closing schedule armed",
			slog.String("event", "cron"),
			slog.String("spec", spec),
			slog.String("tz", a.cronLoc.String()),
		)
	}

	if a.cfg.Core.API.Port > 0 {
		api := httpapi.NewServer(a.summary, a.notifier)
		addr := fmt.Sprintf("%s:%d", a.cfg.Core.API.Listen, a.cfg.Core.API.Port)
		go func() {
			if err := api.Run(ctx, addr); err != nil {
				logger.HTTP.Error("api stopped",
					slog.String("event", "stop"),
					slog.String("err", err.Error()),
				)
			}
		}()
	}

	return nil
}

func (a *App) onStop(ctx context.Context, rt coretelegram.Runtime) error {
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}
	return a.result.DB.Close()
}

// pushClosing computes and delivers the daily closing from the internal
// schedule.
func (a *App) pushClosing() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sum, err := a.summary.Compute(ctx)
	if err != nil {
		logger.SVCSummary.Error("scheduled closing failed",
			slog.String("event", "summary.push_failed"),
			slog.String("err", err.Error()),
		)
		return
	}
	if err := a.notifier.NotifyAdmin(ctx, sum.Format()); err != nil {
		logger.SVCSummary.Error("scheduled closing push failed",
			slog.String("event", "summary.push_failed"),
			slog.String("err", err.Error()),
		)
	}
}

// adminNotifier pushes Markdown messages to the configured admin chat.
type adminNotifier struct {
	bot    *tele.Bot
	chatID int64
}

func (n *adminNotifier) NotifyAdmin(ctx context.Context, text string) error {
	if n.bot == nil {
		return fmt.Errorf("app: bot not started")
	}
	_, err := n.bot.Send(tele.ChatID(n.chatID), text, tele.ModeMarkdown)
	return err
}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/akozlov/habitbot/internal/bot"
	"github.com/akozlov/habitbot/internal/logger"
	"github.com/akozlov/habitbot/internal/reminder"
	"github.com/akozlov/habitbot/internal/telegram"
)

// ServeCmd runs the bot: the Telegram long-poll loop plus the reminder
// scheduler, until SIGINT or SIGTERM.
type ServeCmd struct{}

func (c *ServeCmd) Run(appCtx *Context) error {
	loc, err := LoadLocation(appCtx.Timezone)
	if err != nil {
		return err
	}

	if err := appCtx.Store.Load(); err != nil {
		return err
	}
	defer appCtx.Store.Close()

	tg, err := telegram.New(appCtx.Token, appCtx.Debug)
	if err != nil {
		return err
	}
	if err := tg.RegisterCommands(); err != nil {
		return err
	}
	logger.Info("Connected to Telegram", "bot", tg.Username())

	handler := bot.New(appCtx.Store, tg, loc)
	dispatcher := bot.NewDispatcher(handler)

	sched := reminder.New(appCtx.Store, tg, loc)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start reminder scheduler: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tg.Run(ctx, dispatcher.Dispatch)

	logger.Info("Shutting down")
	sched.Stop()
	dispatcher.Close()
	return nil
}

// Package telegram adapts the Telegram Bot API to the bot core: long-poll
// updates become bot events, replies and choice keyboards go back out.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/akozlov/habitbot/internal/bot"
	"github.com/akozlov/habitbot/internal/logger"
)

type Bot struct {
	api *tgbotapi.BotAPI
}

func New(token string, debug bool) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	api.Debug = debug
	return &Bot{api: api}, nil
}

// Username returns the bot account's username.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// RegisterCommands publishes the command menu shown by Telegram clients.
func (b *Bot) RegisterCommands() error {
	cfg := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Start the bot"},
		tgbotapi.BotCommand{Command: "help", Description: "Show help"},
		tgbotapi.BotCommand{Command: "add", Description: "Add a habit"},
		tgbotapi.BotCommand{Command: "list", Description: "List your habits"},
		tgbotapi.BotCommand{Command: "done", Description: "Mark a habit done"},
		tgbotapi.BotCommand{Command: "delete", Description: "Delete a habit"},
		tgbotapi.BotCommand{Command: "stats", Description: "Habit statistics"},
		tgbotapi.BotCommand{Command: "week_stats", Description: "Last 7 days"},
		tgbotapi.BotCommand{Command: "reminder", Description: "Manage reminders"},
		tgbotapi.BotCommand{Command: "cancel", Description: "Abandon the current action"},
	)
	if _, err := b.api.Request(cfg); err != nil {
		return fmt.Errorf("failed to register bot commands: %w", err)
	}
	return nil
}

// Send delivers a plain text message.
func (b *Bot) Send(userID int64, text string) error {
	if _, err := b.api.Send(tgbotapi.NewMessage(userID, text)); err != nil {
		return fmt.Errorf("failed to deliver message to %d: %w", userID, err)
	}
	return nil
}

// SendChoices delivers a message with an inline keyboard. A pair of choices
// shares one row, the confirm-style layout; longer lists get a row each.
func (b *Bot) SendChoices(userID int64, text string, choices []bot.Choice) error {
	var rows [][]tgbotapi.InlineKeyboardButton
	if len(choices) == 2 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(choices[0].Label, choices[0].Data),
			tgbotapi.NewInlineKeyboardButtonData(choices[1].Label, choices[1].Data),
		))
	} else {
		for _, c := range choices {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(c.Label, c.Data),
			))
		}
	}

	msg := tgbotapi.NewMessage(userID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to deliver message to %d: %w", userID, err)
	}
	return nil
}

// Run long-polls for updates, converting each into a bot event, until the
// context is cancelled.
func (b *Bot) Run(ctx context.Context, dispatch func(bot.Event)) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	logger.Info("Listening for updates", "bot", b.Username())
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if ev, ok := toEvent(update); ok {
				dispatch(ev)
			}
			if update.CallbackQuery != nil {
				// Acknowledge the button press so the client stops its spinner.
				if _, err := b.api.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); err != nil {
					logger.Debug("Failed to answer callback query", "error", err)
				}
			}
		}
	}
}

func toEvent(update tgbotapi.Update) (bot.Event, bool) {
	if cq := update.CallbackQuery; cq != nil && cq.From != nil {
		return bot.Event{
			UserID: cq.From.ID,
			Kind:   bot.EventChoice,
			Choice: cq.Data,
		}, true
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return bot.Event{}, false
	}

	if msg.IsCommand() {
		return bot.Event{
			UserID:  msg.From.ID,
			Kind:    bot.EventCommand,
			Command: msg.Command(),
			Text:    msg.CommandArguments(),
		}, true
	}
	if msg.Text != "" {
		return bot.Event{
			UserID: msg.From.ID,
			Kind:   bot.EventText,
			Text:   msg.Text,
		}, true
	}
	return bot.Event{}, false
}

package notifier

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/orefwatch/orefwatch/internal/config"
)

type TelegramNotifier struct {
	name   string
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(name string, cfg config.TelegramChannelConfig) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot for channel '%s': %w", name, err)
	}
	return &TelegramNotifier{name: name, bot: bot, chatID: cfg.ChatID}, nil
}

func (tn *TelegramNotifier) Name() string {
	return tn.name
}

func (tn *TelegramNotifier) Send(data NotificationData, templates Templates) error {
	msg, err := renderTemplate("telegram_message", templates.Alert, data)
	if err != nil {
		return fmt.Errorf("failed to render message for channel '%s': %w", tn.name, err)
	}

	if _, err := tn.bot.Send(tgbotapi.NewMessage(tn.chatID, msg)); err != nil {
		return fmt.Errorf("failed to send Telegram message via channel '%s': %w", tn.name, err)
	}
	return nil
}

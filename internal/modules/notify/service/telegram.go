package service

import (
	"context"
	"net/http"
	"sync"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"signal_bot/internal/modules/config"
)

type Sender interface {
	Enabled() bool
	Send(ctx context.Context, text string) error
}

// Telegram шлёт текст в один фиксированный чат. BotAPI создаётся лениво:
// недоступный Telegram на старте не должен ронять бота.
type Telegram struct {
	token    string
	chatID   int64
	channel  string
	endpoint string
	client   *http.Client

	mu  sync.Mutex
	bot *tgbot.BotAPI
}

func NewTelegram(cfg *config.Config) *Telegram {
	endpoint := cfg.Telegram.APIEndpoint
	if endpoint == "" {
		endpoint = tgbot.APIEndpoint
	}
	return &Telegram{
		token:    cfg.Telegram.Token,
		chatID:   cfg.Telegram.ChatID,
		channel:  cfg.Telegram.Channel,
		endpoint: endpoint,
		client:   &http.Client{Timeout: cfg.Telegram.Timeout},
	}
}

func (t *Telegram) Enabled() bool {
	return t != nil && t.token != "" && (t.chatID != 0 || t.channel != "")
}

func (t *Telegram) api() (*tgbot.BotAPI, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bot != nil {
		return t.bot, nil
	}
	b, err := tgbot.NewBotAPIWithClient(t.token, t.endpoint, t.client)
	if err != nil {
		return nil, errors.Wrap(err, "telegram auth")
	}
	t.bot = b
	return b, nil
}

// Send delivers text once; there is no retry.
func (t *Telegram) Send(_ context.Context, text string) error {
	if !t.Enabled() {
		return errors.New("telegram credentials missing")
	}
	bot, err := t.api()
	if err != nil {
		return err
	}
	msg := tgbot.NewMessage(t.chatID, text)
	if t.channel != "" {
		msg = tgbot.NewMessageToChannel(t.channel, text)
	}
	if _, err := bot.Send(msg); err != nil {
		return errors.Wrap(err, "telegram sendMessage")
	}
	return nil
}

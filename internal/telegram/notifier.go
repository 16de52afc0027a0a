package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/camuig/gold-ledger/internal/config"
	"github.com/camuig/gold-ledger/internal/ledger"
	"github.com/camuig/gold-ledger/internal/logger"
	"github.com/camuig/gold-ledger/internal/price"
)

type Notifier struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	enabled bool
	logger  *logger.Logger
	sendFn  func(text string) error
}

func NewNotifier(cfg *config.Config, log *logger.Logger) *Notifier {
	if !cfg.Telegram.Enabled {
		return &Notifier{enabled: false, logger: log}
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		log.Error("failed to create telegram bot", "error", err)
		return &Notifier{enabled: false, logger: log}
	}

	log.Info("telegram bot connected", "username", bot.Self.UserName)

	n := &Notifier{
		bot:     bot,
		chatID:  cfg.Telegram.ChatID,
		enabled: true,
		logger:  log,
	}
	n.sendFn = n.sendTelegram
	return n
}

// NotifyDegraded reports that the resolver fell back from live quotes.
func (n *Notifier) NotifyDegraded(p price.PricePoint, since string) {
	if since == "" {
		since = "无"
	}
	msg := fmt.Sprintf("⚠️ *金价来源降级*\n当前: %s/g (%s)\n上次实时来源: %s",
		ledger.FormatCNY(p.AmountPerGram), p.SourceLabel(), since)
	n.send(msg)
}

// NotifyRecovered reports that a live source answered again.
func (n *Notifier) NotifyRecovered(p price.PricePoint) {
	msg := fmt.Sprintf("✅ *金价来源恢复*\n当前: %s/g (%s)",
		ledger.FormatCNY(p.AmountPerGram), p.SourceLabel())
	n.send(msg)
}

func (n *Notifier) NotifyError(context string, err error) {
	msg := fmt.Sprintf("⚠️ *错误* [%s]\n%v", context, err)
	n.send(msg)
}

func (n *Notifier) NotifyStatus(message string) {
	n.send(message)
}

func (n *Notifier) send(text string) {
	if !n.enabled {
		return
	}
	if err := n.sendFn(text); err != nil {
		n.logger.Error("send telegram message", "error", err)
	}
}

func (n *Notifier) sendTelegram(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	_, err := n.bot.Send(msg)
	return err
}

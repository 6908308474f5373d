package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jcollis/arbwatch/internal/alerts"
	"github.com/jcollis/arbwatch/internal/arb"
	"github.com/jcollis/arbwatch/internal/config"
	"github.com/jcollis/arbwatch/internal/metrics"
	"github.com/jcollis/arbwatch/internal/oddsapi"
	"github.com/jcollis/arbwatch/internal/reports"
	"github.com/jcollis/arbwatch/internal/storage"
	"github.com/sirupsen/logrus"
)

// apiClient is the slice of the Telegram API the bot uses; *API satisfies it.
type apiClient interface {
	GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]Update, error)
	SendMessage(ctx context.Context, req SendMessageRequest) (*Message, error)
	EditMessageText(ctx context.Context, chatID, messageID int64, text, parseMode string) error
	AnswerCallbackQuery(ctx context.Context, callbackID, text string) error
}

// scanRunner triggers an on-demand scan; *scanner.Scanner satisfies it.
type scanRunner interface {
	Process(ctx context.Context) (int, error)
}

// sportsCatalog lists active sports; *oddsapi.Client satisfies it.
type sportsCatalog interface {
	ListSports(ctx context.Context) ([]oddsapi.Sport, error)
}

// Bot is the Telegram front end: it serves user commands against the ledger
// and doubles as an alert channel, re-allocating stakes per chat.
type Bot struct {
	cfg      *config.Config
	api      apiClient
	calc     *arb.Calculator
	db       *storage.DB
	scan     scanRunner
	catalog  sportsCatalog
	sessions *Sessions
	log      *logrus.Logger
}

// New creates the bot.
func New(cfg *config.Config, api *API, calc *arb.Calculator, db *storage.DB, scan scanRunner, catalog sportsCatalog, sessions *Sessions, log *logrus.Logger) *Bot {
	return &Bot{
		cfg:      cfg,
		api:      api,
		calc:     calc,
		db:       db,
		scan:     scan,
		catalog:  catalog,
		sessions: sessions,
		log:      log,
	}
}

// Run long-polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Info("Telegram bot started")
	var offset int64

	for {
		select {
		case <-ctx.Done():
			b.log.Info("Telegram bot stopped")
			return ctx.Err()
		default:
		}

		updates, err := b.api.GetUpdates(ctx, offset, b.cfg.TelegramPollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				b.log.Info("Telegram bot stopped")
				return ctx.Err()
			}
			b.log.WithError(err).Error("Failed to fetch updates")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			switch {
			case u.CallbackQuery != nil:
				metrics.BotUpdates.WithLabelValues("callback").Inc()
				b.handleCallback(ctx, u.CallbackQuery)
			case u.Message != nil && strings.HasPrefix(u.Message.Text, "/"):
				metrics.BotUpdates.WithLabelValues("command").Inc()
				b.handleCommand(ctx, u.Message)
			case u.Message != nil:
				metrics.BotUpdates.WithLabelValues("message").Inc()
			}
		}
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *Message) {
	chatID := msg.Chat.ID
	b.sessions.Get(chatID)

	fields := strings.Fields(msg.Text)
	cmd := fields[0]
	// Group chats address commands as /cmd@botname.
	if at := strings.Index(cmd, "@"); at > 0 {
		cmd = cmd[:at]
	}
	args := fields[1:]

	b.log.WithFields(logrus.Fields{
		"chat_id": chatID,
		"command": cmd,
	}).Debug("Handling command")

	var err error
	switch cmd {
	case "/start":
		err = b.reply(ctx, chatID, "Registered. You will be alerted when an arbitrage shows up.\n\n"+helpText)
	case "/help":
		err = b.reply(ctx, chatID, helpText)
	case "/scan":
		err = b.cmdScan(ctx, chatID)
	case "/settings":
		err = b.reply(ctx, chatID, formatSettings(b.sessions.Get(chatID)))
	case "/setprofit":
		err = b.cmdSetProfit(ctx, chatID, args)
	case "/setstake":
		err = b.cmdSetStake(ctx, chatID, args)
	case "/togglenotifs":
		err = b.cmdToggleNotifs(ctx, chatID)
	case "/stats":
		err = b.cmdStats(ctx, chatID, args)
	case "/pending":
		err = b.cmdPending(ctx, chatID)
	case "/balances":
		err = b.cmdBalances(ctx, chatID)
	case "/setbalance":
		err = b.cmdSetBalance(ctx, chatID, args)
	case "/report":
		err = b.cmdReport(ctx, chatID)
	case "/sports":
		err = b.cmdSports(ctx, chatID)
	default:
		err = b.reply(ctx, chatID, "Unknown command. Try /help.")
	}

	if err != nil {
		b.log.WithError(err).WithFields(logrus.Fields{
			"chat_id": chatID,
			"command": cmd,
		}).Error("Command failed")
	}
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) error {
	_, err := b.api.SendMessage(ctx, SendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: parseModeMarkdown,
	})
	return err
}

func (b *Bot) cmdScan(ctx context.Context, chatID int64) error {
	if err := b.reply(ctx, chatID, "Scanning for arbitrage, hold on..."); err != nil {
		return err
	}
	sent, err := b.scan.Process(ctx)
	if err != nil {
		return b.reply(ctx, chatID, fmt.Sprintf("Scan failed: %v", err))
	}
	if sent == 0 {
		return b.reply(ctx, chatID, "Scan complete. No opportunities cleared the filters.")
	}
	return b.reply(ctx, chatID, fmt.Sprintf("Scan complete. %d opportunity(ies) alerted.", sent))
}

func (b *Bot) cmdSetProfit(ctx context.Context, chatID int64, args []string) error {
	if len(args) != 1 {
		return b.reply(ctx, chatID, "Usage: /setprofit <percent>, e.g. /setprofit 1.5")
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil || v < 0 {
		return b.reply(ctx, chatID, "Minimum profit must be a number of at least 0.")
	}
	s := b.sessions.Update(chatID, func(s *Settings) { s.MinProfitPercent = v })
	return b.reply(ctx, chatID, formatSettings(s))
}

func (b *Bot) cmdSetStake(ctx context.Context, chatID int64, args []string) error {
	if len(args) != 1 {
		return b.reply(ctx, chatID, "Usage: /setstake <amount>, e.g. /setstake 500")
	}
	v, err := strconv.ParseFloat(args[0], 64)
	if err != nil || v <= 0 {
		return b.reply(ctx, chatID, "Stake must be a positive number.")
	}
	s := b.sessions.Update(chatID, func(s *Settings) { s.DefaultStake = v })
	return b.reply(ctx, chatID, formatSettings(s))
}

func (b *Bot) cmdToggleNotifs(ctx context.Context, chatID int64) error {
	s := b.sessions.Update(chatID, func(s *Settings) { s.Notifications = !s.Notifications })
	if s.Notifications {
		return b.reply(ctx, chatID, "Notifications resumed.")
	}
	return b.reply(ctx, chatID, "Notifications paused. /togglenotifs to resume.")
}

func (b *Bot) cmdStats(ctx context.Context, chatID int64, args []string) error {
	period := storage.PeriodAll
	if len(args) > 0 {
		var err error
		period, err = storage.ParsePeriod(args[0])
		if err != nil {
			return b.reply(ctx, chatID, "Usage: /stats [day|week|month|all]")
		}
	}
	stats, err := b.db.GetStats(ctx, period)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}
	return b.reply(ctx, chatID, formatStats(stats))
}

func (b *Bot) cmdPending(ctx context.Context, chatID int64) error {
	opps, err := b.db.PendingOpportunities(ctx)
	if err != nil {
		return fmt.Errorf("pending opportunities: %w", err)
	}
	return b.reply(ctx, chatID, formatPending(opps))
}

func (b *Bot) cmdBalances(ctx context.Context, chatID int64) error {
	balances, err := b.db.Balances(ctx)
	if err != nil {
		return fmt.Errorf("balances: %w", err)
	}
	return b.reply(ctx, chatID, formatBalances(balances))
}

func (b *Bot) cmdSetBalance(ctx context.Context, chatID int64, args []string) error {
	if len(args) != 2 {
		return b.reply(ctx, chatID, "Usage: /setbalance <bookmaker> <amount>, e.g. /setbalance bet365 250")
	}
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil || amount < 0 {
		return b.reply(ctx, chatID, "Amount must be a number of at least 0.")
	}
	bookmaker := strings.ToLower(args[0])
	if err := b.db.UpsertBalance(ctx, bookmaker, amount); err != nil {
		return fmt.Errorf("upsert balance: %w", err)
	}
	return b.reply(ctx, chatID, fmt.Sprintf("%s balance set to £%.2f.", bookmaker, amount))
}

func (b *Bot) cmdReport(ctx context.Context, chatID int64) error {
	text, err := reports.Daily(ctx, b.db)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	return b.reply(ctx, chatID, text)
}

func (b *Bot) cmdSports(ctx context.Context, chatID int64) error {
	sports, err := b.catalog.ListSports(ctx)
	if err != nil {
		return b.reply(ctx, chatID, fmt.Sprintf("Could not fetch sports: %v", err))
	}
	return b.reply(ctx, chatID, formatSports(sports))
}

// handleCallback processes the Placed/Skip buttons attached to alerts.
func (b *Bot) handleCallback(ctx context.Context, cb *CallbackQuery) {
	action, id, ok := parseCallbackData(cb.Data)
	if !ok {
		b.log.WithField("data", cb.Data).Warn("Unrecognized callback data")
		_ = b.api.AnswerCallbackQuery(ctx, cb.ID, "")
		return
	}

	var ack string
	var err error
	switch action {
	case "placed":
		err = b.db.MarkPlaced(ctx, id)
		ack = "Marked as placed"
	case "skip":
		err = b.db.MarkSkipped(ctx, id)
		ack = "Skipped"
	}
	if err != nil {
		b.log.WithError(err).WithFields(logrus.Fields{
			"action":         action,
			"opportunity_id": id,
		}).Error("Failed to update opportunity")
		_ = b.api.AnswerCallbackQuery(ctx, cb.ID, "Something went wrong, try again")
		return
	}

	if answerErr := b.api.AnswerCallbackQuery(ctx, cb.ID, ack); answerErr != nil {
		b.log.WithError(answerErr).Warn("Failed to answer callback")
	}

	// Rewrite the alert so the buttons disappear and the outcome is visible.
	if cb.Message != nil {
		text := cb.Message.Text + "\n\n" + ack + "."
		if editErr := b.api.EditMessageText(ctx, cb.Message.Chat.ID, cb.Message.MessageID, text, ""); editErr != nil {
			b.log.WithError(editErr).Warn("Failed to edit alert message")
		}
	}
}

func parseCallbackData(data string) (action string, id int64, ok bool) {
	action, rest, found := strings.Cut(data, ":")
	if !found || (action != "placed" && action != "skip") {
		return "", 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return "", 0, false
	}
	return action, id, true
}

// Send implements alerts.Sender. Every registered chat with notifications on
// and a minimum profit at or below the opportunity gets the alert, with the
// stakes re-allocated for that chat's own total stake.
func (b *Bot) Send(ctx context.Context, payload *alerts.Payload) error {
	chats := b.sessions.All()
	if len(chats) == 0 {
		b.log.Debug("No registered chats, alert not delivered via Telegram")
		return nil
	}

	delay := time.Duration(b.cfg.TelegramSendDelayMsec) * time.Millisecond
	sent := 0
	var firstErr error

	for chatID, settings := range chats {
		if !settings.Notifications || payload.ProfitPercent < settings.MinProfitPercent {
			continue
		}

		if sent > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		text, err := b.renderFor(payload, settings)
		if err != nil {
			b.log.WithError(err).WithField("chat_id", chatID).Error("Failed to render alert")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		req := SendMessageRequest{
			ChatID:    chatID,
			Text:      text,
			ParseMode: parseModeMarkdown,
		}
		if payload.OpportunityID != 0 {
			req.ReplyMarkup = &InlineKeyboardMarkup{
				InlineKeyboard: [][]InlineKeyboardButton{{
					{Text: "I placed it", CallbackData: fmt.Sprintf("placed:%d", payload.OpportunityID)},
					{Text: "Skip", CallbackData: fmt.Sprintf("skip:%d", payload.OpportunityID)},
				}},
			}
		}

		if _, err := b.api.SendMessage(ctx, req); err != nil {
			metrics.AlertsSent.WithLabelValues("error", "telegram").Inc()
			b.log.WithError(err).WithField("chat_id", chatID).Error("Failed to send alert")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		metrics.AlertsSent.WithLabelValues("success", "telegram").Inc()
		sent++
	}

	b.log.WithFields(logrus.Fields{
		"event":   payload.Event,
		"chats":   len(chats),
		"alerted": sent,
	}).Debug("Telegram alert fan-out complete")

	return firstErr
}

// renderFor re-allocates the opportunity for the chat's own stake before
// rendering. Chats on the service default reuse the payload as is.
func (b *Bot) renderFor(payload *alerts.Payload, settings Settings) (string, error) {
	if settings.DefaultStake == payload.TotalStake || len(payload.Odds) == 0 {
		return formatAlert(payload), nil
	}

	alloc, err := b.calc.Allocate(settings.DefaultStake, payload.Odds)
	if err != nil {
		return "", fmt.Errorf("re-allocate for chat stake: %w", err)
	}

	personal := *payload
	personal.TotalStake = alloc.TotalStake
	personal.Stakes = alerts.Lines(alloc)
	personal.GuaranteedProfit = alloc.GuaranteedProfit()
	return formatAlert(&personal), nil
}

// Broadcast sends plain text to every chat with notifications on; used for
// the daily summary.
func (b *Bot) Broadcast(ctx context.Context, text string) error {
	var firstErr error
	for chatID, settings := range b.sessions.All() {
		if !settings.Notifications {
			continue
		}
		_, err := b.api.SendMessage(ctx, SendMessageRequest{
			ChatID:    chatID,
			Text:      text,
			ParseMode: parseModeMarkdown,
		})
		if err != nil {
			b.log.WithError(err).WithField("chat_id", chatID).Error("Failed to broadcast")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

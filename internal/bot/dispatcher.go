package bot

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
	"go.uber.org/zap"

	"earnquick-bot/internal/ledger"
)

const (
	actionAdCompleted     = "ad_completed"
	actionWithdrawRequest = "withdraw_request"

	msgBadToken = "🚫 Invalid or expired ad token."
)

// Replier is what the dispatcher needs from the Telegram client.
type Replier interface {
	ledger.Messenger
	SendWelcome(ctx context.Context, chatID int64) error
}

// TokenConsumer redeems single-use ad tokens.
type TokenConsumer interface {
	Consume(ctx context.Context, userID int64, tok string) (bool, error)
}

// Dispatcher routes one webhook update per call to the ledger service.
type Dispatcher struct {
	ledger  *ledger.Service
	tokens  TokenConsumer
	replier Replier
	log     *zap.Logger
}

func NewDispatcher(svc *ledger.Service, tokens TokenConsumer, replier Replier, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		ledger:  svc,
		tokens:  tokens,
		replier: replier,
		log:     log,
	}
}

type webAppPayload struct {
	Action string          `json:"action"`
	Token  string          `json:"token"`
	Amount json.RawMessage `json:"amount"`
	Method string          `json:"method"`
	Number string          `json:"number"`
}

// HandleUpdate processes a single update. Validation problems are settled
// with the user in chat and never surface as errors; only store outages do.
func (d *Dispatcher) HandleUpdate(ctx context.Context, update telego.Update) error {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return nil
	}
	userID := msg.From.ID

	if err := d.ledger.Register(ctx, userID); err != nil {
		return err
	}

	switch {
	case strings.HasPrefix(msg.Text, "/start"):
		return d.handleStart(ctx, msg)
	case msg.WebAppData != nil:
		return d.handleWebAppData(ctx, userID, msg.WebAppData.Data)
	}
	return nil
}

func (d *Dispatcher) handleStart(ctx context.Context, msg *telego.Message) error {
	userID := msg.From.ID

	if parts := strings.Fields(msg.Text); len(parts) == 2 {
		if referrerID, err := strconv.ParseInt(parts[1], 10, 64); err == nil {
			if _, err := d.ledger.Link(ctx, userID, referrerID); err != nil {
				d.log.Error("referral link failed",
					zap.Int64("user_id", userID),
					zap.Int64("referrer_id", referrerID),
					zap.Error(err))
			}
		}
	}

	if err := d.replier.SendWelcome(ctx, msg.Chat.ID); err != nil {
		d.log.Error("welcome message failed", zap.Int64("chat_id", msg.Chat.ID), zap.Error(err))
	}
	return nil
}

func (d *Dispatcher) handleWebAppData(ctx context.Context, userID int64, data string) error {
	var payload webAppPayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		d.log.Warn("malformed web app payload", zap.Int64("user_id", userID), zap.Error(err))
		return nil
	}

	switch payload.Action {
	case actionAdCompleted:
		return d.handleAdCompleted(ctx, userID, payload.Token)
	case actionWithdrawRequest:
		return d.handleWithdraw(ctx, userID, payload)
	default:
		d.log.Warn("unknown web app action", zap.Int64("user_id", userID), zap.String("action", payload.Action))
		return nil
	}
}

func (d *Dispatcher) handleAdCompleted(ctx context.Context, userID int64, tok string) error {
	// A supplied token must redeem; events without one are still honored,
	// older mini-app builds never send it.
	if tok != "" {
		ok, err := d.tokens.Consume(ctx, userID, tok)
		if err != nil {
			return err
		}
		if !ok {
			d.send(ctx, userID, msgBadToken)
			return nil
		}
	}

	_, err := d.ledger.CompleteAd(ctx, userID)
	return err
}

func (d *Dispatcher) handleWithdraw(ctx context.Context, userID int64, payload webAppPayload) error {
	amount, err := parseAmount(payload.Amount)
	if err != nil {
		d.send(ctx, userID, "❌ Invalid withdrawal amount.")
		return nil
	}

	_, err = d.ledger.RequestWithdrawal(ctx, userID, amount, payload.Method, payload.Number)
	return err
}

// parseAmount accepts both JSON numbers and numeric strings; the mini app
// has sent both over time.
func parseAmount(raw json.RawMessage) (float64, error) {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	return strconv.ParseFloat(s, 64)
}

func (d *Dispatcher) send(ctx context.Context, userID int64, text string) {
	if err := d.replier.Send(ctx, userID, text); err != nil {
		d.log.Error("notification failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}

package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"NewsRecommender/internal/infrastructure/gatewayapi"
)

const (
	apiBaseURL    = "https://api.telegram.org"
	longPollSecs  = 30
	newsPageSize  = 5
	recommendTopK = 5
)

// Bot is a long-polling Telegram client: it surfaces latest news with
// like/dislike buttons and renders recommendations. It talks only to the
// gateway API and holds no state of its own.
type Bot struct {
	token   string
	gateway *gatewayapi.Client
	client  *http.Client
	logger  *slog.Logger
}

// NewBot registers the bot token and gateway client.
func NewBot(token string, gateway *gatewayapi.Client, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		token:   token,
		gateway: gateway,
		client:  &http.Client{Timeout: (longPollSecs + 10) * time.Second},
		logger:  logger,
	}
}

type update struct {
	UpdateID int64     `json:"update_id"`
	Message  *message  `json:"message"`
	Callback *callback `json:"callback_query"`
}

type message struct {
	Text string `json:"text"`
	Chat struct {
		ID int64 `json:"id"`
	} `json:"chat"`
	From struct {
		ID int64 `json:"id"`
	} `json:"from"`
}

type callback struct {
	ID   string `json:"id"`
	Data string `json:"data"`
	From struct {
		ID int64 `json:"id"`
	} `json:"from"`
	Message *message `json:"message"`
}

type inlineKeyboard struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if b.token == "" {
		return fmt.Errorf("telegram bot token is empty")
	}

	b.logger.Info("bot started")
	var offset int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := b.getUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.logger.Error("get updates failed", "error", err)
			time.Sleep(3 * time.Second)
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			b.dispatch(ctx, u)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, u update) {
	switch {
	case u.Callback != nil:
		b.handleCallback(ctx, u.Callback)
	case u.Message != nil:
		b.handleMessage(ctx, u.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, m *message) {
	externalID := strconv.FormatInt(m.From.ID, 10)

	switch command(m.Text) {
	case "/start":
		if _, err := b.gateway.EnsureUser(ctx, externalID); err != nil {
			b.logger.Error("ensure user failed", "error", err)
		}
		b.sendText(ctx, m.Chat.ID,
			"Hi! I recommend news based on your likes.\n\n"+
				"/news — latest news\n"+
				"/recommend — personal picks (needs at least one like)\n"+
				"/help — how it works")
	case "/help":
		b.sendText(ctx, m.Chat.ID,
			"1) /news — read the latest articles\n"+
				"2) rate them with 👍/👎\n"+
				"3) /recommend — get picks matched to your taste")
	case "/news":
		b.sendNews(ctx, m.Chat.ID, externalID)
	case "/recommend":
		b.sendRecommendations(ctx, m.Chat.ID, externalID)
	}
}

func (b *Bot) handleCallback(ctx context.Context, c *callback) {
	externalID := strconv.FormatInt(c.From.ID, 10)
	defer b.answerCallback(ctx, c.ID)

	action, rawID, _ := strings.Cut(c.Data, ":")
	switch action {
	case "like", "dislike":
		articleID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return
		}
		if err := b.gateway.SendEvent(ctx, externalID, articleID, action); err != nil {
			b.logger.Error("send event failed", "error", err)
		}
	case "recommend":
		if c.Message != nil {
			b.sendRecommendations(ctx, c.Message.Chat.ID, externalID)
		}
	}
}

func (b *Bot) sendNews(ctx context.Context, chatID int64, externalID string) {
	if _, err := b.gateway.EnsureUser(ctx, externalID); err != nil {
		b.logger.Error("ensure user failed", "error", err)
	}

	articles, err := b.gateway.LatestArticles(ctx, newsPageSize, 0)
	if err != nil {
		b.logger.Error("latest articles failed", "error", err)
		b.sendText(ctx, chatID, "Can't load news right now, try again later.")
		return
	}
	if len(articles) == 0 {
		b.sendText(ctx, chatID, "No news yet, check back later.")
		return
	}

	for _, a := range articles {
		text := fmt.Sprintf("📰 %s\n%s\n\nSource: %s", a.Title, a.URL, a.Source)
		b.sendMessage(ctx, chatID, text, articleKeyboard(a.ID))
	}
}

func (b *Bot) sendRecommendations(ctx context.Context, chatID int64, externalID string) {
	recs, err := b.gateway.Recommend(ctx, externalID, recommendTopK)
	if err != nil {
		b.sendText(ctx, chatID, "Can't recommend: "+err.Error())
		return
	}
	if len(recs) == 0 {
		b.sendText(ctx, chatID, "No recommendations yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🎯 Your picks:\n\n")
	for _, rec := range recs {
		fmt.Fprintf(&sb, "• %s\n%s\nscore=%.3f\n\n", rec.Title, rec.URL, rec.Score)
	}
	b.sendText(ctx, chatID, sb.String())
}

// articleKeyboard builds the 👍/👎/🔁 inline keyboard for one article.
func articleKeyboard(articleID int64) *inlineKeyboard {
	id := strconv.FormatInt(articleID, 10)
	return &inlineKeyboard{InlineKeyboard: [][]inlineButton{
		{
			{Text: "👍 Like", CallbackData: "like:" + id},
			{Text: "👎 Dislike", CallbackData: "dislike:" + id},
		},
		{
			{Text: "🔁 Recommend", CallbackData: "recommend:0"},
		},
	}}
}

func command(text string) string {
	cmd, _, _ := strings.Cut(strings.TrimSpace(text), " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return cmd
}

func (b *Bot) getUpdates(ctx context.Context, offset int64) ([]update, error) {
	payload := map[string]any{
		"offset":  offset,
		"timeout": longPollSecs,
	}

	var resp struct {
		OK     bool     `json:"ok"`
		Result []update `json:"result"`
	}
	if err := b.call(ctx, "getUpdates", payload, &resp); err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, fmt.Errorf("telegram getUpdates not ok")
	}
	return resp.Result, nil
}

func (b *Bot) sendText(ctx context.Context, chatID int64, text string) {
	b.sendMessage(ctx, chatID, text, nil)
}

func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string, keyboard *inlineKeyboard) {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if keyboard != nil {
		payload["reply_markup"] = keyboard
	}
	if err := b.call(ctx, "sendMessage", payload, nil); err != nil {
		b.logger.Error("send message failed", "error", err)
	}
}

func (b *Bot) answerCallback(ctx context.Context, callbackID string) {
	payload := map[string]any{
		"callback_query_id": callbackID,
		"text":              "Saved ✅",
	}
	if err := b.call(ctx, "answerCallbackQuery", payload, nil); err != nil {
		b.logger.Error("answer callback failed", "error", err)
	}
}

func (b *Bot) call(ctx context.Context, method string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/%s", apiBaseURL, b.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}
	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Package telegram adapts the bot core to the Telegram Bot API. It owns
// message rendering, the inline like/dislike keyboard and the long-polling
// loop that turns callback queries into reaction events.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"rssbot/models"
)

// ReactionEvent is one like/dislike button press, resolved far enough for
// the core to act on it.
type ReactionEvent struct {
	MessageID int
	UserID    int64
	UserName  string
	Kind      models.ReactionKind
}

type Channel struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// New connects to the Bot API, optionally through an HTTP proxy.
func New(token, proxy string, chatID int64) (*Channel, error) {
	var bot *tgbotapi.BotAPI
	var err error

	if proxy != "" {
		proxyURL, perr := url.Parse(proxy)
		if perr != nil {
			return nil, fmt.Errorf("invalid proxy url: %w", perr)
		}
		client := &http.Client{
			Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)},
		}
		bot, err = tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	} else {
		bot, err = tgbotapi.NewBotAPI(token)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.WithFields(log.Fields{
		"account": bot.Self.UserName,
	}).Info("Authorized on Telegram")

	return &Channel{bot: bot, chatID: chatID}, nil
}

// SendEntry publishes a rendered entry with its reaction keyboard and
// returns the message id Telegram assigned.
func (c *Channel) SendEntry(text string, entryURL string, tally models.Tally) (int, error) {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = EntryMarkup(entryURL, tally)

	sent, err := c.bot.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to send message: %w", err)
	}
	return sent.MessageID, nil
}

// UpdateControls rewrites the message's keyboard with fresh tallies.
func (c *Channel) UpdateControls(messageID int, entryURL string, tally models.Tally) error {
	edit := tgbotapi.NewEditMessageReplyMarkup(c.chatID, messageID, EntryMarkup(entryURL, tally))
	if _, err := c.bot.Request(edit); err != nil {
		return fmt.Errorf("failed to edit message markup: %w", err)
	}
	return nil
}

// Listen long-polls for updates and calls handle for each reaction button press
// until the context is cancelled. Every callback query is answered so the
// client spinner stops even when the event is ignored.
func (c *Channel) Listen(ctx context.Context, handle func(ctx context.Context, event ReactionEvent)) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := c.bot.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		c.bot.StopReceivingUpdates()
	}()

	for update := range updates {
		query := update.CallbackQuery
		if query == nil {
			continue
		}

		if _, err := c.bot.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
			log.Warn("Failed to answer callback query: ", err)
		}

		kind := models.ReactionKind(query.Data)
		if kind != models.ReactionLike && kind != models.ReactionDislike {
			continue
		}
		if query.Message == nil {
			continue
		}

		handle(ctx, ReactionEvent{
			MessageID: query.Message.MessageID,
			UserID:    query.From.ID,
			UserName:  query.From.UserName,
			Kind:      kind,
		})
	}
}

// RenderEntry formats the outbound message text for one feed entry.
func RenderEntry(feedTitle string, candidate models.Candidate) string {
	return fmt.Sprintf(
		"<b>[%s]</b>\n<a href=\"%s\">%s</a>",
		feedTitle, candidate.URL, EscapeHTML(candidate.Title),
	)
}

// EntryMarkup builds the inline keyboard: an open-link row and a reaction
// row showing the current tallies.
func EntryMarkup(entryURL string, tally models.Tally) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("Открыть", entryURL),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("👍 %d", tally.Likes), string(models.ReactionLike)),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("👎 %d", tally.Dislikes), string(models.ReactionDislike)),
		),
	)
}

// EscapeHTML neutralizes angle brackets in entry titles so they cannot break
// the HTML parse mode.
func EscapeHTML(s string) string {
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}

package bot

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/wyzo-ops/orderbot-backend/internal/config"
	"github.com/wyzo-ops/orderbot-backend/internal/services"
	"github.com/wyzo-ops/orderbot-backend/internal/storage"
)

// Bot wires the dialogue controller to the Telegram transport.
type Bot struct {
	api      *tgbotapi.BotAPI
	dialogue *Dialogue
}

// New creates the Telegram bot.
func New(cfg *config.Config, store storage.Store, client *services.APIClient) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("✅ Authorized on bot account @%s", api.Self.UserName)

	return &Bot{
		api:      api,
		dialogue: NewDialogue(store, client),
	}, nil
}

// Dialogue returns the dialogue controller.
func (b *Bot) Dialogue() *Dialogue {
	return b.dialogue
}

// Run polls for updates until the context is cancelled. Each update is
// handled on its own goroutine; the conversation lock keeps at most
// one message in flight per chat.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			go b.handleMessage(update.Message)
		}
	}
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	conv := b.dialogue.Conversations().Get(chatID)

	conv.mu.Lock()
	defer conv.mu.Unlock()

	// Step boundary: nothing may escape into the update loop.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("🔥 Panic handling message from %d: %v", chatID, r)
			b.send(chatID, Reply{Text: "❌ An unexpected error occurred. Please try again with /start"})
		}
	}()

	// Secrets must not stay visible in the chat history.
	if !msg.IsCommand() && (conv.State == StateAwaitPassword || conv.State == StateAwaitOTP) {
		b.deleteMessage(chatID, msg.MessageID)
	}

	var replies []Reply
	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			replies = b.dialogue.Start(conv)
		case "logout":
			replies = b.dialogue.Logout(conv)
		case "cancel":
			replies = b.dialogue.Cancel(conv)
		default:
			replies = []Reply{{Text: "Unknown command. Use /start, /logout or /cancel."}}
		}
	} else {
		replies = b.dialogue.HandleMessage(conv, msg.Text)
	}

	for _, reply := range replies {
		b.send(chatID, reply)
	}
}

func (b *Bot) send(chatID int64, reply Reply) {
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if reply.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdownV2
	}
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("❌ Failed to send message to %d: %v", chatID, err)
	}
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	del := tgbotapi.NewDeleteMessage(chatID, messageID)
	if _, err := b.api.Request(del); err != nil {
		log.Printf("⚠️ Failed to delete message %d in chat %d: %v", messageID, chatID, err)
	}
}

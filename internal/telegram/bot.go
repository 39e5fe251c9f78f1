// Package telegram runs the capture bot: send it a recipe URL and it
// parses and saves the recipe into the collection.
package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"chefboard/internal/config"
	"chefboard/internal/parser"
	"chefboard/internal/recipe"
)

// Bot wraps the Telegram API, the capture parser and the recipe store.
type Bot struct {
	api     *tgbotapi.BotAPI
	parser  *parser.Parser
	recipes *recipe.Repository
	cfg     *config.Config
}

// NewBot initializes the Telegram bot and sets the webhook.
func NewBot(cfg *config.Config, recipeParser *parser.Parser, recipes *recipe.Repository) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return &Bot{
		api:     bot,
		parser:  recipeParser,
		recipes: recipes,
		cfg:     cfg,
	}, nil
}

// RegisterHandlers registers the webhook handler on the mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("POST /telegram/webhook", b.handleWebhook)
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}
	if update.Message == nil {
		return
	}

	allowed := false
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if update.Message.From.ID == id {
			allowed = true
			break
		}
	}
	if !allowed {
		log.Printf("Unauthorized access attempt from UserID: %d (@%s)", update.Message.From.ID, update.Message.From.UserName)
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, "http://") && !strings.HasPrefix(text, "https://") {
		b.reply(msg.Chat.ID, "Send me a recipe URL and I'll save it to your collection.")
		return
	}

	statusMsg := tgbotapi.NewMessage(msg.Chat.ID, "Clipping recipe...")
	sent, err := b.api.Send(statusMsg)
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	ctx := context.Background()
	rec, err := b.parser.ParseURL(ctx, text, nil)
	var finalText string
	if err != nil {
		log.Printf("Error clipping recipe: %v", err)
		finalText = fmt.Sprintf("Failed to clip recipe: %v", err)
	} else {
		if saveErr := b.saveCaptured(ctx, rec); saveErr != nil {
			log.Printf("Failed to save clipped recipe: %v", saveErr)
			finalText = "Parsed the recipe but failed to save it."
		} else {
			finalText = fmt.Sprintf("Saved \"%s\" (%d ingredients, %d steps).", rec.Title, len(rec.Ingredients), len(rec.Steps))
		}
	}

	edit := tgbotapi.NewEditMessageText(msg.Chat.ID, sent.MessageID, finalText)
	b.api.Send(edit)
}

func (b *Bot) saveCaptured(ctx context.Context, rec *recipe.Recipe) error {
	rec.ID = uuid.NewString()
	return b.recipes.Save(ctx, *rec)
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("Failed to send reply: %v", err)
	}
}

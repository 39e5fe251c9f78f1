package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the configuration for the server.
type Config struct {
	DatabasePath string
	UploadDir    string
	GeminiAPIKey string
	GroqAPIKey   string
	InviteSecret string

	// Telegram Config (optional; the capture bot is disabled without a token)
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	geminiAPIKey := os.Getenv("GEMINI_API_KEY")
	if geminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	inviteSecret := os.Getenv("CHEFBOARD_INVITE_SECRET")
	if inviteSecret == "" {
		return nil, fmt.Errorf("CHEFBOARD_INVITE_SECRET environment variable not set")
	}

	dbPath := os.Getenv("CHEFBOARD_DB_PATH")
	if dbPath == "" {
		dbPath = "data/chefboard.db"
	}

	uploadDir := os.Getenv("CHEFBOARD_UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "data/uploads"
	}

	var allowedIDs []int64
	for _, part := range strings.Split(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS entry %q: %w", part, err)
		}
		allowedIDs = append(allowedIDs, id)
	}

	return &Config{
		DatabasePath:           dbPath,
		UploadDir:              uploadDir,
		GeminiAPIKey:           geminiAPIKey,
		GroqAPIKey:             os.Getenv("GROQ_API_KEY"),
		InviteSecret:           inviteSecret,
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowedIDs,
	}, nil
}

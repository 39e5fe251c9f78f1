package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chefboard/internal/config"
	"chefboard/internal/database"
	"chefboard/internal/family"
	"chefboard/internal/feedback"
	"chefboard/internal/grocery"
	"chefboard/internal/llm"
	"chefboard/internal/metrics"
	"chefboard/internal/parser"
	"chefboard/internal/recipe"
	"chefboard/internal/server"
	"chefboard/internal/telegram"
	"chefboard/internal/uploads"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. Initialize LLM clients
	geminiClient, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}
	defer geminiClient.Close()

	var textGen llm.TextGenerator = geminiClient
	if cfg.GroqAPIKey != "" {
		textGen = llm.NewGroqClient(cfg.GroqAPIKey)
	}

	// 3. Initialize the SQLite database and repositories
	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	recipeRepo := recipe.NewRepository(db.SQL)
	listRepo := grocery.NewRepository(db.SQL)
	feedbackRepo := feedback.NewRepository(db.SQL)
	familyRepo := family.NewRepository(db.SQL)
	metricsStore := metrics.NewStore(db.SQL)

	uploadStore, err := uploads.NewStorage(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize upload storage: %v", err)
	}

	// 4. Initialize services
	recipeParser := parser.New(textGen, geminiClient)
	groceryGen := grocery.NewGenerator(textGen)
	invites := family.NewInviteSigner(cfg.InviteSecret)

	mux := http.NewServeMux()
	apiServer := server.New(recipeRepo, recipeParser, groceryGen, listRepo, feedbackRepo, familyRepo, invites, uploadStore, metricsStore)
	apiServer.RegisterHandlers(mux)

	// 5. Optional Telegram capture bot
	if cfg.TelegramBotToken != "" {
		bot, err := telegram.NewBot(cfg, recipeParser, recipeRepo)
		if err != nil {
			log.Fatalf("Failed to initialize Telegram bot: %v", err)
		}
		bot.RegisterHandlers(mux)
	}

	// 6. Start server with graceful shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		log.Printf("ChefBoard server listening on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

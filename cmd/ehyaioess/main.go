package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/TeamDman/Ehyaioess/internal/config"
	"github.com/TeamDman/Ehyaioess/internal/console"
	"github.com/TeamDman/Ehyaioess/internal/conversation"
	"github.com/TeamDman/Ehyaioess/internal/logging"
	"github.com/TeamDman/Ehyaioess/internal/state"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: .env file could not be loaded: %v", err)
	}

	cfg, err := config.Load(os.Getenv("EHYAIOESS_CONFIG"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	manager := conversation.NewManager(logger, conversation.WithDefaultTitle(cfg.Conversations.DefaultTitle))

	// The viewed conversation lives for the whole process and starts out empty.
	viewConversation := state.NewConversationStore(state.WithLogger(logger))
	viewer := conversation.NewViewer(manager, viewConversation, logger)
	defer viewer.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	con := console.New(manager, viewer, viewConversation, logger, console.Options{
		Prompt:       cfg.Console.Prompt,
		SystemPrompt: cfg.Conversations.SystemPrompt,
	})

	logger.Info("Starting console", zap.String("logLevel", cfg.Log.Level))
	if err := con.Run(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("console stopped", zap.Error(err))
	}
	logger.Info("Exiting", zap.Int("conversations", len(manager.GetConversations())))
}

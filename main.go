package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"amazonlinkbot/config"
	"amazonlinkbot/internal/amazon"
	"amazonlinkbot/internal/bot"
	"amazonlinkbot/internal/llm"
	"amazonlinkbot/internal/storage"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Try to load existing config.env file
	config.LoadEnvFile()

	if missing := config.CheckRequired(); len(missing) > 0 {
		log.Fatal().Msgf("missing required config: %s", strings.Join(missing, ", "))
	}

	// Affiliate tag is optional, links work without it but earn nothing
	affiliateTag := os.Getenv("AMAZON_TAG")
	if affiliateTag == "" {
		log.Warn().Msg("AMAZON_TAG is not set, links will have no affiliate tag")
	}

	region := amazon.ParseRegion(os.Getenv("AMAZON_REGION"))
	log.Info().Str("region", string(region)).Msg("amazon region configured")

	tg, err := tgbotapi.NewBotAPI(os.Getenv("BOT_TOKEN"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telegram bot")
	}
	tg.Debug = false
	log.Info().Str("username", tg.Self.UserName).Msg("authorized on account")

	// Register bot commands for Telegram's command menu
	bot.RegisterCommands(tg)

	// Session store: SQLite when BOT_DB_PATH is set, in-memory otherwise
	var store storage.SessionStore
	if dbPath := os.Getenv("BOT_DB_PATH"); dbPath != "" {
		sqliteStore, err := storage.NewSQLiteStore(dbPath)
		if err != nil {
			log.Fatal().Err(err).Str("dbPath", dbPath).Msg("failed to initialize session store")
		}
		store = sqliteStore
		log.Info().Str("dbPath", dbPath).Msg("sqlite session store initialized")
	} else {
		store = storage.NewMemoryStore()
		log.Info().Msg("in-memory session store initialized")
	}
	defer store.Close()

	// Create context that cancels on SIGINT or SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	geminiClient, err := llm.NewGeminiClient(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize gemini vision client")
	}
	log.Info().Msg("gemini vision client initialized")

	// Wrap with cache so repeated photos skip the API call
	visionClient := llm.NewCachedVisionClient(geminiClient, store)
	analyzer := llm.NewProductAnalyzer(visionClient)

	links := amazon.NewBuilder(affiliateTag)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runBot(ctx, tg, store, analyzer, links, region)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("shutdown with error")
	} else {
		log.Info().Msg("shutdown complete")
	}
}

func runBot(
	ctx context.Context,
	tg *tgbotapi.BotAPI,
	store storage.SessionStore,
	analyzer *llm.ProductAnalyzer,
	links *amazon.Builder,
	region amazon.Region,
) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := tg.GetUpdatesChan(updateConfig)

	b := bot.NewBot(tg, store, analyzer, links, region)

	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping bot update loop")
			tg.StopReceivingUpdates()
			log.Info().Msg("waiting for active handlers to finish")
			wg.Wait()
			b.Shutdown()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				log.Warn().Msg("updates channel closed")
				wg.Wait()
				b.Shutdown()
				return nil
			}
			wg.Add(1)
			go func(u tgbotapi.Update) {
				defer wg.Done()
				b.HandleUpdate(ctx, u)
			}(update)
		}
	}
}

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"blanc-client/internal/api"
	"blanc-client/internal/config"
	"blanc-client/internal/event"
	"blanc-client/internal/push"
	"blanc-client/internal/readmark"
	"blanc-client/internal/services"
	"blanc-client/internal/session"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Headless Blanc client: signs in over the dev SMS flow, keeps the session
// snapshot, request and rated feeds in sync with push events, and opens a
// conversation whenever a match is announced.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogger(cfg.Log.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := api.NewClient(cfg.API.BaseURL)

	status, err := client.VerifySMS(ctx, cfg.API.Phone, cfg.API.Code)
	if err != nil {
		log.Fatal().Err(err).Msg("SMS verification failed")
	}
	if status != api.SMSVerified {
		log.Fatal().Str("status", string(status)).Msg("SMS verification rejected")
	}

	marks, err := readmark.Open(cfg.Cache.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open read marker cache")
	}
	defer marks.Close()

	bus := push.NewBus()
	sess := session.New(client, bus)
	defer sess.Close()

	me, err := sess.Generate(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Session exchange failed")
	}
	log.Info().Str("user_id", me.ID).Str("nickname", me.Nickname).Msg("Signed in")

	listener := push.NewListener(cfg.API.WSURL, client.Token(), bus)
	go listener.Run(ctx)

	requests := services.NewRequestsModel(client, bus)
	rated := services.NewRatedModel(client, bus)
	received := services.NewReceivedFeed(requests, rated)
	defer received.Close()
	defer rated.Close()
	defer requests.Close()

	if err := requests.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial request load failed")
	}
	if err := rated.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial rater load failed")
	}

	posts := services.NewPostsModel(client, sess)
	defer posts.Close()
	if err := posts.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial post load failed")
	}

	favorites := services.NewFavoritesModel(client, bus)
	defer favorites.Close()
	if err := favorites.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial favorite load failed")
	}

	receivedCh, cancelReceived := received.Observe()
	defer cancelReceived()
	go func() {
		for data := range receivedCh {
			log.Info().
				Int("requests", len(data.Requests)).
				Int("raters", len(data.Raters)).
				Msg("Received feed updated")
		}
	}()

	// Selection channel: a matched push picks the new conversation, the
	// conversation worker consumes the selection.
	selected := event.NewChannel[string]()
	defer selected.Close()

	matches, cancelMatches := bus.Subscribe()
	defer cancelMatches()
	go func() {
		for e := range matches {
			if e.Type == push.EventMatched && e.ConversationID != "" {
				log.Info().Str("user_id", e.UserID).Msg("Matched")
				selected.Publish(e.ConversationID)
			}
		}
	}()

	selections, cancelSelections := selected.Subscribe()
	defer cancelSelections()
	go func() {
		for conversationID := range selections {
			conv := services.NewConversationModel(conversationID, client, sess, marks, bus)
			if err := conv.Load(ctx); err != nil {
				conv.Close()
				continue
			}
			if err := conv.Open(ctx); err != nil {
				conv.Close()
				continue
			}
			go watchConversation(conv)
		}
	}()

	logoutCh, cancelLogout := sess.ObserveLogout()
	defer cancelLogout()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case reason := <-logoutCh:
		log.Warn().Str("reason", reason).Msg("Session invalidated, exiting")
	case <-quit:
		log.Info().Msg("Shutting down...")
	}
}

func watchConversation(conv *services.ConversationModel) {
	defer conv.Close()
	updates, cancel := conv.Observe()
	defer cancel()
	for c := range updates {
		last := c.LastMessage()
		if last == nil {
			continue
		}
		log.Info().
			Str("conversation_id", c.ID).
			Bool("available", c.Available).
			Str("last_message", last.Payload).
			Bool("mine", last.IsMine).
			Msg("Conversation updated")
	}
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

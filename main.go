package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/Montebello-TourBot/admissions"
	"github.com/tanpawarit/Montebello-TourBot/agent/agents/tourbot"
	contractx "github.com/tanpawarit/Montebello-TourBot/agent/contract"
	"github.com/tanpawarit/Montebello-TourBot/agent/llm"
	promptx "github.com/tanpawarit/Montebello-TourBot/agent/prompt"
	statex "github.com/tanpawarit/Montebello-TourBot/agent/state"
	toolx "github.com/tanpawarit/Montebello-TourBot/agent/tool"
	"github.com/tanpawarit/Montebello-TourBot/server"

	configx "github.com/tanpawarit/Montebello-TourBot/pkg/config"
	_ "github.com/tanpawarit/Montebello-TourBot/pkg/logger/autoload"
	openrouterx "github.com/tanpawarit/Montebello-TourBot/pkg/openrouter"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbCfg := configx.MustNew[admissions.DatabaseConfig]("DATABASE")
	serverCfg := configx.MustNew[server.Config]("SERVER")
	llmCfg := configx.MustNew[llm.Config]("OPENROUTER")

	db, err := admissions.Open(*dbCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	if err := admissions.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}
	if err := admissions.Seed(ctx, db, admissions.SeedOptions{}); err != nil {
		log.Fatal().Err(err).Msg("seed database")
	}

	store, err := admissions.NewStore(db)
	if err != nil {
		log.Fatal().Err(err).Msg("create admissions store")
	}

	prompts := promptx.LoadPromptSet()

	var (
		dialogue  contractx.DialogueModel
		extractor statex.Extractor
	)
	if llmCfg.Enabled() {
		chatCfg := llmCfg.OpenRouterFor(contractx.ModelRoleTourbot)
		chatModel, err := chatCfg.New(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("create chat model")
		}
		dialogue, err = llm.NewDialogue(ctx, chatModel, prompts.Tourbot, toolx.Infos())
		if err != nil {
			log.Fatal().Err(err).Msg("create dialogue model")
		}

		client := openrouterx.NewClient(llmCfg.OpenRouterFor(contractx.ModelRoleExtractor))
		extractor, err = llm.NewExtractor(client, *llmCfg, prompts.Extractor)
		if err != nil {
			log.Fatal().Err(err).Msg("create state extractor")
		}
	} else {
		log.Warn().Msg("no api key configured, running with fixed replies")
	}

	threads := statex.NewMemoryStore()

	bot, err := tourbot.New(threads, store, store, dialogue, extractor)
	if err != nil {
		log.Fatal().Err(err).Msg("create tourbot")
	}

	srv, err := server.New(bot, *serverCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("create http server")
	}

	httpServer := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverCfg.Addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

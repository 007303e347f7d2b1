package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/retailops/smartchain/decision/contract"
	marketx "github.com/retailops/smartchain/decision/market"
	notifyx "github.com/retailops/smartchain/decision/notify"
	oraclex "github.com/retailops/smartchain/decision/oracle"
	pipelinex "github.com/retailops/smartchain/decision/pipeline"
	promptx "github.com/retailops/smartchain/decision/prompt"
	schedulex "github.com/retailops/smartchain/decision/schedule"
	storex "github.com/retailops/smartchain/decision/store"
	configx "github.com/retailops/smartchain/pkg/config"
	_ "github.com/retailops/smartchain/pkg/logger/autoload"
	serverx "github.com/retailops/smartchain/server"
)

type AppConfig struct {
	TriggerInterval time.Duration `envconfig:"TRIGGER_INTERVAL" split_words:"true" default:"24h"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" split_words:"true" default:"10s"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("")

	oracleClient := oraclex.MustNew(*configx.MustNew[oraclex.Config]("OPENAI"))
	marketClient := marketx.MustNew(*configx.MustNew[marketx.Config]("SERPER"))
	notifyClient := notifyx.MustNew(*configx.MustNew[notifyx.Config]("SENDGRID"))
	repo := storex.MustNew(*configx.MustNew[storex.Config]("DATABASE"))

	pipelines, err := pipelinex.New(
		repo,
		oracleClient,
		marketClient,
		notifyClient,
		promptx.LoadPromptSet(),
		*configx.MustNew[pipelinex.Config]("LIQUIDATION"),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build decision pipelines")
	}

	trigger, err := schedulex.New("liquidation", appCfg.TriggerInterval, func(ctx context.Context) error {
		status, err := pipelines.Liquidate(ctx)
		if err != nil {
			return err
		}
		if status == contractx.EmailSkipped {
			log.Info().Msg("scheduled liquidation skipped: no candidates")
		}
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build liquidation trigger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	triggerDone := trigger.Start(ctx)

	serverCfg := configx.MustNew[serverx.Config]("SERVER")
	srv := &http.Server{
		Addr:    serverCfg.Addr,
		Handler: serverx.New(pipelines),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), appCfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	log.Info().Str("addr", serverCfg.Addr).Msg("decision service listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}

	<-triggerDone
}

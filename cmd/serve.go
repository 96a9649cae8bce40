package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/job-matcher/internal/corpus"
	"github.com/spigell/job-matcher/internal/metrics"
	"github.com/spigell/job-matcher/internal/recommender"
	"github.com/spigell/job-matcher/internal/secrets"
	"github.com/spigell/job-matcher/internal/server"
	"github.com/spigell/job-matcher/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve recommendations over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "listen address (default server.listen)")
	serveCmd.Flags().BoolP("watch", "w", false, "refit when the corpus file changes")

	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("corpus.watch", serveCmd.Flags().Lookup("watch"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, config := setup()

	if !viper.GetBool("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	engine, err := fittedEngine(ctx, config, logger, metrics.New(reg))
	if err != nil {
		logger.Fatal("preparing the engine", zap.Error(err))
	}

	token, err := secrets.Load(secrets.Source{
		Name: "api token",
		File: config.Server.TokenFile,
		Env:  apiTokenEnv,
	})
	if err != nil && !errors.Is(err, secrets.ErrNotConfigured) {
		logger.Fatal("loading api token", zap.Error(err))
	}
	if token == "" {
		logger.Warn("api authentication disabled",
			zap.String("hint", "set server.token-file or "+apiTokenEnv),
		)
	}

	srv := server.New(server.Config{
		Listen: config.Server.Listen,
		Token:  token,
		Skills: config.Skills,
	}, engine, reg, logger)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gCtx)
	})

	if config.Corpus.Watch {
		w, err := corpusWatcher(config, engine, logger)
		if err != nil {
			logger.Fatal("creating corpus watcher", zap.Error(err))
		}
		g.Go(func() error {
			return w.Run(gCtx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Fatal("serving", zap.Error(err))
	}
	logger.Info("exiting", zap.String("reason", "shutdown requested"))
}

func corpusWatcher(config *Config, engine *recommender.Engine, logger *zap.Logger) (*watcher.Watcher, error) {
	if config.Corpus.File == "" {
		return nil, errors.New("corpus.watch requires corpus.file")
	}

	reload := func(context.Context) error {
		postings, err := corpus.LoadFile(config.Corpus.File)
		if err != nil {
			return err
		}
		_, err = engine.Fit(postings)
		return err
	}

	return watcher.New(config.Corpus.File, config.Corpus.Debounce, reload, logger)
}

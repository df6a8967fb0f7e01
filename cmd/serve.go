package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/helmcode/neuropath/pkg/analyzer"
	"github.com/helmcode/neuropath/pkg/config"
	"github.com/helmcode/neuropath/pkg/logging"
	"github.com/helmcode/neuropath/pkg/relay"
)

const shutdownGrace = 10 * time.Second

type serveOptions struct {
	configPath string
	listenAddr string
	provider   string
	model      string
	verbose    bool
}

func NewServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis relay service",
		Long: `Run the HTTP relay that forwards decisions to the upstream chat-completion
gateway and returns the parsed analysis.

The API key is read from NEUROPATH_API_KEY (or LOVABLE_API_KEY).

Examples:
  # Serve on the default address
  NEUROPATH_API_KEY=... neuropath serve

  # Use a config file and a different model
  neuropath serve --config neuropath.yaml --model google/gemini-2.5-pro`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&opts.listenAddr, "listen", "", "Listen address (overrides config)")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "LLM provider (gateway, openai, claude)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model identifier (overrides default)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Debug logging")

	return cmd
}

func runServe(ctx context.Context, opts *serveOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.listenAddr != "" {
		cfg.ListenAddr = opts.listenAddr
	}
	if opts.provider != "" {
		cfg.Provider = opts.provider
	}
	if opts.model != "" {
		cfg.Model = opts.model
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, opts.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a, err := analyzer.NewFromSettings(cfg.LLMSettings(), analyzer.WithLogger(logger.Named("analyzer")))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	relayOpts := []relay.Option{relay.WithLogger(logger.Named("relay"))}
	var limiter *relay.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = relay.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		relayOpts = append(relayOpts, relay.WithRateLimiter(limiter))
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           relay.New(a, relayOpts...),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.UpstreamTimeout + 15*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	if limiter != nil {
		g.Go(func() error {
			limiter.Run(gctx)
			return nil
		})
	}
	g.Go(func() error {
		logger.Info("relay listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("provider", cfg.Provider),
			zap.String("model", a.Model()),
			zap.Duration("upstream_timeout", cfg.UpstreamTimeout))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

package cmd

import (
	"context"
	"errors"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/indigo-web/httpfront"
	"github.com/indigo-web/httpfront/config"
	"github.com/indigo-web/httpfront/http"
	"github.com/indigo-web/httpfront/http/mime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	serveCmd.Flags().String("addr", "0.0.0.0:8080", "address to listen at")
	serveCmd.Flags().String("metrics-addr", "", "address to expose prometheus metrics at (disabled if empty)")
	serveCmd.Flags().String("env", ".env", "dotenv file with "+config.EnvPrefix+"* overrides (ignored if missing)")

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start serving requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		configPath, _ := cmd.Flags().GetString("config")
		addr, _ := cmd.Flags().GetString("addr")
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
		dotenv, _ := cmd.Flags().GetString("env")

		logger, err := newLogger(verbose)
		if err != nil {
			return err
		}
		defer func() {
			_ = logger.Sync()
		}()

		cfg, err := loadConfig(configPath, dotenv, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app := httpfront.New(cfg).Logger(logger)

		if len(metricsAddr) > 0 {
			shutdown := serveMetrics(metricsAddr, app, logger)
			defer shutdown()
		}

		app.NotifyOnStop(func() {
			logger.Info("stopped")
		})

		return app.Serve(ctx, addr, echo)
	},
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}

	return zap.NewProduction()
}

func loadConfig(path, dotenv string, logger *zap.Logger) (*config.Config, error) {
	cfg := config.Default()

	if len(path) > 0 {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}

		logger.Info("config_loaded", zap.String("path", path))
	}

	overridden, err := config.LoadEnv(cfg, dotenv)
	if err != nil {
		return nil, err
	}

	logger.Info("limits",
		zap.Bool("env_overrides", overridden),
		zap.String("max_request_line", humanize.IBytes(uint64(cfg.URI.RequestLineSize.Maximal))),
		zap.String("max_header_line", humanize.IBytes(uint64(cfg.Headers.LineSize.Maximal))),
		zap.Int("max_headers", cfg.Headers.Number.Maximal),
		zap.String("max_write_buffer", humanize.IBytes(uint64(cfg.NET.WriteBufferSize.Maximal))),
		zap.Duration("read_timeout", cfg.NET.ReadTimeout),
		zap.Duration("request_timeout", cfg.NET.RequestTimeout),
	)

	return cfg, nil
}

func serveMetrics(addr string, app *httpfront.App, logger *zap.Logger) (shutdown func()) {
	mux := stdhttp.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(app.Metrics().Registry, promhttp.HandlerOpts{}))

	server := &stdhttp.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics_listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			logger.Error("metrics_failed", zap.Error(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}

// echo is the default handler. It answers with the method and the path of the request.
func echo(request *http.Request) *http.Response {
	return request.Respond().
		ContentType(mime.WithCharset(mime.Plain, "utf-8")).
		String(request.Method.String() + " " + request.Path + "\n")
}

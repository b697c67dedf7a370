package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"stakingfetcher/internal/api"
	"stakingfetcher/internal/config"
	"stakingfetcher/internal/coordinator"
	"stakingfetcher/internal/fetcher"
	"stakingfetcher/internal/logger"
	"stakingfetcher/internal/ratelimit"
	"stakingfetcher/internal/service"
	"stakingfetcher/internal/stakingrewards"
	"stakingfetcher/internal/table"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	start, end := cfg.DefaultRange(time.Now())
	mode := flag.String("mode", "serve", "Mode: serve or export")
	port := flag.String("port", cfg.ServerPort, "Port for serve mode")
	slugs := flag.String("slugs", cfg.DefaultSlugs, "Comma-separated provider slugs (export mode)")
	metrics := flag.String("metrics", cfg.DefaultMetrics, "Comma-separated metric keys (export mode)")
	startDay := flag.String("start", start.Format(fetcher.DateLayout), "First day, YYYY-MM-DD (export mode)")
	endDay := flag.String("end", end.Format(fetcher.DateLayout), "Last day, YYYY-MM-DD (export mode)")
	out := flag.String("out", "", "CSV output file, stdout when empty (export mode)")
	flag.Parse()

	// Export may write the CSV to stdout, so its logs go to stderr.
	logOut := os.Stdout
	if *mode == "export" {
		logOut = os.Stderr
	}
	logger.InitWriter(logOut, cfg.LogLevel, cfg.LogPretty)

	// Cancel on interrupt for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := service.NewHistoryService(newClientFactory(cfg), cfg.APIKey)

	switch *mode {
	case "serve":
		err = serve(ctx, cfg, svc, *port)
	case "export":
		err = export(ctx, cfg, svc, *slugs, *metrics, *startDay, *endDay, *out)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}

	if err != nil {
		logger.L().Error().Err(err).Str("mode", *mode).Msg("exiting")
		os.Exit(1)
	}
}

// newClientFactory wires every per-request client to the shared limiter.
func newClientFactory(cfg *config.Config) service.ClientFactory {
	limiter := ratelimit.New()
	limiter.Set(ratelimit.APIStakingRewards, cfg.RateLimit)

	return stakingrewards.NewFactory(cfg.BaseURL,
		stakingrewards.WithTimeout(cfg.RequestTimeout),
		stakingrewards.WithLimiter(limiter),
	)
}

// serve runs the web interface until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, svc service.HistoryService, port string) error {
	gin.SetMode(gin.ReleaseMode)
	handler := api.NewHandler(svc, api.Defaults{
		Slugs:        cfg.DefaultSlugs,
		Metrics:      cfg.DefaultMetrics,
		LookbackDays: cfg.LookbackDays,
		CSVFilename:  cfg.CSVFilename,
	})

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           api.NewRouter(handler, cfg.FetchTimeout),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.L().Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.L().Info().Msg("server exited gracefully")
	return nil
}

// export fetches one range and writes the CSV to out, or stdout.
func export(ctx context.Context, cfg *config.Config, svc service.HistoryService, slugs, metrics, startDay, endDay, out string) error {
	start, err := fetcher.ParseDay(startDay)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}
	end, err := fetcher.ParseDay(endDay)
	if err != nil {
		return fmt.Errorf("invalid -end: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	sink := coordinator.ProgressFunc(func(p coordinator.Progress) {
		logger.L().Info().Int("done", p.Done).Int("total", p.Total).Float64("progress", p.Fraction()).Msg("fetch progress")
	})

	t, err := svc.Fetch(ctx, "", fetcher.NewQuery(slugs, metrics, start, end), sink)
	if err != nil {
		return err
	}

	if err := writeCSV(t, out); err != nil {
		return err
	}
	logger.L().Info().Int("rows", t.Len()).Str("out", out).Msg("export done")
	return nil
}

func writeCSV(t *table.Table, out string) error {
	if out == "" {
		return t.WriteCSV(os.Stdout)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

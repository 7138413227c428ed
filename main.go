package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"rental-aggregator/api"
	"rental-aggregator/browser"
	"rental-aggregator/config"
	"rental-aggregator/feed"
	"rental-aggregator/models"
	"rental-aggregator/pipeline"
	"rental-aggregator/scraper"
	"rental-aggregator/scraper/condos"
	"rental-aggregator/scraper/craigslist"
	"rental-aggregator/scraper/kijiji"
	"rental-aggregator/scraper/realtor"
	"rental-aggregator/seed"
	"rental-aggregator/services"
	"rental-aggregator/storage"
	"rental-aggregator/utils"
)

func main() {
	serve := flag.Bool("serve", false, "after the first run, serve the dataset over HTTP")
	flag.Parse()

	logger := utils.NewLogger()
	if err := run(*serve, logger); err != nil {
		logger.Error("[fatal] %v", err)
		os.Exit(1)
	}
}

func run(serve bool, logger *utils.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== Rental aggregation starting ===")
	logger.Info("Config — max rent: %d | regions: %s | parser: %s | browser: %t",
		cfg.MaxRent, strings.Join(cfg.Regions, ", "), cfg.FeedParser, cfg.BrowserEnabled)

	parser, err := feed.NewParser(cfg.FeedParser)
	if err != nil {
		return err
	}

	fetcher := scraper.NewFeedFetcher(scraper.FetcherOptions{
		Timeout:     cfg.RequestTimeout,
		MaxRetries:  cfg.MaxRetries,
		RetryWait:   time.Second,
		RateLimitMs: cfg.RateLimitMs,
	}, logger)

	// page stays a nil interface when no browser is available.
	var page scraper.Page
	if cfg.BrowserEnabled {
		b, err := browser.Launch(ctx, browser.Options{
			ChromeBin:   cfg.ChromeBin,
			RenderWait:  cfg.RenderWait,
			MaxAttempts: cfg.MaxRetries + 1,
		}, logger)
		if err != nil {
			logger.Error("[browser] launch failed: %v", err)
		} else {
			page = b
			defer b.Close()
		}
	}

	adapters := []scraper.Adapter{
		{Name: "Kijiji", Run: kijiji.New(fetcher, parser, logger).Run},
		{Name: "Craigslist", Run: craigslist.New(fetcher, parser, logger).Run},
		{Name: "Realtor", Run: realtor.New(page, logger).Run},
		{Name: "Condos", Run: condos.New(page, logger).Run},
	}

	seedRows, err := seed.Load()
	if err != nil {
		return err
	}

	normalizer := services.NewNormalizer()
	p, err := pipeline.New(adapters, normalizer,
		services.NewAggregator(normalizer, seedRows, logger),
		logger, cfg.MaxRent, cfg.Regions)
	if err != nil {
		return err
	}

	out := openOutputs(ctx, cfg, logger)
	defer out.close(logger)

	ds, err := p.Run(ctx)
	if err != nil {
		return err
	}
	if err := out.publish(ctx, ds, logger); err != nil {
		return err
	}

	reporter := services.NewReportService(logger)
	report := reporter.Generate(ds)
	reporter.LogSummary(report)
	reporter.Print(report)

	if !serve {
		return nil
	}
	return serveAPI(ctx, cfg, api.Deps{
		Store:     out.store,
		Refresh:   p.Run,
		Sinks:     out.all(),
		Reporter:  reporter,
		Logger:    logger,
		RateLimit: cfg.HTTPRateLimit,
	}, logger)
}

// outputs groups the configured sinks and the snapshot store.
type outputs struct {
	json  *storage.JSONWriter
	sinks []storage.DatasetWriter
	store storage.SnapshotStore

	closers []func() error
}

// openOutputs builds the optional sinks. A sink that cannot be opened is
// logged and skipped. The snapshot store is Redis when configured, then
// PostgreSQL, then process memory.
func openOutputs(ctx context.Context, cfg *config.Config, logger *utils.Logger) *outputs {
	o := &outputs{json: storage.NewJSONWriter(cfg.OutputPath)}

	if cfg.CSVOutputPath != "" {
		w, err := storage.NewCSVWriter(cfg.CSVOutputPath)
		if err != nil {
			logger.Error("Failed to create CSV writer: %v", err)
		} else {
			o.sinks = append(o.sinks, w)
			o.closers = append(o.closers, w.Close)
		}
	}

	if cfg.RedisAddr != "" {
		c, err := storage.NewRedisCache(ctx, storage.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		})
		if err != nil {
			logger.Warn("[cache] %v; using in-memory snapshot", err)
		} else {
			o.store = c
			o.closers = append(o.closers, c.Close)
		}
	}

	if cfg.DatabaseURL != "" {
		pg, err := storage.NewPostgresWriter(ctx, cfg.DatabaseURL, &utils.RetryConfig{
			MaxAttempts: 5,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		})
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL: %v", err)
		} else {
			o.closers = append(o.closers, pg.Close)
			if o.store == nil {
				o.store = pg
			} else {
				o.sinks = append(o.sinks, pg)
			}
		}
	}

	if o.store == nil {
		o.store = storage.NewMemoryStore()
	}
	return o
}

// publish writes ds to every sink and the snapshot store. Only a failed
// JSON export is fatal.
func (o *outputs) publish(ctx context.Context, ds *models.Dataset, logger *utils.Logger) error {
	if err := o.json.Write(ctx, ds); err != nil {
		return err
	}
	logger.Info("[write] %s", o.json.Path())

	for _, sink := range o.sinks {
		if err := sink.Write(ctx, ds); err != nil {
			logger.Error("[write] %T: %v", sink, err)
		}
	}

	if err := o.store.Save(ctx, ds); err != nil {
		logger.Warn("[cache] snapshot save failed: %v", err)
	}
	return nil
}

// all returns the JSON export followed by the optional sinks.
func (o *outputs) all() []storage.DatasetWriter {
	return append([]storage.DatasetWriter{o.json}, o.sinks...)
}

func (o *outputs) close(logger *utils.Logger) {
	for _, c := range o.closers {
		if err := c(); err != nil {
			logger.Warn("close output: %v", err)
		}
	}
}

func serveAPI(ctx context.Context, cfg *config.Config, deps api.Deps, logger *utils.Logger) error {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("[api] listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("[api] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

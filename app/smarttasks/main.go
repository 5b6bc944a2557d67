package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jrazmi/smarttasks/app/smarttasks/config"
	"github.com/jrazmi/smarttasks/bridge/repositories/tasksrepobridge"
	"github.com/jrazmi/smarttasks/bridge/scaffolding/errs"
	"github.com/jrazmi/smarttasks/bridge/scaffolding/mid"
	"github.com/jrazmi/smarttasks/bridge/suggestionsbridge"
	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo"
	"github.com/jrazmi/smarttasks/core/repositories/tasksrepo/stores/taskstores"
	"github.com/jrazmi/smarttasks/core/suggestions"
	"github.com/jrazmi/smarttasks/infrastructure/gemini"
	"github.com/jrazmi/smarttasks/infrastructure/web"
	"github.com/jrazmi/smarttasks/infrastructure/workers"
	"github.com/jrazmi/smarttasks/sdk/environment"
	"github.com/jrazmi/smarttasks/sdk/logger"
	"github.com/jrazmi/smarttasks/sdk/telemetry"
)

var build = "develop"
var appName = "SMARTTASKS"

func main() {
	if err := environment.LoadEnv(); err != nil {
		fmt.Println("loading .env:", err)
		os.Exit(1)
	}

	log, err := logger.NewFromEnv(appName)
	if err != nil {
		fmt.Println("oh no we couldn't even get logging going:", err)
		os.Exit(1)
	}
	ctx := context.Background()

	if err := run(ctx, log); err != nil {
		log.ErrorContext(ctx, "startup", "err", err)
		log.Close()
		os.Exit(1)
	}
	log.Close()
}

func run(ctx context.Context, log *logger.Logger) error {
	log.InfoContext(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0), "build", build)

	var appCfg config.Options
	if err := environment.ParseEnvTags(appName, &appCfg); err != nil {
		return fmt.Errorf("parsing app config: %w", err)
	}

	// STORAGE //
	storeCfg, err := taskstores.OptionsFromEnv(appName)
	if err != nil {
		return err
	}
	store, err := taskstores.Open(ctx, log, appName, storeCfg)
	if err != nil {
		return fmt.Errorf("opening task store: %w", err)
	}
	defer func() {
		log.InfoContext(ctx, "shutdown", "status", "closing task store", "driver", store.Driver)
		store.Close()
	}()
	log.InfoContext(ctx, "init", "service", "task store", "driver", store.Driver)

	// SUGGESTIONS //
	gen, closeGen, err := newGenerator(ctx, log)
	if err != nil {
		return err
	}
	defer closeGen()

	suggester, err := newSuggester(log, gen)
	if err != nil {
		return err
	}

	// REPOSITORIES //
	repo := tasksrepo.NewRepository(log, store,
		tasksrepo.WithSuggester(suggester),
		tasksrepo.WithNotifier(tasksrepo.NewLogNotifier(log)),
	)
	n := repo.Load(ctx)
	log.InfoContext(ctx, "init", "service", "tasks repository", "tasks", n)

	// WORKERS //
	queue := suggestions.NewQueue(log, repo, appCfg.SuggestionQueueSize)
	poolOpts := []workers.Option{
		workers.WithName("suggestions"),
		workers.WithLogger(log),
		workers.WithMetrics(workers.NewInMemoryMetrics()),
	}
	if appCfg.SuggestionMaxErrors > 0 {
		poolOpts = append(poolOpts, workers.WithMiddleware(workers.ConsecutiveErrorShutdown(appCfg.SuggestionMaxErrors)))
	}
	pool, err := workers.NewFromEnv[suggestions.Job](appName, queue, poolOpts...)
	if err != nil {
		return err
	}
	pre, post := workers.TimingHooks[suggestions.Job](log)
	pool.AddPreProcessHooks(pre)
	pool.AddPostProcessHooks(post)

	poolCtx, stopPool := context.WithCancel(ctx)
	defer stopPool()
	poolErrors := make(chan error, 1)
	go func() {
		poolErrors <- pool.Start(poolCtx)
	}()

	// WEB //
	webCfg, err := web.LoadServerConfig(appName)
	if err != nil {
		return fmt.Errorf("webserver: %w", err)
	}

	siteCfg := config.SmartTasks{
		Build:     build,
		Logger:    log,
		Telemetry: telemetry.NewTelemetry(),
		Web:       webCfg,
		Repositories: config.Repositories{
			Tasks: repo,
		},
		StoreCheck:      store.Check,
		Generator:       gen,
		SuggestionQueue: queue,
		WorkerMetrics:   pool.GetMetrics,
	}
	server := web.NewServer(webCfg,
		web.WithHandler(webHandler(siteCfg)),
		web.WithErrorLog(logger.NewStdLogger(log, slog.LevelError)),
	)

	serverErrors := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "startup", "status", "api router started", "host", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case err := <-poolErrors:
		server.Close()
		return fmt.Errorf("suggestion workers stopped: %w", err)

	case sig := <-shutdown:
		log.InfoContext(ctx, "shutdown", "status", "shutdown started", "signal", sig)
		defer log.InfoContext(ctx, "shutdown", "status", "shutdown complete", "signal", sig)

		ctx, cancel := context.WithTimeout(ctx, webCfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			server.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}

		stopPool()
		if err := <-poolErrors; err != nil {
			log.WarnContext(ctx, "shutdown", "status", "suggestion workers", "err", err)
		}
	}

	return nil
}

// newGenerator builds the Gemini client. A missing API key is not fatal: the
// proxy then answers every request with the generic failure.
func newGenerator(ctx context.Context, log *logger.Logger) (suggestions.Generator, func() error, error) {
	cfg, err := gemini.OptionsFromEnv()
	if err != nil {
		return nil, nil, err
	}

	gen, closeFn, err := gemini.New(ctx, log, cfg)
	if errors.Is(err, gemini.ErrMissingAPIKey) {
		log.WarnContext(ctx, "init", "service", "gemini", "status", "GEMINI_API_KEY not set, subtask generation disabled")
		return nil, func() error { return nil }, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("configuring gemini: %w", err)
	}
	log.InfoContext(ctx, "init", "service", "gemini", "model", cfg.Model, "transport", cfg.Transport)
	return gen, closeFn, nil
}

// newSuggester prefers an external proxy when one is configured and falls
// back to calling the generator in-process.
func newSuggester(log *logger.Logger, gen suggestions.Generator) (tasksrepo.Suggester, error) {
	cfg, err := suggestions.OptionsFromEnv(appName)
	if err != nil {
		return nil, err
	}
	switch {
	case cfg.ProxyURL != "":
		return suggestions.NewClient(log, cfg), nil
	case gen != nil:
		return suggestions.NewDirect(log, gen), nil
	default:
		return nil, nil
	}
}

func webHandler(cfg config.SmartTasks) http.Handler {
	log := cfg.Logger

	// INITIALIZATION
	app := web.NewWebHandler(web.HandlerOptions{},
		web.WithCORS(cfg.Web.CORSOrigins),
		web.WithDefaultHeaders(map[string]string{"X-Content-Type-Options": "nosniff"}),
		web.WithLogging(log),
		web.WithTelemetry(cfg.Telemetry),
		web.WithGlobalMiddleware(
			mid.Logger(log), // Request logging
			mid.Errors(log), // Error handling
			mid.Metrics(),   // Metrics collection
			mid.Panics(),    // Panic recovery
		),
	)

	// API
	var queue tasksrepobridge.Enqueuer
	if cfg.SuggestionQueue != nil {
		queue = cfg.SuggestionQueue
	}
	tasksrepobridge.AddHttpRoutes(app.Group(cfg.Web.APIRoute), tasksrepobridge.Config{
		Log:        log,
		Repository: cfg.Repositories.Tasks,
		Queue:      queue,
	})

	// PROXY
	suggestionsbridge.AddHttpRoutes(app.Group(config.ProxyRoute), suggestionsbridge.Config{
		Log:       log,
		Generator: cfg.Generator,
	})

	app.GET("/liveness", func(ctx context.Context, r *http.Request) web.Encoder {
		return web.NewJSONResponse(map[string]string{"status": "up", "build": cfg.Build})
	})

	app.GET("/readiness", func(ctx context.Context, r *http.Request) web.Encoder {
		if cfg.StoreCheck == nil {
			return web.NewJSONResponse(map[string]string{"status": "ok"})
		}
		ctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := cfg.StoreCheck(ctx); err != nil {
			log.WarnContext(ctx, "readiness failure", "error", err)
			return errs.Newf(errs.Unavailable, "task store unavailable")
		}
		return web.NewJSONResponse(map[string]string{"status": "ok"})
	})

	// DEBUG
	if cfg.Web.EnableDebug {
		app.HandleRaw("GET /debug/vars", expvar.Handler())
		if cfg.WorkerMetrics != nil {
			app.GET("/debug/workers", func(ctx context.Context, r *http.Request) web.Encoder {
				return web.NewJSONResponse(cfg.WorkerMetrics())
			})
		}
	}

	return app
}

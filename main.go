package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"restroom-cloud/internal/audit"
	"restroom-cloud/internal/auth"
	"restroom-cloud/internal/cleaning"
	cleaningnotify "restroom-cloud/internal/cleaning/notify"
	"restroom-cloud/internal/config"
	evaluationdomain "restroom-cloud/internal/evaluation/domain"
	evaluationmemory "restroom-cloud/internal/evaluation/infrastructure/memory"
	evaluationrepo "restroom-cloud/internal/evaluation/infrastructure/postgres"
	evaluationhttp "restroom-cloud/internal/evaluation/interfaces"
	feedbackdomain "restroom-cloud/internal/feedback/domain"
	feedbackmemory "restroom-cloud/internal/feedback/infrastructure/memory"
	feedbackrepo "restroom-cloud/internal/feedback/infrastructure/postgres"
	feedbackhttp "restroom-cloud/internal/feedback/interfaces"
	"restroom-cloud/internal/observability/metrics"
	scheduledomain "restroom-cloud/internal/schedule/domain"
	schedulememory "restroom-cloud/internal/schedule/infrastructure/memory"
	schedulerepo "restroom-cloud/internal/schedule/infrastructure/postgres"
	schedulehttp "restroom-cloud/internal/schedule/interfaces"
	"restroom-cloud/internal/status/feed"
	statushttp "restroom-cloud/internal/status/interfaces"
	"restroom-cloud/internal/status/latest"
	usageapp "restroom-cloud/internal/usage/application"
	usage "restroom-cloud/internal/usage/domain"
	usagememory "restroom-cloud/internal/usage/infrastructure/memory"
	usagerepo "restroom-cloud/internal/usage/infrastructure/postgres"
	usagehttp "restroom-cloud/internal/usage/interfaces"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := log.New(os.Stdout, "", log.LstdFlags)

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatalf("timezone error: %v", err)
	}

	// Without a database the service still runs; summaries, feedback and the
	// roster fall back to in-memory stores and are lost on restart.
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
	} else {
		logger.Printf("no DATABASE_URL configured, using in-memory stores")
	}
	metrics.Init(db, logger)

	var auditLogger audit.Logger
	var summaryStore usage.SummaryStore
	var feedbackRepo feedbackdomain.Repository
	var evaluationRepo evaluationdomain.Repository
	var scheduleRepo scheduledomain.Repository
	if db != nil {
		auditLogger = audit.NewRepository(db)
		summaryStore = usagerepo.NewSummaryStore(db)
		feedbackRepo = feedbackrepo.NewRepository(db)
		evaluationRepo = evaluationrepo.NewRepository(db)
		scheduleRepo = schedulerepo.NewRepository(db)
	} else {
		summaryStore = usagememory.NewSummaryStore()
		feedbackRepo = feedbackmemory.NewRepository()
		evaluationRepo = evaluationmemory.NewRepository()
		scheduleRepo = schedulememory.NewRepository()
	}

	aggregator, err := usageapp.NewAggregator(summaryStore, loc, usageapp.SystemClock{}, logger)
	if err != nil {
		logger.Fatalf("aggregator error: %v", err)
	}
	ctx := context.Background()
	if err := aggregator.Start(ctx); err != nil {
		logger.Fatalf("aggregator start error: %v", err)
	}
	go aggregator.StartRolloverLoop(ctx, cfg.RolloverInterval)

	sweeper, err := usageapp.NewRetentionSweeper(summaryStore, loc, logger, usageapp.WithRetentionDays(cfg.RetentionDays))
	if err != nil {
		logger.Fatalf("retention sweeper error: %v", err)
	}
	go sweeper.Start(ctx, 24*time.Hour)

	latestStore := latest.NewStore()

	var watchers []usageapp.SnapshotWatcher
	if cfg.CleaningWebhookURL != "" {
		channel, err := cleaningnotify.NewWebhookChannel(cfg.CleaningWebhookURL)
		if err != nil {
			logger.Fatalf("cleaning webhook error: %v", err)
		}
		watchers = append(watchers, cleaning.NewWatcher(channel, logger, cleaning.WithCooldown(cfg.CleaningCooldown)))
	}

	recorder, err := usageapp.NewRecorder(aggregator, latestStore, watchers...)
	if err != nil {
		logger.Fatalf("recorder error: %v", err)
	}

	if cfg.FeedBaseURL != "" {
		feedClient, err := feed.NewClient(cfg.FeedBaseURL)
		if err != nil {
			logger.Fatalf("feed client error: %v", err)
		}
		poller, err := usageapp.NewPoller(feedClient, recorder, cfg.PollInterval, usageapp.SystemClock{}, logger)
		if err != nil {
			logger.Fatalf("poller error: %v", err)
		}
		go poller.Start(ctx)
		logger.Printf("polling %s every %s", cfg.FeedBaseURL, cfg.PollInterval)
	}

	ingestHandler, err := statushttp.NewIngestHandler(recorder, logger)
	if err != nil {
		logger.Fatalf("ingest handler error: %v", err)
	}
	latestHandler, err := statushttp.NewLatestHandler(latestStore)
	if err != nil {
		logger.Fatalf("latest handler error: %v", err)
	}
	summaryHandler, err := usagehttp.NewSummaryHandler(aggregator, auditLogger)
	if err != nil {
		logger.Fatalf("usage handler error: %v", err)
	}
	feedbackHandler, err := feedbackhttp.NewHandler(feedbackRepo, logger)
	if err != nil {
		logger.Fatalf("feedback handler error: %v", err)
	}
	evaluationHandler, err := evaluationhttp.NewHandler(evaluationRepo, logger)
	if err != nil {
		logger.Fatalf("evaluation handler error: %v", err)
	}
	scheduleHandler, err := schedulehttp.NewHandler(scheduleRepo, logger)
	if err != nil {
		logger.Fatalf("schedule handler error: %v", err)
	}

	if cfg.JWTSecret == "" {
		logger.Fatalf("AUTH_JWT_SECRET is required")
	}
	loginHandler, err := auth.NewLoginHandler(cfg.Users, []byte(cfg.JWTSecret), 0)
	if err != nil {
		logger.Fatalf("login handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy(
		[]string{"/healthz", "/metrics", "/api/v1/auth/login"},
		[]string{"/ingest/"},
	)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)
	ingestAuth := auth.NewIngestAuthMiddleware([]byte(cfg.IngestSecret), 5*time.Minute)

	mux := http.NewServeMux()
	mux.Handle("/ingest/restroom/status", ingestAuth.Wrap(ingestHandler))
	mux.Handle("/api/restroom/status/latest", latestHandler)
	mux.Handle("/api/v1/usage/daily", summaryHandler)
	mux.Handle("/api/v1/usage/daily/", summaryHandler)
	mux.Handle("/api/v1/feedback", feedbackHandler)
	mux.Handle("/api/v1/evaluations", evaluationHandler)
	mux.Handle("/api/v1/schedule", scheduleHandler)
	mux.Handle("/api/v1/auth/login", loginHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

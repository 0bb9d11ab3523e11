package router

import (
	"net/http"
	"time"

	_ "pedigree-tracker/docs"
	mem "pedigree-tracker/internal/adapters/storage/memory"
	"pedigree-tracker/internal/domain/animals"
	"pedigree-tracker/internal/middleware"
	"pedigree-tracker/internal/platform/logger"
	"pedigree-tracker/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	// Opcional: si no viene, store in-memory (dev / tests).
	Repo animals.Repository

	Logger  logger.Logger      // nil = nop
	Metrics *metrics.Collector // nil = registry nuevo

	// CORSOrigins vacío = "*".
	CORSOrigins []string

	// Clock para age / is_adult (tests). nil = time.Now.
	Clock func() time.Time
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	repo := opts.Repo
	if repo == nil {
		repo = mem.NewStore()
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(log, m))
	r.Use(middleware.Recover(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	svc := animals.NewService(repo,
		animals.WithLogger(log),
		animals.WithMetrics(m),
		animals.WithClock(opts.Clock),
	)

	r.Route("/api/v1", func(api chi.Router) {
		animals.RegisterRoutes(api, svc, log)
	})

	return r
}

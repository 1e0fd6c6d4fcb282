package http

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/eventosapp/eventos-api/internal/cache"
	"github.com/eventosapp/eventos-api/internal/config"
	"github.com/eventosapp/eventos-api/internal/http/handlers"
	"github.com/eventosapp/eventos-api/internal/http/middlewares"
	"github.com/eventosapp/eventos-api/internal/observability"
	"github.com/eventosapp/eventos-api/internal/repo/memory"
	"github.com/eventosapp/eventos-api/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

type Deps struct {
	Log          *slog.Logger
	Pool         *pgxpool.Pool // nil wires the in-memory store instead
	Cache        cache.Store
	Prom         *observability.Prom
	PromRegistry *prometheus.Registry
	Cfg          config.Config
}

func NewRouter(d Deps) *gin.Engine {
	if os.Getenv("APP_ENV") != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("eventos-api"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.MaxBodyBytes(d.Cfg.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	if len(d.Cfg.AllowedOrigins) > 0 {
		r.Use(middlewares.CORSMiddleware(d.Cfg.AllowedOrigins))
	}

	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}

	// health
	ping := func() error {
		if d.Pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return d.Pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.PromRegistry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.PromRegistry, promhttp.HandlerOpts{})))
	}

	// wire up repositories
	var (
		eventosRepo       handlers.EventosRepo
		inscripcionesRepo handlers.InscripcionesRepo
	)

	if d.Pool != nil {
		eventosRepo = postgres.NewEventosRepo(d.Pool, d.Prom)
		inscripcionesRepo = postgres.NewInscripcionesRepo(d.Pool, d.Prom)
	} else {
		store := memory.NewStore()
		eventosRepo = store
		inscripcionesRepo = store.Inscripciones()
	}

	eventosHandler := handlers.NewEventosHandlerWithCache(eventosRepo, inscripcionesRepo, d.Cache, d.Prom)
	inscripcionesHandler := handlers.NewInscripcionesHandler(inscripcionesRepo, eventosRepo)

	r.POST("/evento", eventosHandler.CreateEvento)
	r.GET("/evento/count", eventosHandler.CountEventos)
	r.GET("/evento", eventosHandler.ListEventos)
	r.PATCH("/evento", eventosHandler.UpdateAllEventos)
	r.GET("/evento/:id", eventosHandler.GetEventoByID)
	r.PATCH("/evento/:id", eventosHandler.UpdateEventoByID)
	r.PUT("/evento/:id", eventosHandler.ReplaceEventoByID)
	r.DELETE("/evento/:id", eventosHandler.DeleteEvento)

	// inscripcion routes
	r.POST("/evento/:id/inscripcion", inscripcionesHandler.Register)
	r.GET("/evento/:id/inscripcion", inscripcionesHandler.ListForEvento)
	r.DELETE("/evento/:id/inscripcion/:inscripcionId", inscripcionesHandler.Cancel)

	return r
}

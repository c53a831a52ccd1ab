package http

import (
	"net/http"
	"time"

	"millionaire-quiz/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// RouterOptions configures the public HTTP surface.
type RouterOptions struct {
	AllowedOrigins  []string
	DefaultConfigID string
}

// NewRouter mounts health, websocket and REST endpoints.
func NewRouter(service *app.GameService, opts RouterOptions) chi.Router {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           60 * 15,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	ws := NewWSHandler(service, opts.DefaultConfigID, originChecker(origins))
	r.Get("/ws", ws.ServeWS)

	api := NewAPIHandler(service)
	r.Route("/api", func(rr chi.Router) {
		rr.Post("/sessions", api.StartSession)
		rr.Get("/sessions/{sessionID}", api.GetSession)
		rr.Post("/sessions/{sessionID}/actions", api.ApplyAction)
		rr.Delete("/sessions/{sessionID}", api.EndSession)
		rr.Get("/configs/{configID}/ladder", api.Ladder)
	})
	return r
}

// originChecker applies the CORS allow-list to websocket upgrades.
func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}

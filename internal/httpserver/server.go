// internal/httpserver/server.go
//
// HTTP server wiring for the Bingo backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/sample".
//   - Card endpoints: create/list/get/delete, export (routes_cards.go).
//   - Play endpoints: play session, toggle, reset, share, import (routes_play.go).
//   - Collection cookie: every browser gets its own set of cards (collection.go).
//
// Notes:
//   - CORS is origin‑aware and credentials‑enabled (so cookies work).
//   - The game engine is pure; handlers load a card/state pair from the store,
//     apply one engine operation and write the result back.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/bingo/internal/game"
	"github.com/robalobadob/bingo/internal/items"
	"github.com/robalobadob/bingo/internal/store"
)

// Options configures a Server. Zero values fall back to development defaults.
type Options struct {
	ClientOrigin     string        // CORS origin; default http://localhost:5173
	BaseURL          string        // prefix of share links; default derived from the request
	CollectionSecret string        // HS256 key for the collection cookie
	CollectionTTL    time.Duration // collection cookie lifetime; default 180 days
	SecureCookies    bool          // Secure + SameSite=None (production)
	Generator        *game.Generator
	Now              func() time.Time
}

// OptionsFromEnv reads CLIENT_ORIGIN, PUBLIC_BASE_URL, COLLECTION_SECRET,
// COLLECTION_EXPIRES_DAYS and NODE_ENV.
func OptionsFromEnv() Options {
	days := 180
	if v := os.Getenv("COLLECTION_EXPIRES_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	return Options{
		ClientOrigin:     getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		BaseURL:          os.Getenv("PUBLIC_BASE_URL"),
		CollectionSecret: getEnv("COLLECTION_SECRET", "dev_secret_change_me"),
		CollectionTTL:    time.Duration(days) * 24 * time.Hour,
		SecureCookies:    os.Getenv("NODE_ENV") == "production",
	}
}

// Server bundles router, store and card generator.
type Server struct {
	r     *chi.Mux
	store store.Store
	gen   *game.Generator
	opts  Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, opts Options) *Server {
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	if opts.CollectionSecret == "" {
		opts.CollectionSecret = "dev_secret_change_me"
	}
	if opts.CollectionTTL <= 0 {
		opts.CollectionTTL = 180 * 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.Generator == nil {
		opts.Generator = game.NewGenerator(game.WithClock(opts.Now))
	}
	s := &Server{r: chi.NewRouter(), store: st, gen: opts.Generator, opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))     // request-scoped logger
	s.r.Use(accessLog)                       // one line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(s.cors)                          // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service": "bingo-go",
			"endpoints": []string{
				"/health", "/sample", "POST /cards", "GET /cards", "/cards/{id}",
				"POST /cards/{id}/play", "POST /cards/{id}/toggle", "POST /cards/{id}/reset",
				"/cards/{id}/share", "/play?data=|id=", "/play/{id}", "/share/check", "/export",
			},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/sample", handleSample)

	// Everything below belongs to the caller's collection.
	s.r.Group(func(r chi.Router) {
		r.Use(s.withCollection)
		s.mountCards(r)
		s.mountPlay(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Run serves HTTP on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("shutting down http server")
	return srv.Shutdown(shutdownCtx)
}

// Router exposes the internal router (used by tests).
func (s *Server) Router() chi.Router { return s.r }

func (s *Server) now() time.Time { return s.opts.Now() }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.opts.ClientOrigin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

var accessLog = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("reqId", chimw.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
})

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

// writeError writes {"error": code} plus an optional human-readable message.
func writeError(w http.ResponseWriter, status int, code string, msg ...string) {
	body := map[string]string{"error": code}
	if len(msg) > 0 && msg[0] != "" {
		body["message"] = msg[0]
	}
	writeJSON(w, status, body)
}

// baseURL is the prefix for share links: PUBLIC_BASE_URL, or the request's own origin.
func (s *Server) baseURL(r *http.Request) string {
	if s.opts.BaseURL != "" {
		return strings.TrimRight(s.opts.BaseURL, "/")
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

type sampleRes struct {
	Title string   `json:"title"`
	Items []string `json:"items"`
}

// handleSample returns the embedded example card for pre-filling the create form.
func handleSample(w http.ResponseWriter, r *http.Request) {
	title, list, err := items.Sample()
	if err != nil {
		log.Error().Err(err).Msg("load sample")
		writeError(w, http.StatusInternalServerError, "sample_unavailable")
		return
	}
	writeJSON(w, http.StatusOK, sampleRes{Title: title, Items: list})
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

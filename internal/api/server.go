package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/signage-server/signage-server-pro/internal/auth"
	"github.com/signage-server/signage-server-pro/internal/billing"
	"github.com/signage-server/signage-server-pro/internal/complaints"
	"github.com/signage-server/signage-server-pro/internal/config"
	"github.com/signage-server/signage-server-pro/internal/media"
	"github.com/signage-server/signage-server-pro/internal/player"
	"github.com/signage-server/signage-server-pro/internal/scheduling"
	"github.com/signage-server/signage-server-pro/internal/storage"
	"github.com/signage-server/signage-server-pro/internal/validation"
)

type contextKey string

const claimsKey contextKey = "claims"

// RESTServer represents the REST API server
type RESTServer struct {
	config     *config.Config
	store      storage.Store
	auth       *auth.JWTManager
	authn      *auth.Authenticator
	validator  *validation.Validator
	engine     *scheduling.Engine
	billing    *billing.Service
	complaints *complaints.Ledger
	player     *player.Channel
	media      *media.Store
	router     chi.Router
	server     *http.Server
}

// NewRESTServer creates a new REST API server
func NewRESTServer(cfg *config.Config, store storage.Store, mediaStore *media.Store) *RESTServer {
	engine := scheduling.NewEngine(store, log.Logger)
	s := &RESTServer{
		config:     cfg,
		store:      store,
		auth:       auth.NewJWTManager(&cfg.JWT),
		authn:      auth.NewAuthenticator(store),
		validator:  validation.NewValidator(),
		engine:     engine,
		billing:    billing.NewService(store, log.Logger),
		complaints: complaints.NewLedger(store, log.Logger),
		player:     player.NewChannel(store, engine, log.Logger),
		media:      mediaStore,
		router:     chi.NewRouter(),
	}

	s.setupRoutes()

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all routes
func (s *RESTServer) setupRoutes() {
	// Middleware
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		s.setupAPIRoutes(r)
	})

	// Uploaded ad videos
	s.router.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.media.Dir()))))
}

// ListenAndServe starts the server
func (s *RESTServer) ListenAndServe(addr string) error {
	s.server.Addr = addr
	log.Info().Str("addr", addr).Msg("Starting REST API server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *RESTServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// authMiddleware resolves the session from the token cookie or a
// Bearer header. Browser clients use the cookie, API clients the
// header.
func (s *RESTServer) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if cookie, err := r.Cookie("token"); err == nil {
			token = cookie.Value
		}
		if token == "" {
			authHeader := r.Header.Get("Authorization")
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				token = parts[1]
			}
		}
		if token == "" {
			s.respondError(w, http.StatusUnauthorized, "missing credentials")
			return
		}

		claims, err := s.auth.ValidateToken(token)
		if err != nil {
			s.respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole guards a route subtree to the given roles
func (s *RESTServer) requireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := s.claims(r)
			if claims == nil {
				s.respondError(w, http.StatusUnauthorized, "missing credentials")
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			s.respondError(w, http.StatusForbidden, "insufficient role")
		})
	}
}

// claims returns the session claims attached by authMiddleware
func (s *RESTServer) claims(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsKey).(*auth.Claims)
	return claims
}

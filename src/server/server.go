package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"journalapi/src/auth"
	"journalapi/src/handler"
	"journalapi/src/model"
	"journalapi/src/repository"
)

// APITokenHeader is the header carrying the caller's opaque token.
const APITokenHeader = "X-Api-Token"

type userResolver interface {
	FindByAPIToken(ctx context.Context, token string) (*model.User, error)
}

// TokenAuth resolves the request's API token into a user and stores it in
// the request context. Requests without a valid token get a 401.
func TokenAuth(users userResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(APITokenHeader)
			if token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := users.FindByAPIToken(r.Context(), token)
			if err != nil {
				logger.WithError(err).Error("token lookup failed")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			if user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), auth.UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewRouter builds the API router. Wiring lives here so tests can mount
// the same routes over mock repositories.
func NewRouter(users userResolver) *chi.Mux {
	r := chi.NewRouter()

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("healthcheck write error")
		}
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(TokenAuth(users))

		api.Get("/trades", handler.DefaultSearchTradesHandler())
		api.Post("/trades", handler.DefaultCreateTradeHandler())
		api.Delete("/trades/last", handler.DefaultDeleteLastTradeHandler())

		api.Post("/checkins", handler.DefaultUpsertCheckInHandler())
		api.Get("/risk", handler.DefaultPreTradeRiskHandler())

		api.Post("/analysis/run", handler.DefaultRunAnalysisHandler())
		api.Get("/patterns", handler.DefaultListPatternsHandler())

		api.Post("/behaviors/scan", handler.DefaultBehaviorScanHandler())
		api.Get("/behaviors", handler.DefaultListBehaviorsHandler())

		api.Put("/users/me", handler.DefaultUpdateUserHandler())
		api.Put("/users/me/password", handler.DefaultChangePasswordHandler())
	})

	return r
}

func StartServer(port string) {
	r := NewRouter(repository.NewUserRepository())

	// Graceful server
	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}

package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"locality/internal/auth"
	"locality/internal/domain/analytics"
	"locality/internal/domain/storage"
	"locality/internal/mailer"
	"locality/internal/ratelimiter"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/speps/go-hashids/v2"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         *storage.Container
	analytics     *analytics.Service
	logger        *zap.SugaredLogger
	mailer        mailer.Client
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
	publicCodes   *hashids.HashID
}

type config struct {
	addr        string
	db          dbConfig
	env         string
	apiURL      string
	mail        mailConfig
	frontendURL string
	auth        authConfig
	rateLimiter ratelimiter.Config
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	refreshSecret   string
	secret          string
	accessTokenExp  time.Duration
	refreshTokenExp time.Duration
	iss             string
}

type basicConfig struct {
	user string
	pass string
}

type mailConfig struct {
	fromEmail string
	mailtrap  mailTrapConfig
}

type mailTrapConfig struct {
	apiKey string
}

type dbConfig struct {
	addr        string
	maxConns    int32
	maxIdleTime string
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Session-ID"},
		ExposedHeaders:   []string{"Link", "X-Visit-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Abort request processing when the handler chain exceeds this budget.
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		// Public routes
		r.Route("/authentication", func(r chi.Router) {
			r.Post("/user", app.registerUserHandler)
			r.Post("/token", app.createTokenHandler)
			r.Post("/refresh", app.refreshTokenHandler)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Put("/", app.updateUserHandler)
			r.Delete("/", app.deactivateUserHandler)
			r.Post("/logout", app.logoutHandler)
		})

		r.Route("/stores", func(r chi.Router) {
			r.With(app.MaybeAuthTokenMiddleware).Get("/", app.listStoresHandler)

			r.With(app.AuthTokenMiddleware).Post("/", app.createStoreHandler)
			r.With(app.AuthTokenMiddleware).Get("/mine", app.listMyStoresHandler)

			r.Route("/{storeID}", func(r chi.Router) {
				// Read goes through the gate: verified+active stores are
				// public, everything else needs owner/admin/role access.
				r.With(app.MaybeAuthTokenMiddleware).Get("/", app.getStoreHandler)

				r.Group(func(r chi.Router) {
					r.Use(app.AuthTokenMiddleware)
					r.Patch("/", app.updateStoreHandler)
					r.Delete("/", app.deleteStoreHandler)

					r.Get("/analytics", app.getStoreAnalyticsHandler)
					r.Get("/analytics/daily", app.getDailyAnalyticsHandler)
					r.Post("/analytics/daily", app.generateDailyAnalyticsHandler)
				})
			})
		})

		// Session-scoped, no auth: the visit id is the capability.
		r.Route("/visits/{visitID}", func(r chi.Router) {
			r.Post("/end", app.endVisitHandler)
			r.Post("/sections/{section}", app.recordInteractionHandler)
		})

		r.With(app.RateLimiterMiddleware).Post("/registration-requests", app.createRegistrationRequestHandler)

		r.Route("/admin", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)

			r.Put("/stores/{storeID}/verify", app.verifyStoreHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.RequireAdmin)

				r.Get("/registration-requests", app.adminListRegistrationRequestsHandler)
				r.Post("/registration-requests/{id}/approve", app.adminApproveRegistrationRequestHandler)
				r.Post("/registration-requests/{id}/reject", app.adminRejectRegistrationRequestHandler)

				r.Get("/roles", app.adminListRolesHandler)
				r.Put("/roles/{roleID}/permissions", app.adminUpdateRolePermissionsHandler)

				r.Route("/users/{userID}/roles", func(r chi.Router) {
					r.Get("/", app.adminGetUserRolesHandler)
					r.Post("/", app.adminAssignUserRoleHandler)
					r.Delete("/{roleID}", app.adminRemoveUserRoleHandler)
				})
			})
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	// Implementing graceful shutdown
	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}

// healthCheckHandler godoc
//
//	@Summary		Health check
//	@Description	Reports service health and environment
//	@Tags			ops
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{
		"status":  "ok",
		"env":     app.config.env,
		"version": version,
	}
	if err := app.jsonResponse(w, http.StatusOK, data); err != nil {
		app.internalServerError(w, r, err)
	}
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/siza083/produtive/internal/auth"
	"github.com/siza083/produtive/internal/dashboard"
	"github.com/siza083/produtive/internal/profile"
	"github.com/siza083/produtive/internal/subtask"
	"github.com/siza083/produtive/internal/task"
	"github.com/siza083/produtive/internal/team"
)

type application struct {
	config       config
	db           *pgxpool.Pool
	services     *services
	tokenService auth.TokenService
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{app.config.frontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	authHandler := auth.NewHandler(app.services.users, app.tokenService, app.config.refreshTTL, app.config.isProd)
	profileHandler := profile.NewHandler(app.services.profiles)
	teamHandler := team.NewHandler(app.services.teams)
	taskHandler := task.NewHandler(app.services.tasks)
	subtaskHandler := subtask.NewHandler(app.services.subtasks)
	dashboardHandler := dashboard.NewHandler(app.services.dashboard, app.config.dashboardInterval)

	// the event stream is long-lived and stays outside the request timeout
	r.With(auth.AuthMiddleware(app.tokenService)).Get("/dashboard/stream", dashboardHandler.Stream)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			if err := app.db.Ping(r.Context()); err != nil {
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
			w.Write([]byte("all good"))
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware(app.tokenService))

			r.Get("/me", profileHandler.Get)
			r.Patch("/me", profileHandler.Update)

			r.Route("/teams", teamHandler.Routes)
			r.Post("/invitations/accept", teamHandler.AcceptInvite)
			r.Route("/tasks", taskHandler.Routes)
			r.Route("/subtasks", subtaskHandler.Routes)
			r.Route("/dashboard", dashboardHandler.Routes)
		})
	})

	return r
}

// run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then lets
// in-flight requests finish before closing.
func (app *application) run(ctx context.Context, h http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      h,
		WriteTimeout: 30 * time.Second,
		ReadTimeout:  10 * time.Second,
		IdleTimeout:  time.Minute,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "addr", app.config.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down server...")
	case sig := <-quit:
		slog.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		return err
	}

	slog.Info("server exited gracefully")
	return nil
}

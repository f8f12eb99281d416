package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/siza083/produtive/internal/auth"
	"github.com/siza083/produtive/internal/calendar"
	"github.com/siza083/produtive/internal/dashboard"
	"github.com/siza083/produtive/internal/env"
	"github.com/siza083/produtive/internal/logging"
	"github.com/siza083/produtive/internal/profile"
	"github.com/siza083/produtive/internal/seed"
	"github.com/siza083/produtive/internal/subtask"
	"github.com/siza083/produtive/internal/task"
	"github.com/siza083/produtive/internal/team"
	"github.com/siza083/produtive/internal/user"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "produtive",
	Short: "Team task management backend",
	Long:  `Produtive serves the team, task and dashboard API and provides maintenance commands.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		env.Init()

		logger, closer := logging.New(os.Stdout, logging.Config{
			Level: env.GetString("LOG_LEVEL", "info"),
			File:  env.GetString("LOG_FILE", ""),
		})
		logCloser = closer
		slog.SetDefault(logger)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
	SilenceUsage: true,
}

var logCloser io.Closer

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := loadConfig()

		svc, cleanup, err := wire(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		rdb := redis.NewClient(&redis.Options{Addr: cfg.redisAddr})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			slog.Warn("redis not reachable, refresh tokens will fail until it is", "addr", cfg.redisAddr, "error", err)
		}

		tokenSvc := auth.NewTokenService(
			cfg.jwtSecret,
			cfg.accessTTL,
			cfg.refreshTTL,
			auth.NewRedisRefreshStore(rdb),
		)

		app := application{
			config:       cfg,
			db:           svc.pool,
			services:     svc,
			tokenService: tokenSvc,
		}

		return app.run(ctx, app.mount())
	},
}

var seedEmail string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the sample team, tasks and subtasks for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := loadConfig()

		svc, cleanup, err := wire(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		u, err := svc.users.FindByEmail(ctx, seedEmail)
		if err != nil {
			return fmt.Errorf("find user %q: %w", seedEmail, err)
		}

		seeder := &seed.Seeder{
			Teams:       svc.teams,
			Tasks:       svc.tasks,
			Subtasks:    svc.subtasks,
			Timezones:   svc.profiles,
			DefaultZone: cfg.defaultZone,
		}

		t, err := seeder.Run(ctx, u.ID)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created team %q (%s) for %s\n", t.Name, t.ID, u.Email)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedEmail, "email", "", "email of the user who owns the sample data")
	seedCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(serveCmd, seedCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

type dbConfig struct {
	dsn string
}

type config struct {
	addr              string
	db                dbConfig
	redisAddr         string
	jwtSecret         string
	accessTTL         time.Duration
	refreshTTL        time.Duration
	frontendURL       string
	appURL            string
	defaultZone       string
	dashboardInterval time.Duration
	isProd            bool
}

func loadConfig() config {
	return config{
		addr: env.GetString("API_PORT", ":8000"),
		db: dbConfig{
			dsn: env.GetString("GOOSE_DBSTRING", "host=localhost port=5433 user=postgres password=postgres dbname=produtive sslmode=disable"),
		},
		redisAddr:         env.GetString("REDIS_ADDR", "localhost:6379"),
		jwtSecret:         env.GetString("JWT_SECRET", "dev-secret"),
		accessTTL:         env.GetDuration("ACCESS_TTL", 15*time.Minute),
		refreshTTL:        env.GetDuration("REFRESH_TTL", 7*24*time.Hour),
		frontendURL:       env.GetString("FRONTEND_URL", "http://localhost:3000"),
		appURL:            env.GetString("APP_URL", "http://localhost:3000"),
		defaultZone:       env.GetString("DEFAULT_TIMEZONE", calendar.DefaultZone),
		dashboardInterval: env.GetDuration("DASHBOARD_REFRESH_INTERVAL", dashboard.DefaultRefreshInterval),
		isProd:            env.Current() == env.EnvProduction,
	}
}

type services struct {
	pool      *pgxpool.Pool
	users     user.UserService
	profiles  profile.Service
	teams     team.Service
	tasks     task.Service
	subtasks  subtask.Service
	dashboard dashboard.Service
}

// wire connects to Postgres and builds every domain service on top of it.
func wire(ctx context.Context, cfg config) (*services, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.db.dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	slog.Info("database pool connected")

	userSvc := user.NewService(user.NewRepository(pool))
	profileSvc := profile.NewService(profile.NewRepository(pool))

	teamSvc := team.NewService(team.NewRepository(pool), userSvc, team.Options{
		AppURL: cfg.appURL,
		Mailer: team.LogMailer{Logger: slog.Default().With("component", "mailer")},
	})

	taskSvc := task.NewService(task.NewRepository(pool), teamSvc)

	subtaskRepo := subtask.NewRepository(pool)
	subtaskSvc := subtask.NewService(subtaskRepo, taskSvc, teamSvc, profileSvc, subtask.Options{
		DefaultZone: cfg.defaultZone,
	})

	dashboardSvc := dashboard.NewService(dashboard.NewSource(pool, subtaskRepo), dashboard.Options{
		DefaultZone: cfg.defaultZone,
	})

	return &services{
		pool:      pool,
		users:     userSvc,
		profiles:  profileSvc,
		teams:     teamSvc,
		tasks:     taskSvc,
		subtasks:  subtaskSvc,
		dashboard: dashboardSvc,
	}, pool.Close, nil
}

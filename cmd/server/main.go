package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/go-quotes/auth"
	"github.com/diewo77/go-quotes/internal/config"
	"github.com/diewo77/go-quotes/internal/db"
	"github.com/diewo77/go-quotes/internal/models"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "quotes",
	Short: "Quote and invoice server",
	Long: `Serves the quotes and invoices JSON API, the public download links
and the background mail queue.

Configuration is read from the environment (and a .env file if present).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load environment variables from .env file
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		auth.SetSecret(cfg.Server.SessionSecret)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Run DB migrations and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				conn, err := db.Open(cfg.Database)
				if err != nil {
					return err
				}
				if err := migrate(conn); err != nil {
					return err
				}
				log.Println("Migrations completed successfully")
				return nil
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Seed permissions, profiles and the bootstrap admin, then exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				conn, err := db.Open(cfg.Database)
				if err != nil {
					return err
				}
				if err := db.Seed(conn, cfg.Seed); err != nil {
					return fmt.Errorf("seeding failed: %w", err)
				}
				log.Println("Seeding completed successfully")
				return nil
			},
		},
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func migrate(conn *gorm.DB) error {
	if cfg.Database.Driver == "postgres" && cfg.App.SQLMigrations {
		return db.MigrateSQL(cfg.Database.URL())
	}
	return db.Migrate(conn)
}

func serve(ctx context.Context) error {
	conn, err := db.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run migrations on startup if enabled
	if cfg.App.Migrations {
		if err := migrate(conn); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.Println("Migrations completed")
	}

	// Seed default data (profiles, permissions)
	if err := db.Seed(conn, cfg.Seed); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	// Configure auth verifier to check if user exists in DB
	auth.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		var count int64
		conn.WithContext(ctx).Model(&models.User{}).Where("id = ?", uid).Count(&count)
		return count > 0
	})

	routerCfg := NewRouterConfig(conn, cfg)
	routerCfg.Queue.Start(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      withLogging(NewApp(conn, routerCfg)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on port %s (dev=%v)", cfg.Server.Port, cfg.App.Dev)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		log.Println("Shutdown signal received")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	if err := routerCfg.Queue.Stop(shutdownCtx); err != nil {
		log.Printf("[queue] stop: %v", err)
	}
	log.Println("Server stopped gracefully")
	return nil
}

// withLogging adds request logging middleware.
func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

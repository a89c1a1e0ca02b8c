package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Frsoul7/simple-task-manager/config"
	"github.com/Frsoul7/simple-task-manager/modules/activity"
	"github.com/Frsoul7/simple-task-manager/modules/api"
	"github.com/Frsoul7/simple-task-manager/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var (
	configPath string
	port       int
	exitCode   int
)

var rootCmd = &cobra.Command{
	Use:           "simple-task-manager",
	Short:         "Simple Task Manager - REST API for personal tasks",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = port
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
		exitCode, err = run(cfg)
		return err
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	rootCmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (overrides PORT and the config file)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
	os.Exit(exitCode)
}

// run starts the application and blocks until shutdown, returning the
// process exit code.
func run(cfg *config.Config) (int, error) {
	log.Println("=== Simple Task Manager ===")

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		return 1, fmt.Errorf("failed to create application: %w", err)
	}

	// Order: independent modules first, then modules with dependencies
	app.Register(activity.NewModule(app.Logger()))                      // Event consumer (records task events)
	app.Register(task.NewModule(cfg.Database, cfg.Cache, app.Logger())) // Core domain (emits events)
	app.Register(api.NewModule(cfg, app.Logger()))                      // Driving adapter (depends on task, activity)

	if err := app.Start(context.Background()); err != nil {
		return 1, fmt.Errorf("failed to start application: %w", err)
	}

	printStartupInfo(cfg)

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	code := <-wait
	log.Printf("Application exited with code: %d", code)
	return code, nil
}

func printStartupInfo(cfg *config.Config) {
	driver, _ := config.DatabaseDriver(cfg.Database.URL)

	log.Println("")
	log.Println("Application started successfully!")
	log.Printf("  Environment: %s", cfg.Server.Env)
	log.Printf("  Store:       %s", driver)
	log.Printf("  Cache:       %t", cfg.Cache.Enabled())
	log.Println("")
	log.Printf("REST API Endpoints (http://localhost:%d):", cfg.Server.Port)
	log.Println("  GET    /api/tasks              - List tasks (?search=, ?sort=createdAt|name|dueDate)")
	log.Println("  POST   /api/tasks              - Create a task")
	log.Println("  GET    /api/tasks/:id          - Get a task by ID")
	log.Println("  PUT    /api/tasks/:id          - Update a task")
	log.Println("  DELETE /api/tasks/:id          - Delete a task")
	log.Println("  GET    /api/activity           - Recent task activity")
	log.Println("  GET    /health                 - Health check")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}

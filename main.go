package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	apimod "github.com/ProyectoSpoon/SPOON-sub000/modules/api"
	catalogmod "github.com/ProyectoSpoon/SPOON-sub000/modules/catalog"
	combinationmod "github.com/ProyectoSpoon/SPOON-sub000/modules/combination"
	eventbusmod "github.com/ProyectoSpoon/SPOON-sub000/modules/eventbus"
	syncqueuemod "github.com/ProyectoSpoon/SPOON-sub000/modules/syncqueue"
	workingsetmod "github.com/ProyectoSpoon/SPOON-sub000/modules/workingset"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load configuration from environment
	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	dbPath := getEnv("DB_PATH", "./menu.db")
	httpPort := getEnvInt("HTTP_PORT", 3000)
	workingSetTTL := getEnvDuration("WORKING_SET_TTL", 30*time.Minute)
	workingSetKey := getEnv("WORKING_SET_KEY", "menu:workingset")
	syncWorkers := getEnvInt("SYNC_WORKERS", 2)
	defaultUser := getEnv("DEFAULT_USER_ID", "editor")

	log.Println("=== Daily Menu Editor ===")
	log.Printf("Redis: %s", redisAddr)
	log.Printf("Database: %s", dbPath)
	log.Printf("HTTP Port: %d", httpPort)
	log.Printf("Working set TTL: %s", workingSetTTL)
	log.Printf("Working set key: %s", workingSetKey)
	log.Printf("Persistence workers: %d", syncWorkers)

	// Create modules
	eventBusModule := eventbusmod.NewModule()
	catalogModule := catalogmod.NewModule(dbPath)
	workingSetModule := workingsetmod.NewModule(redisAddr, workingSetKey, workingSetTTL)
	queueConfig := syncqueuemod.DefaultConfig()
	queueConfig.Workers = syncWorkers
	syncQueueModule := syncqueuemod.NewModule(queueConfig)
	combinationModule := combinationmod.NewModule(defaultUser)
	apiModule := apimod.NewModule(httpPort, defaultUser)

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
	)
	if err != nil {
		log.Fatalf("Failed to create mono application: %v", err)
	}

	// Register modules
	app.Register(eventBusModule)
	app.Register(catalogModule)
	app.Register(workingSetModule)
	app.Register(syncQueueModule)
	app.Register(combinationModule)
	app.Register(apiModule)

	// Start modules (this handles Init and Start)
	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start app: %v", err)
	}

	// Wire up dependencies after start
	bus := eventBusModule.GetEventBus()
	workingSetModule.GetCache().SetEventBus(bus)
	syncQueueModule.SetEventBus(bus)

	combinationModule.SetRepository(catalogModule.GetRepository())
	combinationModule.SetQueue(syncQueueModule.GetQueue())

	apiModule.SetCatalogModule(catalogModule)
	apiModule.SetWorkingSetModule(workingSetModule)
	apiModule.SetCombinationModule(combinationModule)
	if err := apiModule.Serve(); err != nil {
		log.Fatalf("Failed to start API: %v", err)
	}

	log.Println("=== Application Started ===")
	log.Printf("API available at http://localhost:%d", httpPort)
	log.Println("Endpoints:")
	log.Println("  GET    /health                                   - Health check")
	log.Println("  GET    /api/v1/catalog/categories                - List menu categories")
	log.Println("  GET    /api/v1/catalog/products                  - List active products")
	log.Println("  GET    /api/v1/workingset                        - Load working set")
	log.Println("  PATCH  /api/v1/workingset                        - Merge working set fields")
	log.Println("  DELETE /api/v1/workingset                        - Reset working set")
	log.Println("  GET    /api/v1/workingset/ttl                    - Remaining working set TTL")
	log.Println("  POST   /api/v1/menu/generate                     - Generate combinations")
	log.Println("  GET    /api/v1/menu/combinations                 - List combinations")
	log.Println("  POST   /api/v1/menu/combinations/:id/favorite    - Toggle favorite")
	log.Println("  POST   /api/v1/menu/combinations/:id/special     - Toggle special")
	log.Println("  PUT    /api/v1/menu/combinations/:id/quantity    - Update quantity")
	log.Println("  POST   /api/v1/menu/combinations/:id/schedule    - Add schedule entry")
	log.Println("  PUT    /api/v1/menu/combinations/:id/schedule/:index    - Edit schedule entry")
	log.Println("  DELETE /api/v1/menu/combinations/:id/schedule/:index    - Remove schedule entry")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown")

	// Setup graceful shutdown using gelmium/graceful-shutdown
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

	// Wait for shutdown signal and exit with appropriate code
	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}

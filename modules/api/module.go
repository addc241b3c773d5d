// Package api provides the HTTP surface of the menu editor.
package api

import (
	"context"
	"fmt"
	"log"

	"github.com/ProyectoSpoon/SPOON-sub000/modules/catalog"
	combinationmod "github.com/ProyectoSpoon/SPOON-sub000/modules/combination"
	"github.com/ProyectoSpoon/SPOON-sub000/modules/favorites"
	workingsetmod "github.com/ProyectoSpoon/SPOON-sub000/modules/workingset"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Module provides the HTTP API for the menu editor.
type Module struct {
	app      *fiber.App
	handlers *Handlers
	port     int

	catalogModule     *catalog.Module
	workingsetModule  *workingsetmod.Module
	combinationModule *combinationmod.Module
	defaultUser       string
}

// NewModule creates a new API module.
func NewModule(port int, defaultUser string) *Module {
	return &Module{
		port:        port,
		defaultUser: defaultUser,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "api"
}

// SetCatalogModule sets the catalog module dependency.
func (m *Module) SetCatalogModule(cm *catalog.Module) {
	m.catalogModule = cm
}

// SetWorkingSetModule sets the working-set module dependency.
func (m *Module) SetWorkingSetModule(wm *workingsetmod.Module) {
	m.workingsetModule = wm
}

// SetCombinationModule sets the combination module dependency.
func (m *Module) SetCombinationModule(cm *combinationmod.Module) {
	m.combinationModule = cm
}

// Init initializes the Fiber app and configures middleware.
func (m *Module) Init(_ mono.ServiceContainer) error {
	m.app = fiber.New(fiber.Config{
		AppName:               "Daily Menu Editor",
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	m.app.Use(cors.New())

	return nil
}

// Serve builds the handlers from the wired modules, registers the
// routes, and starts the HTTP listener. Called after the application
// has started and dependencies are wired.
func (m *Module) Serve() error {
	if m.catalogModule == nil || m.workingsetModule == nil || m.combinationModule == nil {
		return fmt.Errorf("api module dependencies not set")
	}

	repo := m.catalogModule.GetRepository()
	store, err := m.combinationModule.GetStore()
	if err != nil {
		return err
	}

	m.handlers = NewHandlers(
		repo,
		m.workingsetModule.GetCache(),
		store,
		favorites.New(repo),
		m.defaultUser,
	)
	m.setupRoutes()

	go func() {
		addr := fmt.Sprintf(":%d", m.port)
		log.Printf("[api] Starting HTTP server on %s", addr)
		if err := m.app.Listen(addr); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	return nil
}

// Start starts the module. The listener itself starts in Serve once
// dependencies are wired.
func (m *Module) Start(_ context.Context) error {
	log.Println("[api] Module started")
	return nil
}

// setupRoutes configures all HTTP routes.
func (m *Module) setupRoutes() {
	m.app.Get("/health", m.handlers.HealthCheck)

	api := m.app.Group("/api/v1")

	catalogGroup := api.Group("/catalog")
	catalogGroup.Get("/categories", m.handlers.ListCategories)
	catalogGroup.Get("/products", m.handlers.ListProducts)

	ws := api.Group("/workingset")
	ws.Get("/", m.handlers.GetWorkingSet)
	ws.Patch("/", m.handlers.UpdateWorkingSet)
	ws.Delete("/", m.handlers.ResetWorkingSet)
	ws.Get("/ttl", m.handlers.GetWorkingSetTTL)

	menuGroup := api.Group("/menu")
	menuGroup.Post("/generate", m.handlers.Generate)
	menuGroup.Get("/combinations", m.handlers.ListCombinations)
	menuGroup.Post("/combinations/:id/favorite", m.handlers.ToggleFavorite)
	menuGroup.Post("/combinations/:id/special", m.handlers.ToggleSpecial)
	menuGroup.Put("/combinations/:id/quantity", m.handlers.UpdateQuantity)
	menuGroup.Post("/combinations/:id/schedule", m.handlers.AddSchedule)
	menuGroup.Put("/combinations/:id/schedule/:index", m.handlers.EditSchedule)
	menuGroup.Delete("/combinations/:id/schedule/:index", m.handlers.RemoveSchedule)
}

// Stop stops the HTTP server gracefully.
func (m *Module) Stop(_ context.Context) error {
	if m.app != nil {
		log.Println("[api] Shutting down HTTP server...")
		return m.app.Shutdown()
	}
	return nil
}

// errorHandler handles errors from Fiber routes.
func (m *Module) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":  message,
		"code":   code,
		"path":   c.Path(),
		"method": c.Method(),
	})
}

// GetApp returns the Fiber app (for testing).
func (m *Module) GetApp() *fiber.App {
	return m.app
}

package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/huertacl/catalog-service/internal/api/http/handlers"
	"github.com/huertacl/catalog-service/internal/auth"
	"github.com/huertacl/catalog-service/internal/domain"
	"github.com/huertacl/catalog-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Users   *handlers.UsersHandler
	Catalog *handlers.CatalogHandler
	Gate    *auth.Gate
	Metrics *observability.Metrics
}

// RegisterRoutes wires HTTP routes. The gate runs on every API request and never rejects;
// the per-route role checks do.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api/v1", cfg.Gate.Handle)
	adminOnly := auth.RequireRole(domain.RoleAdmin)
	adminOrSelf := auth.RequireRoleOrSelf("id", domain.RoleAdmin)

	users := api.Group("/usuarios")
	users.Post("/register", cfg.Users.Register)
	users.Post("/login", cfg.Users.Login)
	users.Get("/me", auth.RequireAuthenticated(), cfg.Users.Me)
	users.Get("/", adminOnly, cfg.Users.List)
	users.Get("/:id", adminOrSelf, cfg.Users.Get)
	users.Put("/:id", adminOrSelf, cfg.Users.Update)
	users.Delete("/:id", adminOnly, cfg.Users.Delete)

	categories := api.Group("/categorias")
	categories.Get("/", cfg.Catalog.ListCategories)
	categories.Get("/:id", cfg.Catalog.GetCategory)
	categories.Post("/", adminOnly, cfg.Catalog.CreateCategory)
	categories.Put("/:id", adminOnly, cfg.Catalog.UpdateCategory)
	categories.Delete("/:id", adminOnly, cfg.Catalog.DeleteCategory)

	products := api.Group("/productos")
	products.Get("/", cfg.Catalog.ListProducts)
	products.Get("/:id", cfg.Catalog.GetProduct)
	products.Post("/", adminOnly, cfg.Catalog.CreateProduct)
	products.Put("/:id", adminOnly, cfg.Catalog.UpdateProduct)
	products.Delete("/:id", adminOnly, cfg.Catalog.DeleteProduct)
}

package routes

import (
	"time"

	"collect-api/internal/handlers"
	"collect-api/internal/middleware"
	"collect-api/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"
)

func SetupRoutes(app *fiber.App, svcs *services.Container) {
	// API routes group
	api := app.Group("/api")
	v1 := api.Group("/v1")

	// Monitor route
	app.Get("/metrics", monitor.New())

	// Health check route
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"service":   "collect-api",
			"timestamp": time.Now().UTC(),
		})
	})

	auth := middleware.RequireAuth()

	// Form template routes
	templateHandler := handlers.NewTemplateHandler(svcs.Templates)

	templates := v1.Group("/templates", auth)
	templates.Get("/", templateHandler.ListTemplates)
	templates.Post("/", templateHandler.CreateTemplate)
	templates.Get("/:id", templateHandler.GetTemplate)
	templates.Put("/:id", templateHandler.UpdateTemplate)
	templates.Delete("/:id", templateHandler.DeleteTemplate)
	templates.Post("/:id/fields", templateHandler.AddField)
	templates.Put("/fields/:fieldId", templateHandler.UpdateField)
	templates.Delete("/fields/:fieldId", templateHandler.DeleteField)

	// Upload link routes; validation is public so clients can check a
	// link before opening a session
	linkHandler := handlers.NewLinkHandler(svcs.Links)

	links := v1.Group("/links")
	links.Get("/stats", auth, linkHandler.GetLinkStats)
	links.Get("/:id/validate", linkHandler.ValidateLink)
	links.Get("/", auth, linkHandler.ListLinks)
	links.Post("/", auth, linkHandler.CreateLink)
	links.Get("/:id", auth, linkHandler.GetLink)
	links.Put("/:id", auth, linkHandler.UpdateLink)
	links.Delete("/:id", auth, linkHandler.DeleteLink)

	// Upload session routes; creation, data updates and submission are
	// the public client-facing surface
	sessionHandler := handlers.NewSessionHandler(svcs.Sessions)

	sessions := v1.Group("/sessions")
	sessions.Post("/", sessionHandler.CreateSession)
	sessions.Post("/:id/submit", sessionHandler.SubmitSession)
	sessions.Put("/:id/data", sessionHandler.UpdateSessionData)
	sessions.Post("/:id/fail", sessionHandler.FailSession)
	sessions.Get("/", auth, sessionHandler.ListSessions)
	sessions.Get("/link/:linkId", auth, sessionHandler.ListSessionsForLink)
	sessions.Get("/:id", auth, sessionHandler.GetSession)
	sessions.Delete("/:id", auth, sessionHandler.DeleteSession)

	// Collected file routes
	fileHandler := handlers.NewFileHandler(svcs.Sessions)

	files := v1.Group("/files", auth)
	files.Get("/:id/download", fileHandler.DownloadFile)
}

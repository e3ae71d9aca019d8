package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/citizen-feedback-service/internal/api/http/handlers"
	"github.com/spec-kit/citizen-feedback-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	AdminUsers     *handlers.AdminUsersHandler
	Feedbacks      *handlers.FeedbacksHandler
	Comments       *handlers.CommentsHandler
	Responses      *handlers.ResponsesHandler
	WS             *handlers.WSHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP and websocket routes. Read endpoints for
// the public board carry optional auth so viewer-relative fields can be
// filled in when a token is present.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Users.ChangePassword)

	users := app.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireAuth())
	users.Get("/me", cfg.Users.Me)
	users.Patch("/me", cfg.Users.UpdateProfile)

	adminUsers := app.Group("/admin/users", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	adminUsers.Get("/", cfg.AdminUsers.List)
	adminUsers.Get("/:id", cfg.AdminUsers.Get)
	adminUsers.Patch("/:id", cfg.AdminUsers.Update)

	feedbacks := app.Group("/feedbacks")
	feedbacks.Get("/", cfg.AuthMiddleware.HandleOptional, cfg.Feedbacks.List)
	feedbacks.Get("/ticket/:code", cfg.AuthMiddleware.HandleOptional, cfg.Feedbacks.GetByTicketCode)
	feedbacks.Get("/:id", cfg.AuthMiddleware.HandleOptional, cfg.Feedbacks.Get)
	feedbacks.Get("/:id/history", cfg.AuthMiddleware.HandleOptional, cfg.Feedbacks.History)
	feedbacks.Get("/:id/comments", cfg.AuthMiddleware.HandleOptional, cfg.Comments.List)
	feedbacks.Get("/:id/responses", cfg.AuthMiddleware.HandleOptional, cfg.Responses.List)

	feedbacks.Post("/", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Feedbacks.Create)
	feedbacks.Patch("/:id", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Feedbacks.Update)
	feedbacks.Delete("/:id", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Feedbacks.Delete)
	feedbacks.Patch("/:id/status", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Feedbacks.UpdateStatus)
	feedbacks.Patch("/:id/assign", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Feedbacks.Assign)

	feedbacks.Post("/:id/like", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Feedbacks.Like)
	feedbacks.Delete("/:id/like", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Feedbacks.Unlike)
	feedbacks.Post("/:id/follow", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Feedbacks.Follow)
	feedbacks.Delete("/:id/follow", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Feedbacks.Unfollow)

	feedbacks.Post("/:id/comments", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Comments.Create)
	feedbacks.Post("/:id/responses", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Responses.Create)

	comments := app.Group("/comments", cfg.AuthMiddleware.Handle, auth.RequireAuth())
	comments.Patch("/:id", cfg.Comments.Edit)
	comments.Delete("/:id", cfg.Comments.Delete)
	comments.Post("/:id/like", cfg.Comments.Like)
	comments.Delete("/:id/like", cfg.Comments.Unlike)

	responses := app.Group("/responses", cfg.AuthMiddleware.Handle, auth.RequireAuth())
	responses.Patch("/:id", cfg.Responses.Update)
	responses.Delete("/:id", cfg.Responses.Delete)
	responses.Post("/:id/like", cfg.Responses.Like)
	responses.Delete("/:id/like", cfg.Responses.Unlike)

	ws := app.Group("/ws", cfg.WS.Upgrade)
	ws.Get("/feedbacks/:id", cfg.WS.FeedbackStream())
	ws.Get("/users/:id", cfg.WS.UserStream())
	ws.Get("/chat/:id", cfg.WS.Chat())
}

// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"github.com/td-lach-buckanen/commute-catchment/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	CatchmentHandler *handler.CatchmentHandler
	SessionHandler   *handler.SessionHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	catchmentHandler *handler.CatchmentHandler
	sessionHandler   *handler.SessionHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		catchmentHandler: params.CatchmentHandler,
		sessionHandler:   params.SessionHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	api := e.Group("/api")
	{
		catchmentGroup := api.Group("/catchment")
		{
			catchmentGroup.POST("/match", r.catchmentHandler.Match)
			catchmentGroup.GET("/share", r.catchmentHandler.Share)
		}

		sessionGroup := api.Group("/sessions")
		{
			sessionGroup.POST("", r.sessionHandler.Create)
			sessionGroup.PUT("/:id/query", r.sessionHandler.UpdateQuery)
			sessionGroup.GET("/:id/result", r.sessionHandler.GetResult)
			sessionGroup.DELETE("/:id", r.sessionHandler.Delete)
		}
	}
}

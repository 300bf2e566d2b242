package http

import "github.com/labstack/echo/v4"

type Routes struct {
	Health *Handler
	Drafts *DraftHandler
	Review *ReviewHandler

	// Auth resolves the caller; Idempotency guards replayable writes.
	Auth        echo.MiddlewareFunc
	Idempotency echo.MiddlewareFunc
}

func (r Routes) Register(e *echo.Echo) {
	e.GET("/health", r.Health.Health)

	drafts := e.Group("/changes/drafts", r.Auth)
	drafts.GET("", r.Drafts.List)
	drafts.POST("", r.Drafts.Add)
	drafts.POST("/submit", r.Drafts.Submit, r.Idempotency)
	drafts.PATCH("/:id", r.Drafts.Update)
	drafts.DELETE("/:id", r.Drafts.Delete)

	admin := e.Group("/admin/changes", r.Auth)
	admin.GET("", r.Review.ListAll)
	admin.GET("/pending", r.Review.ListPending)
	admin.POST("/review", r.Review.Review, r.Idempotency)
	admin.POST("/approve", r.Review.Approve, r.Idempotency)
	admin.POST("/reject", r.Review.Reject, r.Idempotency)

	e.GET("/admin/audit", r.Review.ListAudit, r.Auth)
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-backoffice/internal/middleware"
	"github.com/noah-isme/course-backoffice/internal/service"
)

// Handlers groups every handler mounted by RegisterRoutes.
type Handlers struct {
	Payments    *PaymentsHandler
	Enrollments *EnrollmentHandler
	Catalog     *CatalogHandler
	Packages    *PackageHandler
	Students    *StudentHandler
	Console     *ConsoleHandler
	Metrics     *MetricsHandler
}

// RegisterRoutes mounts health endpoints at the root and the API under prefix.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, auth *service.AuthService, cookieName string) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)
	api.Use(middleware.JWT(auth, cookieName))

	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin(auth))
	{
		admin.DELETE("/console", h.Console.End)

		admin.GET("/payments", h.Payments.List)
		admin.POST("/payments/sort", h.Payments.Sort)
		admin.GET("/payments/pages/:page", h.Payments.Page)
		admin.GET("/payments/export", h.Payments.Export)
		admin.PUT("/payments/:id/status", h.Payments.SetStatus)
		admin.GET("/payments/:id/reviews", h.Payments.Reviews)

		admin.GET("/enrollment-form", h.Enrollments.Form)
		admin.PUT("/enrollment-form", h.Enrollments.Patch)
		admin.POST("/enrollment-form/submit", h.Enrollments.Submit)
		admin.DELETE("/enrollment-form", h.Enrollments.Reset)

		admin.GET("/students/search", h.Catalog.Students)
		admin.GET("/courses", h.Catalog.Courses)

		admin.GET("/packages", h.Packages.List)
		admin.POST("/packages", h.Packages.Create)
		admin.POST("/packages/quote", h.Packages.Quote)
		admin.GET("/packages/:id/form", h.Packages.Form)
		admin.PUT("/packages/:id", h.Packages.Update)
		admin.DELETE("/packages/:id", h.Packages.Delete)
	}

	api.GET("/catalog/items/:id", h.Students.Item)
	api.GET("/checkout/:id", h.Students.Checkout)
	api.POST("/checkout/:id/claim", h.Students.Claim)
	api.GET("/me/enrollments", h.Students.Enrollments)
}

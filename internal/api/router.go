package api

import (
	"go-fmri-pipeline/internal/api/handler"
	"go-fmri-pipeline/pkg/router"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "go-fmri-pipeline/docs" // swagger doc registration
)

func RegisterRoutes(r *router.Router) {
	r.POST("/api/v1/jobs", handler.CreateJob)
	r.GET("/api/v1/jobs", handler.ListJobs)
	// More specific routes first
	r.GET("/api/v1/jobs/*/errors", handler.GetJobErrors)
	r.GET("/api/v1/jobs/*/files", handler.GetJobFiles)
	r.GET("/api/v1/jobs/*/logs", handler.GetJobLogs)
	r.PATCH("/api/v1/jobs/*/cancel", handler.CancelJob)
	r.POST("/api/v1/jobs/*/retry", handler.RetryJob)
	r.GET("/api/v1/download/*", handler.DownloadFile)
	// Generic job routes last
	r.GET("/api/v1/jobs/*", handler.GetJob)
	r.DELETE("/api/v1/jobs/*", handler.DeleteJob)

	r.GET("/swagger/*", httpSwagger.WrapHandler.ServeHTTP)
}

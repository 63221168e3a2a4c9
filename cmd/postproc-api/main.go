package main

import (
	"go-fmri-pipeline/internal/api"
	"go-fmri-pipeline/internal/store"
	"go-fmri-pipeline/pkg/router"
)

func main() {
	// Init DB
	if err := store.InitDB("postproc.db"); err != nil {
		panic(err)
	}

	// Create router
	r := router.New()

	// Register API routes
	api.RegisterRoutes(r)

	// Start server
	r.Start(":8080")
}

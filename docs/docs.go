// Package docs registers the swagger specification for the job API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/jobs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "List all jobs",
                "responses": {
                    "200": {"description": "List of jobs"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Create a new job",
                "responses": {
                    "200": {"description": "Job created successfully"},
                    "400": {"description": "Invalid request payload"}
                }
            }
        },
        "/jobs/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Get job",
                "responses": {
                    "200": {"description": "Job details"},
                    "404": {"description": "Job not found"}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Delete job",
                "responses": {
                    "200": {"description": "Job deleted"},
                    "404": {"description": "Job not found"}
                }
            }
        },
        "/jobs/{id}/errors": {
            "get": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Get job errors",
                "responses": {
                    "200": {"description": "Job errors"}
                }
            }
        },
        "/jobs/{id}/files": {
            "get": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Get job files",
                "responses": {
                    "200": {"description": "Job files"}
                }
            }
        },
        "/jobs/{id}/logs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Get job logs",
                "responses": {
                    "200": {"description": "Job logs"}
                }
            }
        },
        "/jobs/{id}/cancel": {
            "patch": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Cancel job",
                "responses": {
                    "200": {"description": "Job cancelled"},
                    "404": {"description": "Job not found"}
                }
            }
        },
        "/jobs/{id}/retry": {
            "post": {
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Retry job",
                "responses": {
                    "200": {"description": "Retry initiated"},
                    "404": {"description": "Job not found"}
                }
            }
        },
        "/download/{jobID}/{filename}": {
            "get": {
                "produces": ["application/octet-stream"],
                "tags": ["files"],
                "summary": "Download file",
                "responses": {
                    "200": {"description": "File download"},
                    "404": {"description": "File not found"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "fMRI Post-Processing Pipeline API",
	Description:      "REST API for running post-processing pipelines over fMRIprep outputs.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

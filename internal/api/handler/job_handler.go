package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"go-fmri-pipeline/internal/fsl"
	"go-fmri-pipeline/internal/model"
	"go-fmri-pipeline/internal/pipeline"
	"go-fmri-pipeline/internal/store"
	"go-fmri-pipeline/pkg/utils"

	"github.com/google/uuid"
)

// Outputs manages download paths for job artifacts.
var Outputs = utils.NewOutputManager("outputs")

// running tracks cancel functions for in-flight jobs so cancellation can be
// cooperative (finish current subject, skip remaining).
var (
	runningMu sync.Mutex
	running   = make(map[string]context.CancelFunc)
)

func registerRunning(jobID string, cancel context.CancelFunc) {
	runningMu.Lock()
	running[jobID] = cancel
	runningMu.Unlock()
}

func unregisterRunning(jobID string) {
	runningMu.Lock()
	delete(running, jobID)
	runningMu.Unlock()
}

func cancelRunning(jobID string) bool {
	runningMu.Lock()
	defer runningMu.Unlock()
	cancel, ok := running[jobID]
	if ok {
		cancel()
	}
	return ok
}

// newDriver wires the FSL-backed collaborators for one job.
func newDriver(job model.JobSpec) *pipeline.Driver {
	runner := fsl.ExecRunner{}
	tools := &fsl.Tools{Runner: runner, WorkDir: job.WorkDir}
	return pipeline.NewDriver(pipeline.Stages{
		Smoother:   tools,
		Filter:     tools,
		Normalizer: tools,
		Probe:      &fsl.Probe{Runner: runner},
		Exists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
	}, store.Recorder{})
}

func startJob(jobID string, job model.JobSpec) {
	ctx, cancel := context.WithCancel(context.Background())
	registerRunning(jobID, cancel)

	go func() {
		defer cancel()
		defer unregisterRunning(jobID)
		if err := newDriver(job).Run(ctx, jobID, job); err != nil {
			store.SaveJobError(jobID, "", "", err)
		}
	}()
}

// CreateJob creates a new post-processing job
// @Summary Create a new job
// @Description Create and start a post-processing job for the given subjects and pipeline
// @Tags jobs
// @Accept json
// @Produce json
// @Param job body model.JobSpec true "Job configuration"
// @Success 200 {object} map[string]interface{} "Job created successfully"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs [post]
func CreateJob(w http.ResponseWriter, r *http.Request) {
	var job model.JobSpec
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	if job.FMRIPrepDir == "" {
		http.Error(w, "fmriprepDir is required", http.StatusBadRequest)
		return
	}
	if len(job.Subjects) == 0 {
		http.Error(w, "At least one subject is required", http.StatusBadRequest)
		return
	}

	jobID := uuid.New().String()

	if err := store.SaveJob(jobID, job); err != nil {
		http.Error(w, "Failed to save job", http.StatusInternalServerError)
		return
	}

	startJob(jobID, job)

	resp := map[string]interface{}{
		"message":   "Job created successfully!",
		"jobID":     jobID,
		"status":    "pending",
		"createdAt": time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ListJobs retrieves all jobs
// @Summary List all jobs
// @Description Get a list of all post-processing jobs with their current status
// @Tags jobs
// @Produce json
// @Success 200 {array} map[string]interface{} "List of jobs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs [get]
func ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := store.ListJobs()
	if err != nil {
		http.Error(w, "Failed to fetch jobs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jobs)
}

// jobIDFromPath extracts the job ID between a prefix and an optional suffix.
func jobIDFromPath(w http.ResponseWriter, r *http.Request, suffix string) (string, bool) {
	path := r.URL.Path
	prefix := "/api/v1/jobs/"

	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return "", false
	}
	jobID := path[len(prefix) : len(path)-len(suffix)]
	if jobID == "" {
		http.Error(w, "Job ID is required", http.StatusBadRequest)
		return "", false
	}
	return jobID, true
}

// GetJob retrieves a specific job
// @Summary Get job
// @Description Retrieve details of a specific post-processing job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{} "Job details"
// @Failure 404 {object} map[string]interface{} "Job not found"
// @Router /jobs/{id} [get]
func GetJob(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(w, r, "")
	if !ok {
		return
	}

	job, err := store.GetJob(jobID)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}

// GetJobErrors retrieves errors for a job
// @Summary Get job errors
// @Description Retrieve all (subject, file) attributed errors recorded during a job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{} "Job errors"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs/{id}/errors [get]
func GetJobErrors(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(w, r, "/errors")
	if !ok {
		return
	}

	errors, err := store.GetJobErrors(jobID)
	if err != nil {
		http.Error(w, "Failed to retrieve errors", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"job_id": jobID,
		"errors": errors,
		"count":  len(errors),
	})
}

// GetJobFiles retrieves all output files for a job
// @Summary Get job files
// @Description Retrieve all output files exported by a job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{} "Job files"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs/{id}/files [get]
func GetJobFiles(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(w, r, "/files")
	if !ok {
		return
	}

	files, err := store.GetOutputFiles(jobID)
	if err != nil {
		http.Error(w, "Failed to retrieve files", http.StatusInternalServerError)
		return
	}

	for _, file := range files {
		if filePath, ok := file["file_path"].(string); ok {
			file["type"] = Outputs.GetFileType(filePath)
			if size, err := Outputs.GetFileSize(filePath); err == nil {
				file["size"] = size
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"job_id": jobID,
		"files":  files,
		"count":  len(files),
	})
}

// GetJobLogs retrieves pipeline logs for a job
// @Summary Get job logs
// @Description Retrieve structured pipeline logs recorded during a job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Param limit query int false "Maximum number of entries"
// @Success 200 {object} map[string]interface{} "Job logs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs/{id}/logs [get]
func GetJobLogs(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(w, r, "/logs")
	if !ok {
		return
	}

	limit := 100 // default
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			limit = parsedLimit
		}
	}

	logs, err := store.GetPipelineLogs(jobID, limit)
	if err != nil {
		http.Error(w, "Failed to retrieve logs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"job_id": jobID,
		"logs":   logs,
		"count":  len(logs),
		"limit":  limit,
	})
}

// DownloadFile serves an output file for download
// @Summary Download file
// @Description Download a specific output file from a job
// @Tags files
// @Produce application/octet-stream
// @Param jobID path string true "Job ID"
// @Param filename path string true "File name"
// @Success 200 {file} file "File download"
// @Failure 404 {object} map[string]interface{} "File not found"
// @Router /download/{jobID}/{filename} [get]
func DownloadFile(w http.ResponseWriter, r *http.Request) {
	// URL format: /api/v1/download/jobID/filename
	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(pathParts) < 5 {
		http.Error(w, "Invalid URL format", http.StatusBadRequest)
		return
	}
	jobID := pathParts[3]
	fileName := pathParts[4]

	// The recorded file path is authoritative; the download directory only
	// holds files the job exported.
	files, err := store.GetOutputFiles(jobID)
	if err != nil {
		http.Error(w, "Failed to retrieve files", http.StatusInternalServerError)
		return
	}
	var filePath string
	for _, file := range files {
		if p, ok := file["file_path"].(string); ok && strings.HasSuffix(p, "/"+fileName) {
			filePath = p
			break
		}
	}
	if filePath == "" {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", fileName))
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeFile(w, r, filePath)
}

// CancelJob cancels a running job
// @Summary Cancel job
// @Description Cancel a running job; the current subject finishes and remaining subjects are skipped
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{} "Job cancelled"
// @Failure 400 {object} map[string]interface{} "Invalid job status"
// @Failure 404 {object} map[string]interface{} "Job not found"
// @Router /jobs/{id}/cancel [patch]
func CancelJob(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(w, r, "/cancel")
	if !ok {
		return
	}

	status, err := store.GetJobStatus(jobID)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}
	if status == "completed" || status == "failed" || status == "cancelled" {
		http.Error(w, fmt.Sprintf("Job is already %s and cannot be cancelled", status), http.StatusBadRequest)
		return
	}

	if !cancelRunning(jobID) {
		// Not in flight in this process; mark it cancelled directly.
		store.UpdateJobStatus(jobID, "cancelled")
	}
	store.SavePipelineLog(jobID, "job", "info", "Job cancelled by user", map[string]interface{}{
		"cancelled_at":    time.Now(),
		"previous_status": status,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Job cancellation requested",
		"job_id":  jobID,
		"status":  "cancelling",
	})
}

// RetryJob re-runs a job with its stored configuration
// @Summary Retry job
// @Description Re-run a job with the same configuration
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{} "Retry initiated"
// @Failure 404 {object} map[string]interface{} "Job not found"
// @Router /jobs/{id}/retry [post]
func RetryJob(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(w, r, "/retry")
	if !ok {
		return
	}

	spec, err := store.GetJobSpec(jobID)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	startJob(jobID, spec)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Retry initiated",
		"job_id":  jobID,
		"status":  "retrying",
	})
}

// DeleteJob deletes a job and its artifacts
// @Summary Delete job
// @Description Delete a job and all its associated files and records
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{} "Job deleted"
// @Failure 404 {object} map[string]interface{} "Job not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs/{id} [delete]
func DeleteJob(w http.ResponseWriter, r *http.Request) {
	jobID, ok := jobIDFromPath(w, r, "")
	if !ok {
		return
	}

	if _, err := store.GetJob(jobID); err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	files, err := store.GetOutputFiles(jobID)
	if err != nil {
		store.SavePipelineLog(jobID, "job", "warning", "Failed to get files for deletion", map[string]interface{}{
			"error": err.Error(),
		})
	}
	for _, file := range files {
		if filePath, ok := file["file_path"].(string); ok {
			if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
				store.SavePipelineLog(jobID, "job", "warning", "Failed to delete file", map[string]interface{}{
					"file_path": filePath,
					"error":     err.Error(),
				})
			}
		}
	}

	if err := store.DeleteJob(jobID); err != nil {
		http.Error(w, "Failed to delete job from database", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":       "Job and all artifacts deleted successfully",
		"job_id":        jobID,
		"files_deleted": len(files),
	})
}

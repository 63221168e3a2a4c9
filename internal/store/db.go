package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"go-fmri-pipeline/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

var db *sql.DB

// Initialize DB connection
func InitDB(dbPath string) error {
	var err error
	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}

	// Create tables if not exists
	jobTable := `
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		spec TEXT,
		status TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);
	`
	errorTable := `
	CREATE TABLE IF NOT EXISTS job_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT,
		subject TEXT,
		file TEXT,
		error_message TEXT,
		created_at DATETIME
	);
	`
	logTable := `
	CREATE TABLE IF NOT EXISTS pipeline_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT,
		stage TEXT,
		level TEXT,
		message TEXT,
		details TEXT,
		created_at DATETIME
	);
	`
	fileTable := `
	CREATE TABLE IF NOT EXISTS output_files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		job_id TEXT,
		subject TEXT,
		file_path TEXT,
		created_at DATETIME
	);
	`

	for _, table := range []string{jobTable, errorTable, logTable, fileTable} {
		if _, err := db.Exec(table); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the DB connection.
func Close() error {
	if db == nil {
		return nil
	}
	return db.Close()
}

// SaveJob stores a new post-processing job
func SaveJob(jobID string, spec model.JobSpec) error {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = db.Exec(`INSERT INTO jobs (id, spec, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		jobID, specJSON, "pending", now, now)
	return err
}

// SaveJobError records an error attributed to a (subject, file) pair
func SaveJobError(jobID, subject, file string, err error) error {
	if err == nil {
		return nil
	}
	now := time.Now().UTC()
	_, e := db.Exec(`INSERT INTO job_errors (job_id, subject, file, error_message, created_at) VALUES (?, ?, ?, ?, ?)`,
		jobID, subject, file, err.Error(), now)
	return e
}

// GetJobErrors returns all recorded errors for a job
func GetJobErrors(jobID string) ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT subject, file, error_message, created_at FROM job_errors WHERE job_id = ? ORDER BY created_at`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var errors []map[string]interface{}
	for rows.Next() {
		var subject, file, message string
		var createdAt time.Time
		if err := rows.Scan(&subject, &file, &message, &createdAt); err != nil {
			return nil, err
		}
		errors = append(errors, map[string]interface{}{
			"subject":   subject,
			"file":      file,
			"error":     message,
			"createdAt": createdAt,
		})
	}
	return errors, rows.Err()
}

// SavePipelineLog records a structured log entry for a job stage
func SavePipelineLog(jobID, stage, level, message string, details map[string]interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}
	now := time.Now().UTC()
	_, e := db.Exec(`INSERT INTO pipeline_logs (job_id, stage, level, message, details, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		jobID, stage, level, message, detailsJSON, now)
	return e
}

// GetPipelineLogs returns up to limit log entries for a job
func GetPipelineLogs(jobID string, limit int) ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT stage, level, message, details, created_at FROM pipeline_logs WHERE job_id = ? ORDER BY created_at LIMIT ?`, jobID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []map[string]interface{}
	for rows.Next() {
		var stage, level, message, detailsJSON string
		var createdAt time.Time
		if err := rows.Scan(&stage, &level, &message, &detailsJSON, &createdAt); err != nil {
			return nil, err
		}
		var details map[string]interface{}
		json.Unmarshal([]byte(detailsJSON), &details)
		logs = append(logs, map[string]interface{}{
			"stage":     stage,
			"level":     level,
			"message":   message,
			"details":   details,
			"createdAt": createdAt,
		})
	}
	return logs, rows.Err()
}

// SaveOutputFile records one exported output file
func SaveOutputFile(jobID, subject, filePath string) error {
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO output_files (job_id, subject, file_path, created_at) VALUES (?, ?, ?, ?)`,
		jobID, subject, filePath, now)
	return err
}

// GetOutputFiles returns all output files recorded for a job
func GetOutputFiles(jobID string) ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT id, subject, file_path, created_at FROM output_files WHERE job_id = ? ORDER BY file_path`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []map[string]interface{}
	for rows.Next() {
		var id int
		var subject, filePath string
		var createdAt time.Time
		if err := rows.Scan(&id, &subject, &filePath, &createdAt); err != nil {
			return nil, err
		}
		files = append(files, map[string]interface{}{
			"id":        id,
			"subject":   subject,
			"file_path": filePath,
			"createdAt": createdAt,
		})
	}
	return files, rows.Err()
}

// ListJobs returns all jobs with basic info
func ListJobs() ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT id, status, created_at, updated_at FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []map[string]interface{}
	for rows.Next() {
		var id, status string
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&id, &status, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, map[string]interface{}{
			"id":        id,
			"status":    status,
			"createdAt": createdAt,
			"updatedAt": updatedAt,
		})
	}
	return jobs, rows.Err()
}

// GetJob fetches full job spec and status
func GetJob(jobID string) (map[string]interface{}, error) {
	var specJSON string
	var status string
	var createdAt, updatedAt time.Time

	err := db.QueryRow(`SELECT spec, status, created_at, updated_at FROM jobs WHERE id = ?`, jobID).
		Scan(&specJSON, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	var spec model.JobSpec
	if err := json.Unmarshal([]byte(specJSON), &spec); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"id":        jobID,
		"spec":      spec,
		"status":    status,
		"createdAt": createdAt,
		"updatedAt": updatedAt,
	}, nil
}

// GetJobSpec fetches only the stored job spec
func GetJobSpec(jobID string) (model.JobSpec, error) {
	var spec model.JobSpec
	var specJSON string
	err := db.QueryRow(`SELECT spec FROM jobs WHERE id = ?`, jobID).Scan(&specJSON)
	if err != nil {
		return spec, err
	}
	err = json.Unmarshal([]byte(specJSON), &spec)
	return spec, err
}

// UpdateJobStatus updates job status
func UpdateJobStatus(jobID string, status string) error {
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?`, status, now, jobID)
	return err
}

// GetJobStatus returns the current status of a job
func GetJobStatus(jobID string) (string, error) {
	var status string
	err := db.QueryRow(`SELECT status FROM jobs WHERE id = ?`, jobID).Scan(&status)
	return status, err
}

// DeleteJob removes a job and its related records
func DeleteJob(jobID string) error {
	for _, stmt := range []string{
		`DELETE FROM job_errors WHERE job_id = ?`,
		`DELETE FROM pipeline_logs WHERE job_id = ?`,
		`DELETE FROM output_files WHERE job_id = ?`,
		`DELETE FROM jobs WHERE id = ?`,
	} {
		if _, err := db.Exec(stmt, jobID); err != nil {
			return err
		}
	}
	return nil
}

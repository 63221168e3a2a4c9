package pipeline

import "log"

// Recorder receives job lifecycle events. The API server backs it with the
// sqlite store; the CLI can run with the log-only recorder.
type Recorder interface {
	Status(jobID, status string)
	Log(jobID, stage, level, message string, details map[string]interface{})
	FileError(jobID, subject, file string, err error)
	OutputFile(jobID, subject, path string)
}

// LogRecorder writes events to the process log only.
type LogRecorder struct{}

func (LogRecorder) Status(jobID, status string) {
	log.Printf("job %s: %s", jobID, status)
}

func (LogRecorder) Log(jobID, stage, level, message string, details map[string]interface{}) {
	log.Printf("job %s [%s/%s]: %s %v", jobID, stage, level, message, details)
}

func (LogRecorder) FileError(jobID, subject, file string, err error) {
	log.Printf("❌ job %s: %s %s: %v", jobID, subject, file, err)
}

func (LogRecorder) OutputFile(jobID, subject, path string) {
	log.Printf("💾 job %s: %s -> %s", jobID, subject, path)
}

package store

import "log"

// Recorder adapts the store to the pipeline driver's event sink. Store
// failures while recording are logged and otherwise ignored so bookkeeping
// never takes down a running batch.
type Recorder struct{}

func (Recorder) Status(jobID, status string) {
	if err := UpdateJobStatus(jobID, status); err != nil {
		log.Printf("store: update status for %s: %v", jobID, err)
	}
}

func (Recorder) Log(jobID, stage, level, message string, details map[string]interface{}) {
	if err := SavePipelineLog(jobID, stage, level, message, details); err != nil {
		log.Printf("store: save log for %s: %v", jobID, err)
	}
}

func (Recorder) FileError(jobID, subject, file string, err error) {
	if serr := SaveJobError(jobID, subject, file, err); serr != nil {
		log.Printf("store: save error for %s: %v", jobID, serr)
	}
}

func (Recorder) OutputFile(jobID, subject, path string) {
	if err := SaveOutputFile(jobID, subject, path); err != nil {
		log.Printf("store: save output file for %s: %v", jobID, err)
	}
}

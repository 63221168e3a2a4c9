package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputManager handles output file organization and path management
type OutputManager struct {
	BaseOutputDir string
}

// NewOutputManager creates a new output manager
func NewOutputManager(baseOutputDir string) *OutputManager {
	return &OutputManager{
		BaseOutputDir: baseOutputDir,
	}
}

// JobOutputDir returns (and creates) the directory for a job's outputs
func (om *OutputManager) JobOutputDir(jobID string) (string, error) {
	jobDir := filepath.Join(om.BaseOutputDir, jobID)
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create job output directory: %w", err)
	}
	return jobDir, nil
}

// GetDownloadURL generates a download URL for a file
func (om *OutputManager) GetDownloadURL(jobID, fileName string) string {
	return fmt.Sprintf("/api/v1/download/%s/%s", jobID, filepath.Base(fileName))
}

// GetFileType determines the file type based on extension
func (om *OutputManager) GetFileType(fileName string) string {
	name := strings.ToLower(filepath.Base(fileName))
	switch {
	case strings.HasSuffix(name, ".nii.gz"), strings.HasSuffix(name, ".nii"):
		return "nifti"
	case strings.HasSuffix(name, ".json"):
		return "json"
	case strings.HasSuffix(name, ".tsv"):
		return "tsv"
	case strings.HasSuffix(name, ".txt"):
		return "text"
	default:
		return "unknown"
	}
}

// GetFileSize returns the size of a file in bytes
func (om *OutputManager) GetFileSize(filePath string) (int64, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return 0, err
	}
	return fileInfo.Size(), nil
}

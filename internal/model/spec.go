package model

// Step kinds understood by the post-processing pipeline. The order of steps
// in a job spec is significant and is preserved exactly as given.
const (
	StepSpatialSmoothing        = "spatial_smoothing"
	StepTemporalFiltering       = "temporal_filtering"
	StepHighpassFiltering       = "highpass_filtering"
	StepTimecourseNormalization = "timecourse_normalization"
)

// Per-file error policies for the batch driver.
const (
	OnErrorSkipFile     = "skip-file"
	OnErrorAbortSubject = "abort-subject"
)

// PipelineStep is one entry of the ordered pipeline. Kind selects the step;
// the other fields are step-specific parameters:
//
//	spatial_smoothing:         fwhm (Gaussian kernel FWHM in millimeters)
//	temporal_filtering:        highpass, lowpass (cutoffs in seconds; either
//	                           may be omitted, meaning no filter in that band)
//	highpass_filtering:        cutoff (in seconds)
//	timecourse_normalization:  method ("Zscore" or "PSC")
type PipelineStep struct {
	Kind     string   `json:"step" yaml:"step"`
	FWHM     float64  `json:"fwhm,omitempty" yaml:"fwhm,omitempty"`
	Highpass *float64 `json:"highpass,omitempty" yaml:"highpass,omitempty"`
	Lowpass  *float64 `json:"lowpass,omitempty" yaml:"lowpass,omitempty"`
	Cutoff   float64  `json:"cutoff,omitempty" yaml:"cutoff,omitempty"`
	Method   string   `json:"method,omitempty" yaml:"method,omitempty"`
}

// ConcurrencyConfig defines worker and job options for a batch run
type ConcurrencyConfig struct {
	SubjectWorkers int    `json:"subjectWorkers" yaml:"subjectWorkers"`
	JobTimeout     string `json:"jobTimeout" yaml:"jobTimeout"` // e.g., "30m"
	OnError        string `json:"onError" yaml:"onError"`       // "skip-file" or "abort-subject"
}

// JobSpec defines the entire post-processing job configuration
type JobSpec struct {
	FMRIPrepDir string            `json:"fmriprepDir" yaml:"fmriprepDir"` // root of the fMRIprep output
	Subjects    []Subject         `json:"subjects" yaml:"subjects"`
	Pipeline    []PipelineStep    `json:"pipeline" yaml:"pipeline"` // ordered!
	WorkDir     string            `json:"workDir,omitempty" yaml:"workDir,omitempty"`
	OutputDir   string            `json:"outputDir,omitempty" yaml:"outputDir,omitempty"`
	Concurrency ConcurrencyConfig `json:"concurrency" yaml:"concurrency"`
	Logging     bool              `json:"logging" yaml:"logging"` // enable detailed logs
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go-fmri-pipeline/internal/bids"
	"go-fmri-pipeline/internal/model"
	"go-fmri-pipeline/pkg/utils"
)

// Driver runs a post-processing batch: one independent unit of work per
// subject, processed by a small worker pool. Cancellation is cooperative at
// subject granularity: a cancelled context stops new subjects from starting
// while in-flight subjects finish.
type Driver struct {
	Stages   Stages
	Exporter Exporter
	Recorder Recorder
}

// NewDriver wires a driver with the default file exporter and the given
// collaborators. A nil recorder falls back to the log-only recorder.
func NewDriver(st Stages, rec Recorder) *Driver {
	if rec == nil {
		rec = LogRecorder{}
	}
	return &Driver{Stages: st, Exporter: FileExporter{}, Recorder: rec}
}

// Run executes the batch described by job. Per-file errors are recorded and,
// under the skip-file policy, do not fail the batch; subject-level failures
// do.
func (d *Driver) Run(ctx context.Context, jobID string, job model.JobSpec) (err error) {
	start := time.Now()
	fmt.Printf("🚀 Starting post-processing for job: %s\n", jobID)
	d.Recorder.Status(jobID, "running")

	defer func() {
		if err != nil {
			d.Recorder.Status(jobID, "failed")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, utils.ParseDuration(job.Concurrency.JobTimeout))
	defer cancel()

	plan := Assemble(job.Pipeline, d.Stages)
	d.Recorder.Log(jobID, "assemble", "info", "Pipeline assembled", map[string]interface{}{
		"steps":  len(job.Pipeline),
		"suffix": plan.Suffix,
	})

	workers := job.Concurrency.SubjectWorkers
	if workers == 0 {
		workers = 2 // default
	}

	subjectCh := make(chan model.Subject)
	errCh := make(chan error, len(job.Subjects))

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for subject := range subjectCh {
				if serr := d.processSubject(ctx, jobID, job, plan, subject); serr != nil {
					d.Recorder.Log(jobID, "subject", "error", "Subject failed", map[string]interface{}{
						"subject": subject.Label(),
						"error":   serr.Error(),
					})
					errCh <- serr
				}
			}
		}()
	}

	// Feed subjects; stop feeding when the context is cancelled so running
	// subjects finish and the rest are skipped.
	skipped := 0
	for _, subject := range job.Subjects {
		if ctx.Err() != nil {
			skipped++
			continue
		}
		select {
		case <-ctx.Done():
			skipped++
		case subjectCh <- subject:
		}
	}
	close(subjectCh)
	wg.Wait()
	close(errCh)

	var errs []error
	for serr := range errCh {
		errs = append(errs, serr)
	}

	duration := time.Since(start)
	switch {
	case skipped > 0:
		fmt.Printf("🛑 Job %s cancelled after %v (%d subjects skipped)\n", jobID, duration, skipped)
		d.Recorder.Status(jobID, "cancelled")
		return nil
	case len(errs) > 0:
		return fmt.Errorf("job %s: %d of %d subjects failed: %w", jobID, len(errs), len(job.Subjects), errors.Join(errs...))
	}

	fmt.Printf("🏁 Job %s completed in %v\n", jobID, duration)
	d.Recorder.Status(jobID, "completed")
	return nil
}

func (d *Driver) processSubject(ctx context.Context, jobID string, job model.JobSpec, plan *Plan, subject model.Subject) error {
	label := subject.Label()
	template := bids.BoldFileTemplate(job.FMRIPrepDir, label)
	files, err := bids.Discover(template)
	if err != nil {
		return fmt.Errorf("subject %s: %w", label, err)
	}
	d.Recorder.Log(jobID, "discovery", "info", "Located bold files", map[string]interface{}{
		"subject": label,
		"count":   len(files),
	})
	if len(files) == 0 {
		fmt.Printf("⚠️ No bold files found for %s\n", label)
		return nil
	}

	if plan.NeedsMetadata {
		files, err = d.checkMetadata(ctx, jobID, job, label, files)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return nil
		}
	}

	processed, err := plan.Run(ctx, files)
	if err != nil {
		return fmt.Errorf("subject %s: %w", label, err)
	}

	for i, orig := range files {
		dst, derr := bids.OutputPath(orig, plan.Suffix)
		if derr != nil {
			if ferr := d.fileError(jobID, job, label, orig, derr); ferr != nil {
				return ferr
			}
			continue
		}
		if job.OutputDir != "" {
			dst = filepath.Join(job.OutputDir, label, filepath.Base(dst))
		}
		if eerr := d.Exporter.Export(ctx, processed[i], dst); eerr != nil {
			if ferr := d.fileError(jobID, job, label, orig, eerr); ferr != nil {
				return ferr
			}
			continue
		}
		d.Recorder.OutputFile(jobID, label, dst)
	}
	return nil
}

// checkMetadata probes the temporal resolution of every input up front so
// the per-file error policy can be applied before any transform runs. Under
// skip-file, unreadable files are dropped from the subject's list; under
// abort-subject, the first failure fails the subject.
func (d *Driver) checkMetadata(ctx context.Context, jobID string, job model.JobSpec, label string, files []string) ([]string, error) {
	kept := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := d.Stages.Probe.RepetitionTime(ctx, f); err != nil {
			werr := fmt.Errorf("%w: %s: %v", ErrMetadataUnavailable, f, err)
			if ferr := d.fileError(jobID, job, label, f, werr); ferr != nil {
				return nil, ferr
			}
			fmt.Printf("⚠️ Skipping %s: %v\n", f, err)
			continue
		}
		kept = append(kept, f)
	}
	return kept, nil
}

// fileError records an error attributed to one (subject, file) pair and
// converts it into a subject failure under the abort-subject policy.
func (d *Driver) fileError(jobID string, job model.JobSpec, label, file string, err error) error {
	d.Recorder.FileError(jobID, label, file, err)
	if job.Concurrency.OnError == model.OnErrorAbortSubject {
		return fmt.Errorf("subject %s: %s: %w", label, file, err)
	}
	return nil
}

package pipeline

import (
	"context"
	"fmt"
	"log"

	"go-fmri-pipeline/internal/bids"
	"go-fmri-pipeline/internal/model"
)

// Smoother applies spatial smoothing over a file list. masks[i] is the
// brain mask for files[i].
type Smoother interface {
	Smooth(ctx context.Context, files, masks []string, fwhm float64) ([]string, error)
}

// TemporalFilter applies a temporal filter over a file list. ops[i] is the
// per-file filter-parameter string (see FilterOp).
type TemporalFilter interface {
	Filter(ctx context.Context, files, ops []string) ([]string, error)
}

// Normalizer applies timecourse normalization over a file list.
type Normalizer interface {
	Normalize(ctx context.Context, files, masks []string, method string) ([]string, error)
}

// Stages bundles the external transform collaborators a plan is built
// against.
type Stages struct {
	Smoother   Smoother
	Filter     TemporalFilter
	Normalizer Normalizer
	Probe      MetadataProbe
	Exists     bids.ExistsFunc
}

// A stage receives the current file list plus the original input list (for
// mask derivation) and returns the next file list.
type stageFunc func(ctx context.Context, files, originals []string) ([]string, error)

// Plan is the assembled pipeline for one job: the chain of stages and the
// accumulated transform-history suffix. Built fresh per job spec, executed
// once per subject, then discarded.
type Plan struct {
	Suffix string
	// NeedsMetadata is set when any stage probes per-file temporal
	// resolution, so the driver can apply its OnError policy up front.
	NeedsMetadata bool

	stages []stageFunc
}

// Assemble walks the ordered step list and chains one stage per step, each
// stage's input wired to the previous stage's output. Unknown step kinds are
// skipped with a warning and contribute nothing to the suffix.
func Assemble(steps []model.PipelineStep, st Stages) *Plan {
	p := &Plan{}
	for _, step := range steps {
		token, ok := StepToken(step)
		if !ok {
			log.Printf("⚠️ Skipping unknown pipeline step: %q", step.Kind)
			continue
		}
		switch step.Kind {
		case model.StepSpatialSmoothing:
			fwhm := step.FWHM
			p.stages = append(p.stages, func(ctx context.Context, files, originals []string) ([]string, error) {
				masks := bids.ResolveMasks(originals, st.Exists)
				return st.Smoother.Smooth(ctx, files, masks, fwhm)
			})
		case model.StepTemporalFiltering, model.StepHighpassFiltering:
			highpass, lowpass := step.Highpass, step.Lowpass
			if step.Kind == model.StepHighpassFiltering {
				cutoff := step.Cutoff
				highpass, lowpass = &cutoff, nil
			}
			p.NeedsMetadata = true
			p.stages = append(p.stages, func(ctx context.Context, files, originals []string) ([]string, error) {
				ops := make([]string, len(files))
				for i, f := range files {
					op, err := FilterOp(ctx, st.Probe, f, highpass, lowpass)
					if err != nil {
						return nil, err
					}
					ops[i] = op
				}
				return st.Filter.Filter(ctx, files, ops)
			})
		case model.StepTimecourseNormalization:
			method := step.Method
			p.stages = append(p.stages, func(ctx context.Context, files, originals []string) ([]string, error) {
				masks := bids.ResolveMasks(originals, st.Exists)
				return st.Normalizer.Normalize(ctx, files, masks, method)
			})
		}
		p.Suffix += token
	}
	return p
}

// Run threads a file list through the plan's stages in order and returns the
// final list, positionally aligned with the input. Masks are always derived
// from the original input list, never from intermediate outputs. An empty
// plan is an identity pass-through.
func (p *Plan) Run(ctx context.Context, files []string) ([]string, error) {
	out := files
	for i, stage := range p.stages {
		next, err := stage(ctx, out, files)
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i, err)
		}
		if len(next) != len(out) {
			return nil, fmt.Errorf("stage %d: returned %d files for %d inputs", i, len(next), len(out))
		}
		out = next
	}
	return out, nil
}

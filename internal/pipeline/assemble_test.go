package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-fmri-pipeline/internal/model"
)

// fake stage collaborators tag each output filename so chaining order is
// observable in the final list.

type fakeSmoother struct {
	masks []string
	err   error
}

func (s *fakeSmoother) Smooth(_ context.Context, files, masks []string, fwhm float64) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.masks = masks
	return tagAll(files, "+smooth"), nil
}

type fakeFilter struct {
	ops []string
}

func (f *fakeFilter) Filter(_ context.Context, files, ops []string) ([]string, error) {
	f.ops = ops
	return tagAll(files, "+filter"), nil
}

type fakeNormalizer struct {
	masks  []string
	method string
}

func (n *fakeNormalizer) Normalize(_ context.Context, files, masks []string, method string) ([]string, error) {
	n.masks = masks
	n.method = method
	return tagAll(files, "+norm"), nil
}

func tagAll(files []string, tag string) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f + tag
	}
	return out
}

func testStages(sm *fakeSmoother, fl *fakeFilter, no *fakeNormalizer, probe MetadataProbe) Stages {
	return Stages{
		Smoother:   sm,
		Filter:     fl,
		Normalizer: no,
		Probe:      probe,
		Exists:     func(string) bool { return true },
	}
}

func TestAssembleEmptyPlan(t *testing.T) {
	plan := Assemble(nil, Stages{})
	assert.Equal(t, "", plan.Suffix)
	assert.False(t, plan.NeedsMetadata)

	files := []string{"a.nii.gz", "b.nii.gz"}
	out, err := plan.Run(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, files, out, "empty plan is an identity pass-through")
}

func TestAssembleChainsStagesInOrder(t *testing.T) {
	sm, fl, no := &fakeSmoother{}, &fakeFilter{}, &fakeNormalizer{}
	steps := []model.PipelineStep{
		{Kind: model.StepSpatialSmoothing, FWHM: 5},
		{Kind: model.StepHighpassFiltering, Cutoff: 100},
		{Kind: model.StepTimecourseNormalization, Method: "Zscore"},
	}
	plan := Assemble(steps, testStages(sm, fl, no, fakeProbe{tr: 2.0}))

	assert.Equal(t, "5mm100sZscore", plan.Suffix)
	assert.True(t, plan.NeedsMetadata)

	out, err := plan.Run(context.Background(), []string{"/d/sub-01_desc-preproc_bold.nii.gz"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/d/sub-01_desc-preproc_bold.nii.gz+smooth+filter+norm"}, out)

	assert.Equal(t, []string{"-bptf 25.0000000000 -1"}, fl.ops)
	assert.Equal(t, "Zscore", no.method)
}

func TestAssembleMasksFromOriginals(t *testing.T) {
	// normalization runs after filtering, yet its masks come from the
	// original inputs, not the filter's intermediate outputs
	sm, fl, no := &fakeSmoother{}, &fakeFilter{}, &fakeNormalizer{}
	steps := []model.PipelineStep{
		{Kind: model.StepTemporalFiltering, Highpass: fptr(100)},
		{Kind: model.StepTimecourseNormalization, Method: "PSC"},
	}
	plan := Assemble(steps, testStages(sm, fl, no, fakeProbe{tr: 2.0}))
	assert.Equal(t, "100sNonePSC", plan.Suffix)

	_, err := plan.Run(context.Background(), []string{"/d/sub-01_desc-preproc_bold.nii.gz"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/d/sub-01_desc-brain_mask.nii.gz"}, no.masks)
}

func TestAssembleSkipsUnknownStep(t *testing.T) {
	sm, fl, no := &fakeSmoother{}, &fakeFilter{}, &fakeNormalizer{}
	steps := []model.PipelineStep{
		{Kind: model.StepSpatialSmoothing, FWHM: 5},
		{Kind: "despike"},
	}
	plan := Assemble(steps, testStages(sm, fl, no, fakeProbe{tr: 2.0}))

	assert.Equal(t, "5mm", plan.Suffix, "unknown step contributes no token")

	out, err := plan.Run(context.Background(), []string{"a.nii.gz"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.nii.gz+smooth"}, out, "unknown step contributes no stage")
}

func TestPlanRunStageError(t *testing.T) {
	boom := errors.New("susan failed")
	sm := &fakeSmoother{err: boom}
	plan := Assemble([]model.PipelineStep{
		{Kind: model.StepSpatialSmoothing, FWHM: 5},
	}, testStages(sm, &fakeFilter{}, &fakeNormalizer{}, nil))

	_, err := plan.Run(context.Background(), []string{"a.nii.gz"})
	assert.ErrorIs(t, err, boom)
}

func TestPlanRunMetadataError(t *testing.T) {
	plan := Assemble([]model.PipelineStep{
		{Kind: model.StepHighpassFiltering, Cutoff: 100},
	}, testStages(&fakeSmoother{}, &fakeFilter{}, &fakeNormalizer{}, fakeProbe{err: errors.New("no header")}))

	_, err := plan.Run(context.Background(), []string{"a.nii.gz"})
	assert.ErrorIs(t, err, ErrMetadataUnavailable)
}

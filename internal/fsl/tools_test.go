package fsl

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolsSmooth(t *testing.T) {
	r := &scriptRunner{outputs: map[string]string{"fslstats": " 1000.000000 \n"}}
	tools := &Tools{Runner: r, WorkDir: t.TempDir()}

	out, err := tools.Smooth(context.Background(),
		[]string{"/d/sub-01_desc-preproc_bold.nii.gz"},
		[]string{"/d/sub-01_desc-brain_mask.nii.gz"}, 5)
	require.NoError(t, err)

	dst := filepath.Join(tools.WorkDir, "sub-01_desc-preproc_bold_smooth.nii.gz")
	assert.Equal(t, []string{dst}, out)

	sigma := num(5 / math.Sqrt(8*math.Ln2))
	assert.Equal(t, [][]string{
		{"fslstats", "/d/sub-01_desc-preproc_bold.nii.gz", "-k", "/d/sub-01_desc-brain_mask.nii.gz", "-p", "50"},
		{"susan", "/d/sub-01_desc-preproc_bold.nii.gz", "750", sigma, "3", "1", "0", dst},
		{"fslmaths", dst, "-mas", "/d/sub-01_desc-brain_mask.nii.gz", dst},
	}, r.calls)
}

func TestToolsSmoothBadMedian(t *testing.T) {
	r := &scriptRunner{outputs: map[string]string{"fslstats": "not a number"}}
	tools := &Tools{Runner: r, WorkDir: t.TempDir()}

	_, err := tools.Smooth(context.Background(), []string{"f.nii.gz"}, []string{"m.nii.gz"}, 5)
	assert.Error(t, err)
}

func TestToolsFilter(t *testing.T) {
	r := &scriptRunner{outputs: map[string]string{}}
	tools := &Tools{Runner: r, WorkDir: t.TempDir()}

	out, err := tools.Filter(context.Background(),
		[]string{"/d/bold.nii.gz"},
		[]string{"-bptf 25.0000000000 -1"})
	require.NoError(t, err)

	mean := filepath.Join(tools.WorkDir, "bold_mean.nii.gz")
	dst := filepath.Join(tools.WorkDir, "bold_tempfilt.nii.gz")
	assert.Equal(t, []string{dst}, out)
	assert.Equal(t, [][]string{
		{"fslmaths", "/d/bold.nii.gz", "-Tmean", mean},
		{"fslmaths", "/d/bold.nii.gz", "-bptf", "25.0000000000", "-1", dst},
		{"fslmaths", dst, "-add", mean, dst},
	}, r.calls)
}

func TestToolsNormalizeZscore(t *testing.T) {
	r := &scriptRunner{outputs: map[string]string{}}
	tools := &Tools{Runner: r, WorkDir: t.TempDir()}

	out, err := tools.Normalize(context.Background(),
		[]string{"/d/bold.nii.gz"}, []string{"/d/mask.nii.gz"}, "Zscore")
	require.NoError(t, err)

	mean := filepath.Join(tools.WorkDir, "bold_mean.nii.gz")
	std := filepath.Join(tools.WorkDir, "bold_std.nii.gz")
	dst := filepath.Join(tools.WorkDir, "bold_norm.nii.gz")
	assert.Equal(t, []string{dst}, out)
	assert.Equal(t, [][]string{
		{"fslmaths", "/d/bold.nii.gz", "-Tmean", mean},
		{"fslmaths", "/d/bold.nii.gz", "-Tstd", std},
		{"fslmaths", "/d/bold.nii.gz", "-sub", mean, "-div", std, "-mas", "/d/mask.nii.gz", dst},
	}, r.calls)
}

func TestToolsNormalizePSC(t *testing.T) {
	r := &scriptRunner{outputs: map[string]string{}}
	tools := &Tools{Runner: r, WorkDir: t.TempDir()}

	out, err := tools.Normalize(context.Background(),
		[]string{"/d/bold.nii.gz"}, []string{"/d/mask.nii.gz"}, "PSC")
	require.NoError(t, err)

	mean := filepath.Join(tools.WorkDir, "bold_mean.nii.gz")
	dst := filepath.Join(tools.WorkDir, "bold_norm.nii.gz")
	assert.Equal(t, []string{dst}, out)
	assert.Equal(t, [][]string{
		{"fslmaths", "/d/bold.nii.gz", "-Tmean", mean},
		{"fslmaths", "/d/bold.nii.gz", "-sub", mean, "-div", mean, "-mul", "100", "-mas", "/d/mask.nii.gz", dst},
	}, r.calls)
}

func TestToolsNormalizeUnknownMethod(t *testing.T) {
	tools := &Tools{Runner: &scriptRunner{}, WorkDir: t.TempDir()}

	_, err := tools.Normalize(context.Background(), []string{"f.nii.gz"}, []string{"m.nii.gz"}, "minmax")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown method")
}

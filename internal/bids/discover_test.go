package bids

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoldFileTemplate(t *testing.T) {
	got := BoldFileTemplate("/data/fmriprep", "sub-007")
	want := filepath.Join("/data/fmriprep", "sub-007", "ses-*", "func",
		"*_desc-preproc_bold.nii.gz")
	assert.Equal(t, want, got)
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	files := []string{
		filepath.Join(root, "sub-01", "ses-2", "func", "sub-01_ses-2_task-rest_desc-preproc_bold.nii.gz"),
		filepath.Join(root, "sub-01", "ses-1", "func", "sub-01_ses-1_task-rest_desc-preproc_bold.nii.gz"),
		// not a preproc bold file, must not match
		filepath.Join(root, "sub-01", "ses-1", "func", "sub-01_ses-1_task-rest_desc-brain_mask.nii.gz"),
	}
	for _, f := range files {
		require.NoError(t, os.MkdirAll(filepath.Dir(f), 0o755))
		require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))
	}

	got, err := Discover(BoldFileTemplate(root, "sub-01"))
	require.NoError(t, err)
	assert.Equal(t, []string{files[1], files[0]}, got, "matches are sorted")
}

func TestDiscoverNoMatches(t *testing.T) {
	got, err := Discover(BoldFileTemplate(t.TempDir(), "sub-99"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

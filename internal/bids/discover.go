package bids

import (
	"fmt"
	"path/filepath"
	"sort"
)

// BoldFileTemplate returns the glob pattern matching a subject's
// preprocessed bold files under an fMRIprep root directory.
func BoldFileTemplate(fmriprepDir, subjectLabel string) string {
	return filepath.Join(fmriprepDir, subjectLabel, "ses-*", "func",
		"*_desc-preproc_bold.nii.gz")
}

// Discover expands a glob template into the sorted list of matching files.
// Zero matches is not an error; the result is always a list.
func Discover(template string) ([]string, error) {
	matches, err := filepath.Glob(template)
	if err != nil {
		return nil, fmt.Errorf("bad file template %q: %w", template, err)
	}
	sort.Strings(matches)
	return matches, nil
}

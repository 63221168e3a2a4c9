package bids

import (
	"regexp"
	"strings"
)

// ExistsFunc reports whether a path exists. Injected so mask resolution is
// testable without touching a real filesystem.
type ExistsFunc func(path string) bool

var echoToken = regexp.MustCompile(`echo-[0-9]_`)

// ResolveMask derives the companion brain-mask path for a bold file by
// substituting the descriptor token. If the substituted path does not exist
// (or existence cannot be verified), any echo token is stripped and the
// stripped path returned instead: multi-echo acquisitions share one mask
// across echoes (fmriprep >= 21.0.0). A mask that is missing altogether is
// reported by the consuming stage, never here.
func ResolveMask(boldPath string, exists ExistsFunc) string {
	mask := strings.ReplaceAll(boldPath, "preproc_bold", "brain_mask")
	if exists != nil && exists(mask) {
		return mask
	}
	if stripped := echoToken.ReplaceAllString(mask, ""); stripped != mask {
		return stripped
	}
	return mask
}

// ResolveMasks applies ResolveMask element-wise.
func ResolveMasks(boldPaths []string, exists ExistsFunc) []string {
	masks := make([]string, len(boldPaths))
	for i, p := range boldPaths {
		masks[i] = ResolveMask(p, exists)
	}
	return masks
}

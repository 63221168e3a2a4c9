package fsl

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Tools implements the transform stage collaborators (smoothing, temporal
// filtering, timecourse normalization) with fslmaths/susan/fslstats.
// Intermediates are written under WorkDir.
type Tools struct {
	Runner  Runner
	WorkDir string
}

func (t *Tools) run(ctx context.Context, name string, args ...string) (string, error) {
	return t.Runner.Run(ctx, name, args...)
}

// workPath places a derived file in the working directory, tagging the base
// name so the chain's intermediates never collide.
func (t *Tools) workPath(src, tag string) string {
	base := filepath.Base(src)
	ext := ""
	if i := strings.Index(base, "."); i >= 0 {
		ext = base[i:]
		base = base[:i]
	}
	return filepath.Join(t.WorkDir, base+tag+ext)
}

func (t *Tools) ensureWorkDir() error {
	if t.WorkDir == "" {
		t.WorkDir = os.TempDir()
	}
	return os.MkdirAll(t.WorkDir, 0755)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Smooth applies SUSAN noise-reducing smoothing to each file. The brightness
// threshold is 75% of the median intensity within the brain mask and the
// kernel sigma is derived from the FWHM in millimeters.
func (t *Tools) Smooth(ctx context.Context, files, masks []string, fwhm float64) ([]string, error) {
	if err := t.ensureWorkDir(); err != nil {
		return nil, err
	}
	sigma := fwhm / math.Sqrt(8*math.Ln2)
	out := make([]string, len(files))
	for i, f := range files {
		median, err := t.run(ctx, "fslstats", f, "-k", masks[i], "-p", "50")
		if err != nil {
			return nil, fmt.Errorf("smooth %s: %w", f, err)
		}
		m, err := strconv.ParseFloat(strings.TrimSpace(median), 64)
		if err != nil {
			return nil, fmt.Errorf("smooth %s: bad median %q: %w", f, median, err)
		}
		dst := t.workPath(f, "_smooth")
		if _, err := t.run(ctx, "susan", f, num(0.75*m), num(sigma), "3", "1", "0", dst); err != nil {
			return nil, fmt.Errorf("smooth %s: %w", f, err)
		}
		if _, err := t.run(ctx, "fslmaths", dst, "-mas", masks[i], dst); err != nil {
			return nil, fmt.Errorf("smooth %s: %w", f, err)
		}
		out[i] = dst
	}
	return out, nil
}

// Filter applies the temporal filter to each file via the mean-removal /
// filter / mean-restoration sub-chain. ops[i] is the per-file filter
// parameter string (e.g. "-bptf 25.0000000000 -1").
func (t *Tools) Filter(ctx context.Context, files, ops []string) ([]string, error) {
	if err := t.ensureWorkDir(); err != nil {
		return nil, err
	}
	out := make([]string, len(files))
	for i, f := range files {
		mean := t.workPath(f, "_mean")
		if _, err := t.run(ctx, "fslmaths", f, "-Tmean", mean); err != nil {
			return nil, fmt.Errorf("filter %s: %w", f, err)
		}
		dst := t.workPath(f, "_tempfilt")
		args := append([]string{f}, strings.Fields(ops[i])...)
		args = append(args, dst)
		if _, err := t.run(ctx, "fslmaths", args...); err != nil {
			return nil, fmt.Errorf("filter %s: %w", f, err)
		}
		if _, err := t.run(ctx, "fslmaths", dst, "-add", mean, dst); err != nil {
			return nil, fmt.Errorf("filter %s: %w", f, err)
		}
		out[i] = dst
	}
	return out, nil
}

// Normalize standardizes each file's timecourses within the brain mask.
// Supported methods: "Zscore" (subtract temporal mean, divide by temporal
// standard deviation) and "PSC" (percent signal change relative to the
// temporal mean).
func (t *Tools) Normalize(ctx context.Context, files, masks []string, method string) ([]string, error) {
	if err := t.ensureWorkDir(); err != nil {
		return nil, err
	}
	out := make([]string, len(files))
	for i, f := range files {
		mean := t.workPath(f, "_mean")
		if _, err := t.run(ctx, "fslmaths", f, "-Tmean", mean); err != nil {
			return nil, fmt.Errorf("normalize %s: %w", f, err)
		}
		dst := t.workPath(f, "_norm")
		switch method {
		case "Zscore":
			std := t.workPath(f, "_std")
			if _, err := t.run(ctx, "fslmaths", f, "-Tstd", std); err != nil {
				return nil, fmt.Errorf("normalize %s: %w", f, err)
			}
			if _, err := t.run(ctx, "fslmaths", f, "-sub", mean, "-div", std, "-mas", masks[i], dst); err != nil {
				return nil, fmt.Errorf("normalize %s: %w", f, err)
			}
		case "PSC":
			if _, err := t.run(ctx, "fslmaths", f, "-sub", mean, "-div", mean, "-mul", "100", "-mas", masks[i], dst); err != nil {
				return nil, fmt.Errorf("normalize %s: %w", f, err)
			}
		default:
			return nil, fmt.Errorf("normalize %s: unknown method %q", f, method)
		}
		out[i] = dst
	}
	return out, nil
}

package fsl

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Probe reads image header metadata via fslinfo.
type Probe struct {
	Runner Runner
}

// RepetitionTime parses the pixdim4 line of fslinfo output, which carries
// the interval between successive volumes in seconds.
func (p *Probe) RepetitionTime(ctx context.Context, path string) (float64, error) {
	out, err := p.Runner.Run(ctx, "fslinfo", path)
	if err != nil {
		return 0, fmt.Errorf("fslinfo %s: %w", path, err)
	}
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "pixdim4") {
			continue
		}
		value := strings.TrimSpace(strings.TrimPrefix(line, "pixdim4"))
		tr, perr := strconv.ParseFloat(value, 64)
		if perr != nil {
			return 0, fmt.Errorf("fslinfo %s: bad pixdim4 %q: %w", path, value, perr)
		}
		return tr, nil
	}
	return 0, fmt.Errorf("fslinfo %s: no pixdim4 in output", path)
}

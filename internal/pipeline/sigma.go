package pipeline

import (
	"context"
	"errors"
	"fmt"
)

// ErrMetadataUnavailable means the temporal resolution of a file could not
// be determined. It aborts only that file's processing, not the whole batch;
// the driver's OnError policy decides whether to skip the file or fail the
// subject.
var ErrMetadataUnavailable = errors.New("temporal resolution unavailable")

// MetadataProbe reads image header metadata. Implementations are
// side-effecting collaborators (e.g. an fslinfo invocation) and are injected
// so filter computation is testable.
type MetadataProbe interface {
	// RepetitionTime returns the file's TR in seconds.
	RepetitionTime(ctx context.Context, path string) (float64, error)
}

// sigmaToken converts a time-domain cutoff into the frequency-domain sigma
// for the given TR, formatted to 10 decimal digits. An absent cutoff encodes
// as "-1", meaning no filtering in that band.
func sigmaToken(cutoff *float64, tr float64) string {
	if cutoff == nil {
		return "-1"
	}
	return fmt.Sprintf("%.10f", *cutoff/(2*tr))
}

// FilterOp computes the filter-parameter string for one file: the high and
// low band sigmas joined by a space, prefixed for the image-filter stage.
func FilterOp(ctx context.Context, probe MetadataProbe, path string, highpass, lowpass *float64) (string, error) {
	tr, err := probe.RepetitionTime(ctx, path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrMetadataUnavailable, path, err)
	}
	if tr <= 0 {
		return "", fmt.Errorf("%w: %s: non-positive TR %v", ErrMetadataUnavailable, path, tr)
	}
	return fmt.Sprintf("-bptf %s %s", sigmaToken(highpass, tr), sigmaToken(lowpass, tr)), nil
}

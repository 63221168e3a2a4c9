package pipeline

import (
	"strconv"

	"go-fmri-pipeline/internal/model"
)

// formatNum prints a float in its natural representation, without trailing
// zeros beyond what the value needs (5 -> "5", 5.5 -> "5.5").
func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// cutoffToken encodes one band's cutoff for the suffix: a present cutoff c
// becomes "{c}s", an absent one the literal "None".
func cutoffToken(c *float64) string {
	if c == nil {
		return "None"
	}
	return formatNum(*c) + "s"
}

// StepToken returns the canonical suffix token for a pipeline step. Tokens
// are concatenated in step order with no delimiter to form the overall
// transform-history suffix. ok is false for unknown step kinds.
func StepToken(step model.PipelineStep) (token string, ok bool) {
	switch step.Kind {
	case model.StepSpatialSmoothing:
		return formatNum(step.FWHM) + "mm", true
	case model.StepTemporalFiltering:
		return cutoffToken(step.Highpass) + cutoffToken(step.Lowpass), true
	case model.StepHighpassFiltering:
		return formatNum(step.Cutoff) + "s", true
	case model.StepTimecourseNormalization:
		return step.Method, true
	}
	return "", false
}

package fsl

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptRunner records every invocation and answers from a canned script
// keyed by command name.
type scriptRunner struct {
	calls   [][]string
	outputs map[string]string
	err     error
}

func (r *scriptRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	r.calls = append(r.calls, append([]string{name}, args...))
	if r.err != nil {
		return "", r.err
	}
	return r.outputs[name], nil
}

const fslinfoOutput = `data_type      FLOAT32
dim1           97
dim2           115
dim3           97
dim4           300
datatype       16
pixdim1        2.000000
pixdim2        2.000000
pixdim3        2.000000
pixdim4        0.720000
cal_max        0.0000
cal_min        0.0000
file_type      NIFTI-1+
`

func TestProbeRepetitionTime(t *testing.T) {
	r := &scriptRunner{outputs: map[string]string{"fslinfo": fslinfoOutput}}
	p := &Probe{Runner: r}

	tr, err := p.RepetitionTime(context.Background(), "bold.nii.gz")
	require.NoError(t, err)
	assert.Equal(t, 0.72, tr)
	assert.Equal(t, [][]string{{"fslinfo", "bold.nii.gz"}}, r.calls)
}

func TestProbeRepetitionTimeMissingLine(t *testing.T) {
	r := &scriptRunner{outputs: map[string]string{"fslinfo": "dim4 300\n"}}
	p := &Probe{Runner: r}

	_, err := p.RepetitionTime(context.Background(), "bold.nii.gz")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "pixdim4"))
}

func TestProbeRepetitionTimeRunnerError(t *testing.T) {
	boom := errors.New("fslinfo: not found")
	p := &Probe{Runner: &scriptRunner{err: boom}}

	_, err := p.RepetitionTime(context.Background(), "bold.nii.gz")
	assert.ErrorIs(t, err, boom)
}

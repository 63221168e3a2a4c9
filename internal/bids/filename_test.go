package bids

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	paths := []string{
		"sub-001_task-rest_desc-preproc_bold.nii.gz",
		"/data/out/sub-01_ses-1_task-rest_run-1_desc-preproc_bold.nii.gz",
		"sub-02_task-nback_echo-2_desc-preproc_bold.nii.gz",
		"desc-x_bold.nii.gz",
	}
	for _, p := range paths {
		f, err := Parse(p)
		require.NoError(t, err, p)
		assert.Equal(t, p, f.Path(), "encode(decode(p)) must equal p")
	}
}

func TestParseMalformed(t *testing.T) {
	cases := map[string]string{
		"segment without separator": "sub-01_badsegment_desc-preproc_bold.nii.gz",
		"no extension segment":      "justaname",
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(p)
			assert.ErrorIs(t, err, ErrMalformedFilename)
		})
	}
}

func TestParseFields(t *testing.T) {
	f, err := Parse("/x/sub-001_task-rest_desc-preproc_bold.nii.gz")
	require.NoError(t, err)
	assert.Equal(t, "/x/", f.Dir)
	assert.Equal(t, "bold.nii.gz", f.Tail)
	require.Len(t, f.Fields, 3)
	assert.Equal(t, Field{"sub", "001"}, f.Fields[0])
	assert.Equal(t, Field{"task", "rest"}, f.Fields[1])
	assert.Equal(t, Field{"desc", "preproc"}, f.Fields[2])
}

func TestAppendDescSuffix(t *testing.T) {
	f, err := Parse("sub-001_task-rest_desc-preproc_bold.nii.gz")
	require.NoError(t, err)

	out, err := f.AppendDescSuffix("5mm100s")
	require.NoError(t, err)
	assert.Equal(t, "sub-001_task-rest_desc-preproc5mm100s_bold.nii.gz", out.Path())

	// the receiver is not mutated
	assert.Equal(t, "sub-001_task-rest_desc-preproc_bold.nii.gz", f.Path())
}

func TestAppendDescSuffixMissingField(t *testing.T) {
	f, err := Parse("sub-001_task-rest_bold.nii.gz")
	require.NoError(t, err)

	_, err = f.AppendDescSuffix("5mm")
	assert.ErrorIs(t, err, ErrMissingDescField)
}

func TestAppendDescSuffixAssociative(t *testing.T) {
	f, err := Parse("sub-001_desc-preproc_bold.nii.gz")
	require.NoError(t, err)

	a, err := f.AppendDescSuffix("5mm")
	require.NoError(t, err)
	a, err = a.AppendDescSuffix("100s")
	require.NoError(t, err)

	b, err := f.AppendDescSuffix("5mm" + "100s")
	require.NoError(t, err)

	assert.Equal(t, b.Path(), a.Path())
}

func TestOutputPath(t *testing.T) {
	got, err := OutputPath("/d/sub-001_task-rest_desc-preproc_bold.nii.gz", "5mm100s")
	require.NoError(t, err)
	assert.Equal(t, "/d/sub-001_task-rest_desc-preproc5mm100s_bold.nii.gz", got)

	// empty suffix is the identity
	got, err = OutputPath("/d/sub-001_desc-preproc_bold.nii.gz", "")
	require.NoError(t, err)
	assert.Equal(t, "/d/sub-001_desc-preproc_bold.nii.gz", got)
}

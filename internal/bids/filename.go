// Package bids handles the structured filename grammar used by fMRIprep
// outputs: underscore-joined key-value fields followed by a suffix segment
// carrying the extension, e.g. "sub-01_task-rest_desc-preproc_bold.nii.gz".
package bids

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrMalformedFilename = errors.New("malformed filename")
	ErrMissingDescField  = errors.New("filename has no desc field")
)

// Field is one key-value token of a structured filename. Keys are unique
// within a filename and their order is preserved.
type Field struct {
	Key   string
	Value string
}

// Filename is a decomposed structured file path. Tail is the final segment
// carrying the extension, e.g. "bold.nii.gz".
type Filename struct {
	Dir    string
	Fields []Field
	Tail   string
}

// Parse decomposes a file path into its structured form. It fails with
// ErrMalformedFilename if a field token has no "-" separator or the
// extension segment is missing.
func Parse(path string) (*Filename, error) {
	dir, base := filepath.Split(path)
	segments := strings.Split(base, "_")
	tail := segments[len(segments)-1]
	if !strings.Contains(tail, ".") {
		return nil, fmt.Errorf("%w: %q has no extension segment", ErrMalformedFilename, base)
	}
	f := &Filename{Dir: dir, Tail: tail}
	for _, seg := range segments[:len(segments)-1] {
		key, value, ok := strings.Cut(seg, "-")
		if !ok {
			return nil, fmt.Errorf("%w: segment %q in %q is not key-value", ErrMalformedFilename, seg, base)
		}
		f.Fields = append(f.Fields, Field{Key: key, Value: value})
	}
	return f, nil
}

// Path renders the filename back to a path. Path is the left inverse of
// Parse: Parse(p).Path() == p for well-formed p.
func (f *Filename) Path() string {
	parts := make([]string, 0, len(f.Fields)+1)
	for _, fd := range f.Fields {
		parts = append(parts, fd.Key+"-"+fd.Value)
	}
	parts = append(parts, f.Tail)
	return f.Dir + strings.Join(parts, "_")
}

// AppendDescSuffix returns a copy of f with suffix appended to the value of
// the desc field. Field order is preserved; desc is the only field altered.
func (f *Filename) AppendDescSuffix(suffix string) (*Filename, error) {
	out := &Filename{Dir: f.Dir, Tail: f.Tail, Fields: make([]Field, len(f.Fields))}
	copy(out.Fields, f.Fields)
	for i := range out.Fields {
		if out.Fields[i].Key == "desc" {
			out.Fields[i].Value += suffix
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrMissingDescField, f.Path())
}

// OutputPath derives the output path for a processed file: the original path
// with the transform-history suffix appended to its desc field.
func OutputPath(path, suffix string) (string, error) {
	f, err := Parse(path)
	if err != nil {
		return "", err
	}
	out, err := f.AppendDescSuffix(suffix)
	if err != nil {
		return "", err
	}
	return out.Path(), nil
}

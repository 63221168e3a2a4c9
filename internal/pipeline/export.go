package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrExport means writing a processed file to its destination failed. It is
// surfaced to the caller and not retried automatically.
var ErrExport = errors.New("export failed")

// Exporter copies processed content to a destination path. Re-running with
// the same inputs overwrites the same destination deterministically.
type Exporter interface {
	Export(ctx context.Context, src, dst string) error
}

// FileExporter is the default Exporter, copying on the local filesystem.
type FileExporter struct{}

func (FileExporter) Export(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrExport, dst, err)
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrExport, dst, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrExport, dst, err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrExport, dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("%w: %s: %v", ErrExport, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrExport, dst, err)
	}
	return nil
}

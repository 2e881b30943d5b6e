// Package file reads card exports and list files from the local disk.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"cardetl/internal/datasource"
)

// Local is a card export on the local disk. Exports ending in ".gz" are
// decompressed while reading.
type Local struct{ path string }

var _ datasource.Source = (*Local)(nil)

// NewLocal returns a Local for path. Every Open returns an independent
// reader, so a Local may be shared between goroutines.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the export location, for logs.
func (l *Local) Path() string { return l.path }

// Open returns a reader over the export. A canceled ctx is reported before
// the file is touched. Filesystem errors carry the path and still match
// errors.Is(err, os.ErrNotExist).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	adviseSequential(f)

	if !strings.HasSuffix(l.path, ".gz") {
		return f, nil
	}
	zr, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open %s: gzip: %w", l.path, err)
	}
	return &gzipExport{Reader: zr, f: f}, nil
}

// gzipExport closes both the decompressor and the file under it.
type gzipExport struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipExport) Close() error {
	err := g.Reader.Close()
	if cerr := g.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Package export writes report tables to files and streams.
package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"fintrack/internal/core"
)

// Exporter delivers a table to a named destination. Every failure wraps
// core.ErrExportFailed.
type Exporter interface {
	Export(ctx context.Context, t core.Table, destination string) error
}

// Encoder serializes a table into one file format.
type Encoder interface {
	Encode(w io.Writer, t core.Table) error
	// Extension is the file name suffix without the dot.
	Extension() string
	ContentType() string
}

func failed(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", core.ErrExportFailed, op, err)
}

// FileExporter writes Dir/<destination>.<ext>. The file is replaced
// atomically so readers never see a half-written export.
type FileExporter struct {
	Dir     string
	Encoder Encoder
}

func NewFileExporter(dir string, enc Encoder) *FileExporter {
	return &FileExporter{Dir: dir, Encoder: enc}
}

// Path returns the file a destination resolves to.
func (e *FileExporter) Path(destination string) string {
	return filepath.Join(e.Dir, destination+"."+e.Encoder.Extension())
}

func (e *FileExporter) Export(ctx context.Context, t core.Table, destination string) error {
	if err := ValidateDestination(destination); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return failed("export cancelled", err)
	}
	if err := os.MkdirAll(e.Dir, 0755); err != nil {
		return failed("create export directory", err)
	}

	tmp, err := os.CreateTemp(e.Dir, "."+destination+"-*")
	if err != nil {
		return failed("create temp file", err)
	}
	defer os.Remove(tmp.Name())

	if err := e.Encoder.Encode(tmp, t); err != nil {
		tmp.Close()
		return failed("encode "+e.Encoder.Extension(), err)
	}
	if err := tmp.Close(); err != nil {
		return failed("close temp file", err)
	}

	path := e.Path(destination)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return failed("move export into place", err)
	}

	slog.InfoContext(ctx, "Export written", "path", path, "rows", len(t.Rows))
	return nil
}

// ValidateDestination accepts only bare file names.
func ValidateDestination(destination string) error {
	switch {
	case strings.TrimSpace(destination) == "",
		destination == ".", destination == "..",
		strings.ContainsAny(destination, `/\`),
		filepath.Base(destination) != destination:
		return failed("invalid destination", fmt.Errorf("%q is not a bare file name", destination))
	}
	return nil
}

// BufferExporter encodes into memory; the destination is ignored. HTTP
// downloads use it so an encoding failure can still produce an error body.
type BufferExporter struct {
	Encoder Encoder
	buf     bytes.Buffer
}

func NewBufferExporter(enc Encoder) *BufferExporter {
	return &BufferExporter{Encoder: enc}
}

func (e *BufferExporter) Export(_ context.Context, t core.Table, _ string) error {
	e.buf.Reset()
	if err := e.Encoder.Encode(&e.buf, t); err != nil {
		e.buf.Reset()
		return failed("encode "+e.Encoder.Extension(), err)
	}
	return nil
}

func (e *BufferExporter) Bytes() []byte {
	return e.buf.Bytes()
}

// EncoderFor maps a format name to its Encoder.
func EncoderFor(format string) (Encoder, bool) {
	switch strings.ToLower(format) {
	case "csv":
		return CSVEncoder{}, true
	case "xlsx":
		return XLSXEncoder{}, true
	default:
		return nil, false
	}
}

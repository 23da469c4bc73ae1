package domain

import (
	"context"
	"io"
)

type Service interface {
	Export(ctx context.Context, w io.Writer, opts ExportOptions) (Record, error)
	// Import accepts plain or snappy-compressed JSON.
	Import(ctx context.Context, r io.Reader, fileName string) (ImportResult, error)
	Records(ctx context.Context) ([]Record, error)
}

// Package datasource defines where raw flow exports are read from.
package datasource

import (
	"context"
	"io"
)

// Source opens one raw input stream.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	// Name identifies the source in logs and metrics.
	Name() string
}

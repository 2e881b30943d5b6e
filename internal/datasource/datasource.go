// Package datasource defines where raw card exports are read from.
package datasource

import (
	"context"
	"io"
)

// Source opens the raw byte stream of a card export.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

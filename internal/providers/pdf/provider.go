package pdf

import (
	"bytes"
	"context"
	"io"
)

// Provider renders billing documents.
type Provider interface {
	GenerateStatement(ctx context.Context, data StatementData) (io.Reader, error)
}

// NoOpProvider renders nothing; it stands in where document output is
// disabled.
type NoOpProvider struct{}

func (p *NoOpProvider) GenerateStatement(ctx context.Context, data StatementData) (io.Reader, error) {
	return bytes.NewReader(nil), nil
}

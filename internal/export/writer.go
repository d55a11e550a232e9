package export

import (
	"context"
	"time"
)

// Run describes the document run a set of tables belongs to.
type Run struct {
	ID        string
	Source    string
	Variant   string
	Base      string
	Dir       string
	StartedAt time.Time
}

// Writer persists a document's tables and returns where they went.
type Writer interface {
	Write(ctx context.Context, run Run, tables []Table) ([]string, error)
}

package ports

import (
	"context"

	"contractbot/domain/dataset"
	"contractbot/domain/query"
)

// QueryEngine answers a natural-language question over loaded tables
type QueryEngine interface {
	Chat(ctx context.Context, question string, tables []*dataset.Table) (*query.Answer, error)
}

package target

import "context"

// Repository applies approved mutations to allow-listed tables.
// Callers must check the table and columns against the registry first.
type Repository interface {
	Insert(ctx context.Context, table string, data map[string]any) (string, error)
	Patch(ctx context.Context, table, id string, data map[string]any) error
	Remove(ctx context.Context, table, id string) error
}

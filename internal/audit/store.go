package audit

import (
	"context"

	"github.com/google/uuid"
)

// Store is the append-only persistence contract for audit entries.
// Implementations expose Append and reads, never update or delete.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	List(ctx context.Context, tenantID uuid.UUID, offset, limit int) ([]Entry, error)
}

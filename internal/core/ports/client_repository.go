package ports

import (
	"context"

	"github.com/insightdesk/access-directory/internal/core/domain"
)

// ClientRepository defines persistence operations for the client directory.
// The record id (email local-part) is the sole primary key.
type ClientRepository interface {
	// Get retrieves one record, or domain.ErrClientNotFound.
	Get(ctx context.Context, id string) (*domain.ClientRecord, error)
	// List returns all records sorted by access_granted_at descending,
	// then email ascending.
	List(ctx context.Context) ([]*domain.ClientRecord, error)
	// Upsert inserts the record or fully replaces an existing one with
	// the same id.
	Upsert(ctx context.Context, record *domain.ClientRecord) error
	// Delete hard-deletes a record, or returns domain.ErrClientNotFound.
	Delete(ctx context.Context, id string) error
}

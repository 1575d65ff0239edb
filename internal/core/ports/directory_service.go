package ports

import (
	"context"
	"io"

	"github.com/insightdesk/access-directory/internal/core/domain"
)

// RegisterInput carries the administrator's "add client" form.
type RegisterInput struct {
	Email       string
	ExpiryDate  string // YYYY-MM-DD
	Permissions []string
}

// EditInput carries the full replacement values for an edit. Fields equal to
// the stored values produce no audit entry.
type EditInput struct {
	Email       string
	ExpiryDate  string
	Permissions []string
}

// DirectoryService exposes the administrative operations on the directory.
type DirectoryService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.ClientRecord, error)
	Get(ctx context.Context, id string) (*domain.ClientRecord, error)
	List(ctx context.Context) ([]*domain.ClientRecord, error)
	Edit(ctx context.Context, id string, in EditInput) (*domain.ClientRecord, error)
	ResetLoginStatus(ctx context.Context, id string) error
	// ResetLoginDetails generates and stores a fresh random password, forces
	// the client logged out, and returns the password. This is the only time
	// the password is handed back by a mutating operation.
	ResetLoginDetails(ctx context.Context, id string) (string, error)
	Remove(ctx context.Context, id string) error
}

// ImportedRow is one line of the bulk-import report.
type ImportedRow struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	PurchaseDateDisplay  string `json:"purchase_date"`
	AccessGrantedDisplay string `json:"access_granted"`
}

// ImportReport summarises one bulk-import run.
type ImportReport struct {
	Imported          []ImportedRow `json:"imported"`
	SkippedNoEmail    int           `json:"skipped_no_email"`
	SkippedNonSuccess int           `json:"skipped_non_success"`
	SkippedBadDate    int           `json:"skipped_bad_date"`
	FailedRows        int           `json:"failed_rows"`
}

// Importer runs the bulk-import reconciliation pipeline over a CSV stream.
type Importer interface {
	Import(ctx context.Context, r io.Reader) (*ImportReport, error)
}

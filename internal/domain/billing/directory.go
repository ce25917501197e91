package billing

import (
	"context"

	"github.com/google/uuid"
)

// ClientRef is the slice of client data billing needs for validation and
// reporting labels.
type ClientRef struct {
	ID   uuid.UUID
	Name string
}

// ProjectRef is the slice of project data billing needs
type ProjectRef struct {
	ID       uuid.UUID
	ClientID uuid.UUID
	Name     string
}

// ClientDirectory resolves client references. Invoices only validate that the
// client exists; client management itself lives outside this system.
type ClientDirectory interface {
	FindClient(ctx context.Context, id uuid.UUID) (*ClientRef, error)
	ClientExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ProjectDirectory resolves project references
type ProjectDirectory interface {
	FindProject(ctx context.Context, id uuid.UUID) (*ProjectRef, error)
	ProjectExists(ctx context.Context, id uuid.UUID) (bool, error)
}

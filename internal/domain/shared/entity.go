package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and timestamps shared by every domain
// entity. UpdatedAt is maintained by the entity's own mutators.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity returns a BaseEntity with a fresh ID and both timestamps
// set to now.
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// BaseAggregateRoot adds an optimistic-lock version to BaseEntity. The
// version starts at 1 and is bumped by the aggregate's own mutators.
//
// Side effects on related entities (ledger mirroring, invoice status
// re-evaluation) are never triggered implicitly by saving an aggregate;
// the orchestrating application service makes every cross-entity call
// explicitly.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
}

// NewBaseAggregateRoot returns an aggregate root at version 1.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// IncrementVersion records one mutation for optimistic locking.
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

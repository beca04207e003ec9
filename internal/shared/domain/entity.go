// Package domain holds the building blocks shared by bounded contexts:
// entity identity and domain events.
package domain

import "github.com/google/uuid"

// BaseEntity gives an entity a stable identity that survives updates and
// persistence round trips.
type BaseEntity struct {
	id uuid.UUID
}

// NewBaseEntity assigns a fresh random identity.
func NewBaseEntity() BaseEntity {
	return BaseEntity{id: uuid.New()}
}

// RehydrateBaseEntity restores a persisted identity.
func RehydrateBaseEntity(id uuid.UUID) BaseEntity {
	return BaseEntity{id: id}
}

func (e BaseEntity) ID() uuid.UUID { return e.id }


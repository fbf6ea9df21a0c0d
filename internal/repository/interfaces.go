// Package repository defines data access interfaces for delivery resources.
// All database access goes through these interfaces, enabling easy testing
// and database backend switching.
package repository

import (
	"context"

	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/models"
)

// ResourceRepository defines operations for resource persistence.
type ResourceRepository interface {
	// Create allocates the next id from the given sequence namespace and
	// inserts the resource in the same transaction. On success the
	// resource's ID field holds the allocated id. Ids consumed by a
	// rolled-back insert are skipped, never reused.
	Create(ctx context.Context, resource *models.Resource, ns models.Namespace) error
	// Update persists changed fields of an existing resource.
	Update(ctx context.Context, resource *models.Resource) error
	// GetByID retrieves a resource by id. Returns (nil, nil) when no row
	// exists.
	GetByID(ctx context.Context, id uint64) (*models.Resource, error)
	// GetIDsByOwner returns the ids of all resources belonging to an
	// owner, in ascending id order.
	GetIDsByOwner(ctx context.Context, ownerID models.ULID) ([]uint64, error)
	// GetByOwner retrieves all resources belonging to an owner, in
	// ascending id order.
	GetByOwner(ctx context.Context, ownerID models.ULID) ([]*models.Resource, error)
	// Delete deletes a resource row by id.
	Delete(ctx context.Context, id uint64) error
	// DeleteByOwner deletes all resource rows belonging to an owner and
	// returns the number of rows removed.
	DeleteByOwner(ctx context.Context, ownerID models.ULID) (int64, error)
	// CurrentSequenceValue returns the last-assigned id of a namespace.
	CurrentSequenceValue(ctx context.Context, ns models.Namespace) (uint64, error)
	// Transaction executes fn within a database transaction against a
	// transactional repository. If fn returns an error the transaction
	// rolls back.
	Transaction(ctx context.Context, fn func(ResourceRepository) error) error
}

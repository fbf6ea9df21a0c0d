package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/JosefHuber/upnp-plugin-irt-sub001/internal/models"
)

// resourceRepo implements ResourceRepository using GORM.
type resourceRepo struct {
	db *gorm.DB
}

// NewResourceRepository creates a new ResourceRepository.
func NewResourceRepository(db *gorm.DB) *resourceRepo {
	return &resourceRepo{db: db}
}

// Create allocates the next id from the namespace counter and inserts the
// resource inside one transaction. The counter is incremented first; if the
// insert fails afterwards the transaction rolls back, but a counter value
// consumed by a committed increment is never handed out again.
func (r *resourceRepo) Create(ctx context.Context, resource *models.Resource, ns models.Namespace) error {
	if !ns.Valid() {
		return models.NewStoreError("create resource", fmt.Errorf("unknown sequence namespace %q: %w", ns, models.ErrSequenceExhausted))
	}
	if err := resource.Validate(); err != nil {
		return models.NewStoreError("create resource", err)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := nextSequenceValue(tx, ns)
		if err != nil {
			return err
		}
		resource.ID = id
		if err := tx.Create(resource).Error; err != nil {
			return fmt.Errorf("inserting resource: %w", err)
		}
		return nil
	})
	if err != nil {
		resource.ID = 0
		return models.NewStoreError("create resource", err)
	}
	return nil
}

// nextSequenceValue increments the counter row for ns and reads back the new
// value within the caller's transaction. A missing counter row surfaces as
// ErrSequenceExhausted rather than silently creating one, because the row is
// seeded at migration time.
func nextSequenceValue(tx *gorm.DB, ns models.Namespace) (uint64, error) {
	res := tx.Model(&models.Sequence{}).
		Where("namespace = ?", ns).
		Update("value", gorm.Expr("value + 1"))
	if res.Error != nil {
		return 0, fmt.Errorf("incrementing sequence %q: %w", ns, res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("sequence %q: %w", ns, models.ErrSequenceExhausted)
	}

	var seq models.Sequence
	if err := tx.Where("namespace = ?", ns).First(&seq).Error; err != nil {
		return 0, fmt.Errorf("reading sequence %q: %w", ns, err)
	}
	return seq.Value, nil
}

// Update persists an existing resource.
func (r *resourceRepo) Update(ctx context.Context, resource *models.Resource) error {
	if resource.ID == 0 {
		return models.NewStoreError("update resource", models.ErrResourceNotFound)
	}
	if err := resource.Validate(); err != nil {
		return models.NewStoreError("update resource", err)
	}
	if err := r.db.WithContext(ctx).Save(resource).Error; err != nil {
		return models.NewStoreError("update resource", err)
	}
	return nil
}

// GetByID retrieves a resource by id.
func (r *resourceRepo) GetByID(ctx context.Context, id uint64) (*models.Resource, error) {
	var resource models.Resource
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&resource).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, models.NewStoreError("get resource by id", err)
	}
	return &resource, nil
}

// GetIDsByOwner returns the ids of all resources for an owner in ascending
// order.
func (r *resourceRepo) GetIDsByOwner(ctx context.Context, ownerID models.ULID) ([]uint64, error) {
	var ids []uint64
	if err := r.db.WithContext(ctx).
		Model(&models.Resource{}).
		Where("owner_id = ?", ownerID).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, models.NewStoreError("get resource ids by owner", err)
	}
	return ids, nil
}

// GetByOwner retrieves all resources for an owner in ascending id order.
func (r *resourceRepo) GetByOwner(ctx context.Context, ownerID models.ULID) ([]*models.Resource, error) {
	var resources []*models.Resource
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("id ASC").
		Find(&resources).Error; err != nil {
		return nil, models.NewStoreError("get resources by owner", err)
	}
	return resources, nil
}

// Delete deletes a resource by id.
func (r *resourceRepo) Delete(ctx context.Context, id uint64) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Resource{}).Error; err != nil {
		return models.NewStoreError("delete resource", err)
	}
	return nil
}

// DeleteByOwner deletes all resources for an owner.
func (r *resourceRepo) DeleteByOwner(ctx context.Context, ownerID models.ULID) (int64, error) {
	res := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&models.Resource{})
	if res.Error != nil {
		return 0, models.NewStoreError("delete resources by owner", res.Error)
	}
	return res.RowsAffected, nil
}

// CurrentSequenceValue returns the last-assigned id of a namespace.
func (r *resourceRepo) CurrentSequenceValue(ctx context.Context, ns models.Namespace) (uint64, error) {
	var seq models.Sequence
	if err := r.db.WithContext(ctx).Where("namespace = ?", ns).First(&seq).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, models.NewStoreError("read sequence", fmt.Errorf("sequence %q: %w", ns, models.ErrSequenceExhausted))
		}
		return 0, models.NewStoreError("read sequence", err)
	}
	return seq.Value, nil
}

// Transaction executes the given function within a database transaction.
// The provided function receives a transactional repository.
// If the function returns an error, the transaction is rolled back.
func (r *resourceRepo) Transaction(ctx context.Context, fn func(ResourceRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &resourceRepo{db: tx}
		return fn(txRepo)
	})
}

// Ensure resourceRepo implements ResourceRepository at compile time.
var _ ResourceRepository = (*resourceRepo)(nil)

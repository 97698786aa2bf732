package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taxi-travel/service-travel/internal/domain"
	"github.com/taxi-travel/service-travel/internal/domain/travelagent"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrphanedResourceModel is the GORM model for the orphaned_resources table.
type OrphanedResourceModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TripID       *uuid.UUID `gorm:"type:uuid;index"`
	ResourceKind string     `gorm:"type:varchar(30);not null;uniqueIndex:uq_orphans_resource,priority:2"`
	ResourceID   string     `gorm:"type:varchar(64);not null;uniqueIndex:uq_orphans_resource,priority:3"`
	Reason       string     `gorm:"type:text"`
	Source       string     `gorm:"type:varchar(20);not null;uniqueIndex:uq_orphans_resource,priority:1"`
	CreatedAt    time.Time  `gorm:"type:timestamptz;not null"`
	ResolvedAt   *time.Time `gorm:"type:timestamptz"`
}

func (OrphanedResourceModel) TableName() string { return "orphaned_resources" }

// GormOrphanRepository implements OrphanRepository using GORM.
type GormOrphanRepository struct {
	db *gorm.DB
}

// NewGormOrphanRepository creates a new GormOrphanRepository.
func NewGormOrphanRepository(db *gorm.DB) *GormOrphanRepository {
	return &GormOrphanRepository{db: db}
}

// Record inserts the entry, ignoring duplicates of the same resource.
func (r *GormOrphanRepository) Record(ctx context.Context, o *travelagent.OrphanedResource) (bool, error) {
	model := &OrphanedResourceModel{
		ID:           o.ID(),
		TripID:       o.TripID(),
		ResourceKind: string(o.ResourceKind()),
		ResourceID:   o.ResourceID(),
		Reason:       o.Reason(),
		Source:       string(o.Source()),
		CreatedAt:    o.CreatedAt(),
		ResolvedAt:   o.ResolvedAt(),
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source"}, {Name: "resource_kind"}, {Name: "resource_id"}},
			DoNothing: true,
		}).
		Create(model)
	if result.Error != nil {
		return false, fmt.Errorf("failed to record orphaned resource: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *GormOrphanRepository) FindByID(ctx context.Context, id uuid.UUID) (*travelagent.OrphanedResource, error) {
	var model OrphanedResourceModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("OrphanedResource", id.String())
		}
		return nil, fmt.Errorf("failed to find orphaned resource: %w", err)
	}
	return toDomainOrphan(&model), nil
}

func (r *GormOrphanRepository) FindUnresolved(ctx context.Context) ([]*travelagent.OrphanedResource, error) {
	var models []OrphanedResourceModel
	if err := r.db.WithContext(ctx).
		Where("resolved_at IS NULL").
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list orphaned resources: %w", err)
	}
	out := make([]*travelagent.OrphanedResource, len(models))
	for i := range models {
		out[i] = toDomainOrphan(&models[i])
	}
	return out, nil
}

func (r *GormOrphanRepository) Update(ctx context.Context, o *travelagent.OrphanedResource) error {
	result := r.db.WithContext(ctx).
		Model(&OrphanedResourceModel{}).
		Where("id = ?", o.ID()).
		Update("resolved_at", o.ResolvedAt())
	if result.Error != nil {
		return fmt.Errorf("failed to update orphaned resource: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("OrphanedResource", o.ID().String())
	}
	return nil
}

func toDomainOrphan(m *OrphanedResourceModel) *travelagent.OrphanedResource {
	return travelagent.ReconstructOrphanedResource(
		m.ID, m.TripID,
		travelagent.ResourceKind(m.ResourceKind), m.ResourceID, m.Reason,
		travelagent.OrphanSource(m.Source),
		m.CreatedAt, m.ResolvedAt,
	)
}

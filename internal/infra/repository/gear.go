package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rideready/rideready/internal/domain"
	"github.com/rideready/rideready/internal/infra/database/models"
)

type GearRepository struct {
	db *gorm.DB
}

func NewGearRepository(db *gorm.DB) *GearRepository {
	return &GearRepository{db: db}
}

func (r *GearRepository) Create(ctx context.Context, gear domain.Gear) (domain.Gear, error) {

	record := models.GearRecord{
		ID:             uuid.New().String(),
		Name:           gear.Name,
		Description:    gear.Description,
		ImageReference: gear.ImageReference,
		Owner:          gear.Owner,
	}

	err := r.db.WithContext(ctx).Create(&record).Error
	if err != nil {
		return domain.Gear{}, err
	}

	return toDomain(record), nil
}

// List returns all records, newest first, optionally restricted to one
// owner. No pagination: the catalog is assumed to fit one page.
func (r *GearRepository) List(ctx context.Context, owner string) ([]domain.Gear, error) {

	query := r.db.WithContext(ctx).Order("c_date desc")
	if owner != "" {
		query = query.Where("owner = ?", owner)
	}

	var records []models.GearRecord
	err := query.Find(&records).Error
	if err != nil {
		return nil, err
	}

	result := make([]domain.Gear, 0, len(records))
	for _, record := range records {
		result = append(result, toDomain(record))
	}
	return result, nil
}

func (r *GearRepository) Get(ctx context.Context, id string) (domain.Gear, error) {

	var record models.GearRecord
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Gear{}, domain.NotFoundError{Resource: "gear"}
		}
		return domain.Gear{}, err
	}

	return toDomain(record), nil
}

func (r *GearRepository) Delete(ctx context.Context, id string) error {

	result := r.db.WithContext(ctx).Delete(&models.GearRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "gear"}
	}
	return nil
}

func toDomain(record models.GearRecord) domain.Gear {
	return domain.Gear{
		ID:             record.ID,
		Name:           record.Name,
		Description:    record.Description,
		ImageReference: record.ImageReference,
		Owner:          record.Owner,
		CDate:          record.CDate,
	}
}

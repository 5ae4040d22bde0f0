package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rideready/rideready/internal/domain"
	"github.com/rideready/rideready/internal/infra/database/models"
)

const riderListCacheKey = "riders:all"

type RiderRepository struct {
	db *gorm.DB
	mc *memcache.Client
}

// NewRiderRepository wires an optional memcache client; nil disables the
// rider-list cache.
func NewRiderRepository(db *gorm.DB, mc *memcache.Client) *RiderRepository {
	return &RiderRepository{db: db, mc: mc}
}

func (r *RiderRepository) Upsert(ctx context.Context, rider domain.Rider) error {

	record := models.Rider{
		ID:          rider.ID,
		DisplayName: rider.DisplayName,
		LastSeen:    time.Now(),
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "last_seen"}),
	}).Create(&record).Error
	if err != nil {
		return err
	}

	if r.mc != nil {
		r.mc.Delete(riderListCacheKey)
	}
	return nil
}

func (r *RiderRepository) List(ctx context.Context) ([]domain.Rider, error) {

	if r.mc != nil {
		if item, err := r.mc.Get(riderListCacheKey); err == nil {
			var cached []domain.Rider
			if err := json.Unmarshal(item.Value, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var records []models.Rider
	err := r.db.WithContext(ctx).Order("display_name asc").Find(&records).Error
	if err != nil {
		return nil, err
	}

	riders := make([]domain.Rider, 0, len(records))
	for _, record := range records {
		riders = append(riders, domain.Rider{
			ID:          record.ID,
			DisplayName: record.DisplayName,
			LastSeen:    record.LastSeen,
		})
	}

	if r.mc != nil {
		if value, err := json.Marshal(riders); err == nil {
			r.mc.Set(&memcache.Item{
				Key:        riderListCacheKey,
				Value:      value,
				Expiration: 60,
			})
		}
	}

	return riders, nil
}

package usecase

import (
	"context"

	rideready "github.com/rideready/rideready"
	"github.com/rideready/rideready/internal/domain"
)

type RiderUsecase struct {
	repo RiderRepository
}

func NewRiderUsecase(repo RiderRepository) *RiderUsecase {
	return &RiderUsecase{repo: repo}
}

// Observe records that an identity was seen, refreshing its display name.
func (uc *RiderUsecase) Observe(ctx context.Context, id, displayName string) error {
	if displayName == "" {
		displayName = id
	}
	return uc.repo.Upsert(ctx, domain.Rider{ID: id, DisplayName: displayName})
}

// List returns summaries for the rider selector.
func (uc *RiderUsecase) List(ctx context.Context) ([]rideready.RiderSummary, error) {
	riders, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]rideready.RiderSummary, 0, len(riders))
	for _, rider := range riders {
		summaries = append(summaries, rideready.RiderSummary{
			ID:          rider.ID,
			DisplayName: rider.DisplayName,
		})
	}
	return summaries, nil
}

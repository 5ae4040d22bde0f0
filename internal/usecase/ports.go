package usecase

import (
	"context"
	"io"
	"time"

	rideready "github.com/rideready/rideready"
	"github.com/rideready/rideready/internal/domain"
)

// GearRepository defines persistence for gear records.
type GearRepository interface {
	Create(ctx context.Context, gear domain.Gear) (domain.Gear, error)
	List(ctx context.Context, owner string) ([]domain.Gear, error)
	Get(ctx context.Context, id string) (domain.Gear, error)
	Delete(ctx context.Context, id string) error
}

// RiderRepository defines persistence for observed identities.
type RiderRepository interface {
	Upsert(ctx context.Context, rider domain.Rider) error
	List(ctx context.Context) ([]domain.Rider, error)
}

// ObjectStore defines binary object persistence under media paths.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader) (etag string, size int64, err error)
	Get(ctx context.Context, key string) (rc io.ReadCloser, size int64, err error)
	Delete(ctx context.Context, key string) error
}

// URLSigner issues and checks time-limited retrieval URLs.
type URLSigner interface {
	Sign(path string) (url string, expires time.Time)
	Verify(path, exp, sig string) error
}

// EventBus publishes catalog change events.
type EventBus interface {
	Publish(ctx context.Context, event rideready.Event) error
}

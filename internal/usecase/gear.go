package usecase

import (
	"context"
	"io"
	"log/slog"

	rideready "github.com/rideready/rideready"
	"github.com/rideready/rideready/internal/domain"
	"github.com/rideready/rideready/policy"
	"github.com/rideready/rideready/schemas"
)

type GearUsecase struct {
	repo   GearRepository
	store  ObjectStore
	signer URLSigner
	events EventBus
}

func NewGearUsecase(repo GearRepository, store ObjectStore, signer URLSigner, events EventBus) *GearUsecase {
	return &GearUsecase{
		repo:   repo,
		store:  store,
		signer: signer,
		events: events,
	}
}

// Create validates the required fields, stores the record under the
// requester's identity and announces it. The return value is the record
// with its backend-assigned identifier.
func (uc *GearUsecase) Create(ctx context.Context, requester policy.RequestContext, input rideready.GearInput) (domain.Gear, error) {
	if input.Name == "" {
		return domain.Gear{}, domain.ValidationError{Field: "name"}
	}
	if input.Description == "" {
		return domain.Gear{}, domain.ValidationError{Field: "description"}
	}

	requester.Owner = requester.Requester
	if !policy.Allows(schemas.GearPolicy, requester, schemas.ActionWrite) {
		return domain.Gear{}, domain.PermissionError{Action: "create"}
	}

	created, err := uc.repo.Create(ctx, domain.Gear{
		Name:           input.Name,
		Description:    input.Description,
		ImageReference: input.ImageReference,
		Owner:          requester.Requester,
	})
	if err != nil {
		return domain.Gear{}, err
	}

	uc.announce(ctx, rideready.Event{
		Type:  rideready.EventGearCreated,
		Owner: created.Owner,
		Gear:  toWire(created),
	})

	return created, nil
}

// List returns records, optionally restricted to one owner. Ordering is
// repository-determined.
func (uc *GearUsecase) List(ctx context.Context, requester policy.RequestContext, owner string) ([]domain.Gear, error) {
	requester.Owner = owner
	if !policy.Allows(schemas.GearPolicy, requester, schemas.ActionRead) {
		return nil, domain.PermissionError{Action: "list"}
	}
	return uc.repo.List(ctx, owner)
}

// Delete removes the record and, when it referenced a stored image, the
// object too — catalogs otherwise accumulate orphaned media.
func (uc *GearUsecase) Delete(ctx context.Context, requester policy.RequestContext, id string) error {
	gear, err := uc.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	requester.Owner = gear.Owner
	if !policy.Allows(schemas.GearPolicy, requester, schemas.ActionDelete) {
		return domain.PermissionError{Action: "delete"}
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	if gear.ImageReference != "" {
		key := rideready.ComposeMediaPath(gear.Owner, gear.ImageReference)
		if err := uc.store.Delete(ctx, key); err != nil {
			// the record is already gone; an orphaned object is not fatal
			slog.WarnContext(ctx, "failed to delete media object",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
	}

	uc.announce(ctx, rideready.Event{
		Type:  rideready.EventGearDeleted,
		Owner: gear.Owner,
		ID:    id,
	})

	return nil
}

// Upload stores object bytes under the requester's identity segment.
func (uc *GearUsecase) Upload(ctx context.Context, requester policy.RequestContext, name string, r io.Reader) (string, error) {
	if !rideready.IsValidObjectName(name) {
		return "", domain.ValidationError{Field: "name"}
	}

	key := rideready.ComposeMediaPath(requester.Requester, name)
	if !policy.AllowsStoragePath(schemas.StorageAccess, requester, key, schemas.ActionWrite) {
		return "", domain.PermissionError{Action: "upload"}
	}

	etag, _, err := uc.store.Put(ctx, key, r)
	return etag, err
}

// Sign issues a time-limited retrieval URL for a media path the requester
// may read.
func (uc *GearUsecase) Sign(ctx context.Context, requester policy.RequestContext, path string) (rideready.SignedURL, error) {
	_, name, err := rideready.ParseMediaPath(path)
	if err != nil || !rideready.IsValidObjectName(name) {
		return rideready.SignedURL{}, domain.ValidationError{Field: "path"}
	}
	if !policy.AllowsStoragePath(schemas.StorageAccess, requester, path, schemas.ActionRead) {
		return rideready.SignedURL{}, domain.PermissionError{Action: "sign"}
	}

	url, expires := uc.signer.Sign(path)
	return rideready.SignedURL{URL: url, Expires: expires}, nil
}

// Fetch verifies a presented signed URL and opens the object. The
// signature is the authorization; no session is consulted.
func (uc *GearUsecase) Fetch(ctx context.Context, path, exp, sig string) (io.ReadCloser, int64, error) {
	if err := uc.signer.Verify(path, exp, sig); err != nil {
		return nil, 0, domain.PermissionError{Action: "fetch"}
	}
	rc, size, err := uc.store.Get(ctx, path)
	if err != nil {
		return nil, 0, domain.NotFoundError{Resource: "object"}
	}
	return rc, size, nil
}

func (uc *GearUsecase) announce(ctx context.Context, event rideready.Event) {
	if uc.events == nil {
		return
	}
	if err := uc.events.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish event",
			slog.String("type", event.Type),
			slog.String("error", err.Error()),
		)
	}
}

func toWire(gear domain.Gear) *rideready.Gear {
	return &rideready.Gear{
		ID:             gear.ID,
		Name:           gear.Name,
		Description:    gear.Description,
		ImageReference: gear.ImageReference,
		Owner:          gear.Owner,
		CDate:          gear.CDate,
	}
}

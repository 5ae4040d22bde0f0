package view

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"

	rideready "github.com/rideready/rideready"
	"github.com/rideready/rideready/internal/domain"
)

// DataGateway is the surface the controller needs from a catalog
// client. *client.Client satisfies it.
type DataGateway interface {
	ListGear(ctx context.Context, owner string) ([]rideready.Gear, error)
	CreateGear(ctx context.Context, input rideready.GearInput) (rideready.Gear, error)
	DeleteGear(ctx context.Context, id string) error
	ListRiders(ctx context.Context) ([]rideready.RiderSummary, error)
	ListPublicGear(ctx context.Context) ([]rideready.Gear, error)
	Upload(ctx context.Context, name string, data io.Reader) (string, error)
	ResolveImage(ctx context.Context, name string) (string, error)
}

type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
	StateSignedOut
)

// Item is a gear record paired with its resolved image URL. ImageURL is
// empty when the record has no image or resolution failed.
type Item struct {
	Gear     rideready.Gear
	ImageURL string
}

// Controller drives the catalog screens. Each grid carries a fetch
// generation; a refresh that finishes after a newer one started is
// discarded instead of overwriting fresher data.
type Controller struct {
	gateway DataGateway

	mu            sync.Mutex
	state         State
	myGear        []Item
	riderGear     []Item
	selectedRider string
	riders        []rideready.RiderSummary
	publicGear    []rideready.Gear
	myGen         uint64
	riderGen      uint64
}

func NewController(gateway DataGateway) *Controller {
	return &Controller{
		gateway: gateway,
		state:   StateUnauthenticated,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) MyGear() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.myGear
}

func (c *Controller) RiderGear() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.riderGear
}

func (c *Controller) Riders() []rideready.RiderSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.riders
}

func (c *Controller) PublicGear() []rideready.Gear {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.publicGear
}

// OnMount loads every grid after sign-in. The public listing is
// best-effort: a failure leaves it empty rather than blocking the
// session screens.
func (c *Controller) OnMount(ctx context.Context) error {
	c.mu.Lock()
	c.state = StateAuthenticated
	c.mu.Unlock()

	riders, err := c.gateway.ListRiders(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.riders = riders
	c.mu.Unlock()

	publicGear, err := c.gateway.ListPublicGear(ctx)
	if err != nil {
		slog.WarnContext(ctx, "public gear fetch failed", slog.String("error", err.Error()))
		publicGear = nil
	}
	c.mu.Lock()
	c.publicGear = publicGear
	c.mu.Unlock()

	return c.refreshMyGear(ctx)
}

// OnSubmit uploads the image when one is given, creates the record, and
// refreshes the caller's grid. Blank required fields are rejected before
// anything reaches the gateway.
func (c *Controller) OnSubmit(ctx context.Context, name, description string, image io.Reader, imageName string) error {
	if strings.TrimSpace(name) == "" {
		return domain.ValidationError{Field: "name"}
	}
	if strings.TrimSpace(description) == "" {
		return domain.ValidationError{Field: "description"}
	}

	input := rideready.GearInput{
		Name:        name,
		Description: description,
	}

	if image != nil && imageName != "" {
		if _, err := c.gateway.Upload(ctx, imageName, image); err != nil {
			return err
		}
		input.ImageReference = imageName
	}

	if _, err := c.gateway.CreateGear(ctx, input); err != nil {
		return err
	}

	return c.refreshMyGear(ctx)
}

func (c *Controller) OnDelete(ctx context.Context, id string) error {
	if err := c.gateway.DeleteGear(ctx, id); err != nil {
		return err
	}
	return c.refreshMyGear(ctx)
}

// OnRiderChange repopulates the second grid with the chosen rider's
// records.
func (c *Controller) OnRiderChange(ctx context.Context, owner string) error {
	c.mu.Lock()
	c.selectedRider = owner
	c.riderGen++
	gen := c.riderGen
	c.mu.Unlock()

	items, err := c.fetchItems(ctx, owner)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.riderGen {
		// a newer selection already started; drop this result
		return nil
	}
	c.riderGear = items
	return nil
}

func (c *Controller) OnSignOut() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateSignedOut
	c.myGear = nil
	c.riderGear = nil
	c.riders = nil
	c.publicGear = nil
}

func (c *Controller) refreshMyGear(ctx context.Context) error {
	c.mu.Lock()
	c.myGen++
	gen := c.myGen
	c.mu.Unlock()

	items, err := c.fetchItems(ctx, "")
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.myGen {
		return nil
	}
	c.myGear = items
	return nil
}

// fetchItems lists records and resolves their image URLs concurrently,
// one goroutine per record, preserving listing order. The first
// resolution failure fails the whole fetch; a grid is never published
// partially resolved.
func (c *Controller) fetchItems(ctx context.Context, owner string) ([]Item, error) {
	gear, err := c.gateway.ListGear(ctx, owner)
	if err != nil {
		return nil, err
	}

	items := make([]Item, len(gear))
	var wg sync.WaitGroup
	var mu sync.Mutex
	var resolveErr error
	for i, g := range gear {
		items[i].Gear = g
		if g.ImageReference == "" {
			continue
		}
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			url, err := c.gateway.ResolveImage(ctx, name)
			if err != nil {
				mu.Lock()
				if resolveErr == nil {
					resolveErr = err
				}
				mu.Unlock()
				return
			}
			items[i].ImageURL = url
		}(i, g.ImageReference)
	}
	wg.Wait()

	if resolveErr != nil {
		return nil, resolveErr
	}
	return items, nil
}

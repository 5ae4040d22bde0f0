package rideready

import (
	"time"
)

// AuthMode selects how a client authenticates against the server.
type AuthMode string

const (
	// AuthModeUserPool uses a Bearer token tied to an identity.
	AuthModeUserPool AuthMode = "userPool"
	// AuthModeAPIKey uses a shared key granting public read access.
	AuthModeAPIKey AuthMode = "apiKey"
)

// Gear is one catalog entry as it travels over the wire.
// ImageReference names an object under the owner's media segment at rest;
// after resolution it is replaced with a time-limited retrieval URL.
type Gear struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	ImageReference string    `json:"imageReference,omitempty"`
	Owner          string    `json:"owner"`
	CDate          time.Time `json:"cdate"`
}

// GearInput is the caller-supplied part of a new Gear.
type GearInput struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	ImageReference string `json:"imageReference,omitempty"`
}

// RiderSummary identifies one known identity for the rider selector.
type RiderSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// SignedURL is a time-limited retrieval URL for one stored object.
type SignedURL struct {
	URL     string    `json:"url"`
	Expires time.Time `json:"expires"`
}

// Event is published whenever the catalog changes.
type Event struct {
	Type  string `json:"type"` // gear.created / gear.deleted
	Owner string `json:"owner"`
	Gear  *Gear  `json:"gear,omitempty"`
	ID    string `json:"id,omitempty"`
}

const (
	EventGearCreated = "gear.created"
	EventGearDeleted = "gear.deleted"
)

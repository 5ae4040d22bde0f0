package domain

import "time"

// Gear is one catalog record. ID is assigned on creation and immutable;
// ImageReference, once set, names exactly one object under the owner's
// media segment and is never mutated afterwards. There is no update
// operation.
type Gear struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	ImageReference string    `json:"imageReference,omitempty"`
	Owner          string    `json:"owner"`
	CDate          time.Time `json:"cdate"`
}

// Rider is one known identity, recorded when it first authenticates.
type Rider struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	LastSeen    time.Time `json:"lastSeen"`
}

// Package schemas declares the catalog's data model and access rules as
// plain configuration, consumed at startup. Nothing here executes; the
// policy engine evaluates PolicyTable rows and the storage layer honors
// StorageAccess.
package schemas

// FieldType names the type of one declared field.
type FieldType string

const (
	FieldText FieldType = "text"
)

// Field is one declared field of an entity.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
}

// RecordSchema declares one entity type's field set.
type RecordSchema struct {
	Entity string
	Fields []Field
}

// Relationship describes how a requester relates to a resource.
type Relationship string

const (
	// RelOwner matches when the requester identity owns the resource.
	RelOwner Relationship = "owner"
	// RelGroup matches when the requester belongs to the named group.
	RelGroup Relationship = "group"
	// RelAPIKey matches requests authenticated with the public api key.
	RelAPIKey Relationship = "apikey"
	// RelAny matches every authenticated requester.
	RelAny Relationship = "any"
)

// Action is one permitted operation on a resource.
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"
)

// PolicyRow grants Actions to requesters matching Relationship (and, for
// RelGroup, the named Group). Absent a matching row the default is deny.
type PolicyRow struct {
	Relationship Relationship
	Group        string
	Actions      []Action
}

// StorageRule scopes object access under a path template whose {identity}
// segment must equal the requester's identity. Disabled rules are kept for
// reference but never evaluated.
type StorageRule struct {
	PathTemplate string
	Row          PolicyRow
	Enabled      bool
}

// GearSchema is the single entity this catalog stores.
var GearSchema = RecordSchema{
	Entity: "Gear",
	Fields: []Field{
		{Name: "name", Type: FieldText, Required: true},
		{Name: "description", Type: FieldText, Required: true},
		{Name: "imageReference", Type: FieldText},
	},
}

// AdminGroup members may fully access all records.
const AdminGroup = "Admin"

// GearPolicy is the authorization table for Gear records. Any signed-in
// rider may browse the catalog (the rider selector depends on it); only the
// owner and Admins may change it, and the public api key is read-only.
var GearPolicy = []PolicyRow{
	{Relationship: RelOwner, Actions: []Action{ActionRead, ActionWrite, ActionDelete}},
	{Relationship: RelGroup, Group: AdminGroup, Actions: []Action{ActionRead, ActionWrite, ActionDelete}},
	{Relationship: RelAny, Actions: []Action{ActionRead}},
	{Relationship: RelAPIKey, Actions: []Action{ActionRead}},
}

// StorageAccess scopes media objects to the identity segment that owns them.
var StorageAccess = []StorageRule{
	{
		PathTemplate: "media/{identity}/*",
		Row:          PolicyRow{Relationship: RelOwner, Actions: []Action{ActionRead, ActionWrite, ActionDelete}},
		Enabled:      true,
	},
	{
		// Broader read for every rider; off until the catalog goes public.
		PathTemplate: "media/{identity}/*",
		Row:          PolicyRow{Relationship: RelAny, Actions: []Action{ActionRead}},
		Enabled:      false,
	},
}

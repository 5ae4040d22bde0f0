package rideready

import (
	"fmt"
	"strings"
)

// MediaPrefix is the root segment of all stored media paths.
const MediaPrefix = "media"

// ComposeMediaPath builds the storage path for an object owned by identity.
func ComposeMediaPath(identity, name string) string {
	return MediaPrefix + "/" + identity + "/" + name
}

// ParseMediaPath splits a storage path into its identity segment and object
// name. Callers validate the name with IsValidObjectName.
func ParseMediaPath(path string) (identity string, name string, err error) {
	parts := strings.SplitN(path, "/", 3)
	if len(parts) != 3 || parts[0] != MediaPrefix {
		return "", "", fmt.Errorf("invalid media path: %s", path)
	}
	if parts[1] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("invalid media path: %s", path)
	}
	return parts[1], parts[2], nil
}

// IsValidObjectName rejects names that could escape the owner's segment
// or fail to route as a single path element.
func IsValidObjectName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.Contains(name, "/")
}

package policy

// Conclusion is the outcome of evaluating policy rows for one action.
type Conclusion int

const (
	UNSET Conclusion = iota
	ALLOW
	DENY
)

// Or combines two conclusions. A conflict between ALLOW and DENY resolves
// to DENY: an explicit denial always wins.
func (c Conclusion) Or(other Conclusion) Conclusion {
	if c == UNSET {
		return other
	}
	if other == UNSET {
		return c
	}
	if c == DENY || other == DENY {
		return DENY
	}
	return ALLOW
}

// RequestContext carries everything the engine needs about one request.
type RequestContext struct {
	// Requester is the authenticated identity, empty for api-key requests.
	Requester string
	// Groups are the requester's group memberships.
	Groups []string
	// Owner is the identity owning the resource under evaluation.
	Owner string
	// APIKey is true when the request authenticated with the public key.
	APIKey bool
}

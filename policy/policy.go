// Package policy evaluates the declarative authorization tables from the
// schemas package.
package policy

import (
	"slices"
	"strings"

	"github.com/rideready/rideready/schemas"
)

// Evaluate walks the policy rows and combines the conclusion of every row
// whose relationship matches the request context and whose action list
// contains the action.
func Evaluate(rows []schemas.PolicyRow, ctx RequestContext, action schemas.Action) Conclusion {
	conclusion := UNSET
	for _, row := range rows {
		if !matches(row, ctx) {
			continue
		}
		if slices.Contains(row.Actions, action) {
			conclusion = conclusion.Or(ALLOW)
		}
	}
	return conclusion
}

// Summarize resolves a conclusion against the table default. The catalog's
// tables default to deny.
func Summarize(c Conclusion, defaultAllow bool) bool {
	switch c {
	case ALLOW:
		return true
	case DENY:
		return false
	default:
		return defaultAllow
	}
}

// Allows is the common case: evaluate with a default-deny summary.
func Allows(rows []schemas.PolicyRow, ctx RequestContext, action schemas.Action) bool {
	return Summarize(Evaluate(rows, ctx, action), false)
}

// AllowsStoragePath checks the enabled storage rules for a concrete object
// path. The {identity} segment of the template binds the resource owner.
func AllowsStoragePath(rules []schemas.StorageRule, ctx RequestContext, path string, action schemas.Action) bool {
	conclusion := UNSET
	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		owner, ok := bindIdentity(rule.PathTemplate, path)
		if !ok {
			continue
		}
		rowCtx := ctx
		rowCtx.Owner = owner
		if !matches(rule.Row, rowCtx) {
			continue
		}
		if slices.Contains(rule.Row.Actions, action) {
			conclusion = conclusion.Or(ALLOW)
		}
	}
	return Summarize(conclusion, false)
}

func matches(row schemas.PolicyRow, ctx RequestContext) bool {
	switch row.Relationship {
	case schemas.RelOwner:
		return ctx.Requester != "" && ctx.Requester == ctx.Owner
	case schemas.RelGroup:
		return slices.Contains(ctx.Groups, row.Group)
	case schemas.RelAPIKey:
		return ctx.APIKey
	case schemas.RelAny:
		return ctx.Requester != ""
	default:
		return false
	}
}

// bindIdentity matches path against a template of the form
// "prefix/{identity}/*" and returns the bound identity segment.
func bindIdentity(template, path string) (string, bool) {
	tParts := strings.Split(template, "/")
	pParts := strings.SplitN(path, "/", len(tParts))
	if len(pParts) != len(tParts) {
		return "", false
	}
	identity := ""
	for i, tp := range tParts {
		switch tp {
		case "{identity}":
			if pParts[i] == "" {
				return "", false
			}
			identity = pParts[i]
		case "*":
			if pParts[i] == "" {
				return "", false
			}
		default:
			if tp != pParts[i] {
				return "", false
			}
		}
	}
	return identity, identity != ""
}

// Package policy decides who may touch a home and everything billed under it.
// A Gate holds one Policy per resource type; handlers call Authorize with
// the signed-in user id.
package policy

import (
	"context"
	"errors"
	"net/http"
)

// Action describes the kind of operation a user wants to perform.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"
)

// ActionFor maps an HTTP method onto an action.
func ActionFor(method string) Action {
	switch method {
	case http.MethodGet, http.MethodHead:
		return ActionView
	case http.MethodDelete:
		return ActionDelete
	default:
		return ActionUpdate
	}
}

// Sentinel errors returned by Gate.Authorize.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNoPolicyDefined = errors.New("no policy defined for resource")
)

// Policy defines authorization rules for a resource type. For list and
// create, resource may be nil.
type Policy interface {
	Can(ctx context.Context, userID uint, action Action, resource any) bool
}

// Gate is the central authorization checkpoint.
type Gate struct {
	policies map[string]Policy
}

func NewGate() *Gate {
	return &Gate{policies: make(map[string]Policy)}
}

// Register adds a policy for a resource type, replacing any previous one.
func (g *Gate) Register(resourceType string, p Policy) {
	g.policies[resourceType] = p
}

// Authorize returns ErrUnauthorized for an anonymous user or a denied
// action, and ErrNoPolicyDefined when resourceType has no policy.
func (g *Gate) Authorize(ctx context.Context, userID uint, action Action, resourceType string, resource any) error {
	if userID == 0 {
		return ErrUnauthorized
	}
	p, ok := g.policies[resourceType]
	if !ok {
		return ErrNoPolicyDefined
	}
	if !p.Can(ctx, userID, action, resource) {
		return ErrUnauthorized
	}
	return nil
}

func (g *Gate) Can(ctx context.Context, userID uint, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, userID, action, resourceType, resource) == nil
}

// NewHomeGate returns the gate used by the application: homes are
// reachable by their owner only.
func NewHomeGate() *Gate {
	g := NewGate()
	g.Register(ResourceHome, NewOwnershipPolicy())
	return g
}

// ResourceHome is the resource type name of homes.
const ResourceHome = "home"

package policy

import "context"

// Ownable is implemented by resources that belong to one user.
type Ownable interface {
	GetUserID() uint
}

// OwnershipPolicy allows a user to act on resources they own.
type OwnershipPolicy struct{}

func NewOwnershipPolicy() *OwnershipPolicy {
	return &OwnershipPolicy{}
}

// Can reports whether userID owns resource. A nil resource (list, create)
// is allowed; a resource that is not Ownable is denied.
func (p *OwnershipPolicy) Can(_ context.Context, userID uint, _ Action, resource any) bool {
	if resource == nil {
		return true
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		return false
	}
	return ownable.GetUserID() == userID
}

package auth

import "context"

// Principal kinds.
const (
	KindParent = "parent"
	KindChild  = "child"
)

type contextKey struct{}

// AuthContext identifies the caller of a request. For parents HouseholdID
// is resolved from their membership; for children it comes from the token.
type AuthContext struct {
	Kind        string
	UserID      string
	ChildID     string
	HouseholdID string
	Role        string
}

func WithAuth(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, contextKey{}, ac)
}

func FromContext(ctx context.Context) (AuthContext, bool) {
	ac, ok := ctx.Value(contextKey{}).(AuthContext)
	return ac, ok
}

func HouseholdID(ctx context.Context) string {
	ac, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return ac.HouseholdID
}

func UserID(ctx context.Context) string {
	ac, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return ac.UserID
}

func ChildID(ctx context.Context) string {
	ac, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return ac.ChildID
}

func IsParent(ctx context.Context) bool {
	ac, ok := FromContext(ctx)
	return ok && ac.Kind == KindParent
}

func IsChild(ctx context.Context) bool {
	ac, ok := FromContext(ctx)
	return ok && ac.Kind == KindChild
}

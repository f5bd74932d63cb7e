package authz

import (
	"context"
	"net/http"

	"github.com/formflow/formflow-api/internal/models"
)

// Principal is the authenticated actor performing a request. The core never
// issues or validates credentials; it consumes the identity the JWT
// middleware decoded.
type Principal struct {
	ID          int64
	DisplayName string
	Email       string
	Role        models.UserRole
}

type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal stores the caller identity on the context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	if !ok || p.ID == 0 {
		return Principal{}, false
	}
	return p, true
}

func PrincipalFromRequest(r *http.Request) (Principal, bool) {
	return PrincipalFromContext(r.Context())
}

package authz

import "net/http"

// RequireCapability returns a middleware that rejects requests whose
// principal lacks the capability. Handlers behind it can still apply
// finer-grained ownership checks.
func RequireCapability(cap Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromRequest(r)
			if !ok || !Has(p.Role, cap) {
				http.Error(w, "insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

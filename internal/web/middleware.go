package web

import (
	"net/http"
	"strings"
)

const staffCookie = "raido_staff"

// RequireStaff returns middleware gating every portal operation.
// If enabled is false, all requests pass through (local dev mode).
// Otherwise the request must carry the staff token, either as a
// "Authorization: Bearer <token>" header or as the staff cookie set by
// the login form. Browser requests are redirected to the login page;
// non-browser requests get a plain 401.
func RequireStaff(enabled bool, token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}
			auth := r.Header.Get("Authorization")
			if strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == token {
				next.ServeHTTP(w, r)
				return
			}
			if c, err := r.Cookie(staffCookie); err == nil && c.Value == token {
				next.ServeHTTP(w, r)
				return
			}
			if strings.Contains(r.Header.Get("Accept"), "text/html") {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		})
	}
}

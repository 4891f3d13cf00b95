package authtransport

import (
	"context"
	"net/http"
	"strings"

	kitjwt "github.com/go-kit/kit/auth/jwt"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/securecookie"
)

// SessionCookieName is the cookie the login handler sets as an alternative
// credential channel for browser callers.
const SessionCookieName = "todoevo_session"

// TokenToContext extracts the bearer token from the Authorization header or,
// failing that, from the encoded session cookie, and places the raw token
// into the context for the authorize middleware.
func TokenToContext(codec *securecookie.SecureCookie) httptransport.RequestFunc {
	return func(ctx context.Context, r *http.Request) context.Context {
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			return context.WithValue(ctx, kitjwt.JWTContextKey, strings.TrimPrefix(auth, "Bearer "))
		}

		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			return ctx
		}

		var token string
		if err := codec.Decode(SessionCookieName, cookie.Value, &token); err != nil {
			return ctx
		}

		return context.WithValue(ctx, kitjwt.JWTContextKey, token)
	}
}

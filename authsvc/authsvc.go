package authsvc

import (
	"errors"
	"os"
)

var (
	AppEnv         = getEnv("APP_ENV", "")
	AccessSecret   = getEnv("ACCESS_SECRET", "access-secret")
	CookieHashKey  = getEnv("COOKIE_HASH_KEY", "very-secret")
	CookieBlockKey = getEnv("COOKIE_BLOCK_KEY", "a-lots-of-secret")
)

func getEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = fallback
	}
	return value
}

type contextKey string

// OwnerIDContextKey carries the gate-verified owner id from the authorize
// middleware to the endpoints. Endpoints must read the owner from here, never
// from the request payload.
const OwnerIDContextKey contextKey = "OwnerID"

// ErrAuthentication is the single error returned for every credential
// failure: unknown email, wrong password, malformed token, bad signature,
// expired token, or a token issued to a different owner than the one the
// request targets. Callers cannot tell the causes apart.
var ErrAuthentication = errors.New("invalid credentials")

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrTokenContextMissing = errors.New("token was not passed through the context")
	ErrOwnerContextMissing = errors.New("owner ID was not passed through the context")

	// ErrOwnerCarrierMissing means a request type reached the authorize
	// middleware without implementing OwnerCarrier. It always indicates
	// programmer error.
	ErrOwnerCarrierMissing = errors.New("request does not carry a target owner (programmer error)")
)

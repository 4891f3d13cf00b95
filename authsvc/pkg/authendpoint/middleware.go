package authendpoint

import (
	"context"
	"time"

	kitjwt "github.com/go-kit/kit/auth/jwt"
	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/todoevo/backend/authsvc"
	"github.com/todoevo/backend/authsvc/pkg/authservice"
)

// LoggingMiddleware logs endpoint-level failures and duration.
func LoggingMiddleware(logger log.Logger) endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			defer func(begin time.Time) {
				logger.Log("transport_error", err, "took", time.Since(begin))
			}(time.Now())
			return next(ctx, request)
		}
	}
}

// OwnerCarrier is implemented by request types that target a specific owner,
// usually decoded from the URL path.
type OwnerCarrier interface {
	Owner() uint64
}

// AuthorizeMiddleware is the single enforcement point in front of every
// owner-scoped endpoint. It pulls the raw bearer token from the context,
// asks the gate to verify it against the owner the request claims, and
// injects the verified owner id into the context on success.
func AuthorizeMiddleware(gate authservice.Service) endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			token, ok := ctx.Value(kitjwt.JWTContextKey).(string)
			if !ok || token == "" {
				return nil, authsvc.ErrAuthentication
			}

			carrier, ok := request.(OwnerCarrier)
			if !ok {
				return nil, authsvc.ErrOwnerCarrierMissing
			}

			ownerID, err := gate.Authorize(ctx, token, carrier.Owner())
			if err != nil {
				return nil, err
			}

			ctx = context.WithValue(ctx, authsvc.OwnerIDContextKey, ownerID)

			return next(ctx, request)
		}
	}
}

// AuthenticateMiddleware verifies the bearer token and injects its subject
// into the context. Used by endpoints whose target owner is the token subject
// itself rather than a path parameter.
func AuthenticateMiddleware(tokenizer authservice.Tokenizer) endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (response interface{}, err error) {
			token, ok := ctx.Value(kitjwt.JWTContextKey).(string)
			if !ok || token == "" {
				return nil, authsvc.ErrAuthentication
			}

			claims, err := tokenizer.Verify(token)
			if err != nil {
				return nil, authsvc.ErrAuthentication
			}

			ctx = context.WithValue(ctx, authsvc.OwnerIDContextKey, claims.UserID)

			return next(ctx, request)
		}
	}
}

package userendpoint

import (
	"context"
	"time"

	"github.com/go-kit/kit/circuitbreaker"
	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/ratelimit"
	"github.com/sony/gobreaker"
	"github.com/todoevo/backend/authsvc/pkg/authendpoint"
	"github.com/todoevo/backend/authsvc/pkg/authservice"
	"github.com/todoevo/backend/usersvc"
	"github.com/todoevo/backend/usersvc/pkg/userservice"
	"golang.org/x/time/rate"
)

type Set struct {
	UserEndpoint       endpoint.Endpoint
	UpdateNameEndpoint endpoint.Endpoint
}

func New(svc userservice.Service, gate authservice.Service, logger log.Logger) Set {
	wrap := func(name string, e endpoint.Endpoint) endpoint.Endpoint {
		e = authendpoint.AuthorizeMiddleware(gate)(e)
		e = ratelimit.NewErroringLimiter(rate.NewLimiter(rate.Every(time.Minute/100), 100))(e)
		e = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{}))(e)
		e = authendpoint.LoggingMiddleware(log.With(logger, "method", name))(e)
		return e
	}

	return Set{
		UserEndpoint:       wrap("User", MakeUserEndpoint(svc)),
		UpdateNameEndpoint: wrap("UpdateName", MakeUpdateNameEndpoint(svc)),
	}
}

func (s Set) User(ctx context.Context, id uint64) (usersvc.User, error) {
	resp, err := s.UserEndpoint(ctx, UserRequest{UserID: id})
	if err != nil {
		return usersvc.User{}, err
	}
	response := resp.(UserResponse)
	return response.User, response.Err
}

func (s Set) UpdateName(ctx context.Context, id uint64, name string) (usersvc.User, error) {
	resp, err := s.UpdateNameEndpoint(ctx, UpdateNameRequest{UserID: id, Name: name})
	if err != nil {
		return usersvc.User{}, err
	}
	response := resp.(UpdateNameResponse)
	return response.User, response.Err
}

func MakeUserEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		ownerID, err := authendpoint.VerifiedOwner(ctx)
		if err != nil {
			return UserResponse{Err: err}, nil
		}

		_ = request.(UserRequest)
		u, err := s.User(ctx, ownerID)
		return UserResponse{User: u, Err: err}, nil
	}
}

func MakeUpdateNameEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		ownerID, err := authendpoint.VerifiedOwner(ctx)
		if err != nil {
			return UpdateNameResponse{Err: err}, nil
		}

		req := request.(UpdateNameRequest)
		u, err := s.UpdateName(ctx, ownerID, req.Name)
		return UpdateNameResponse{User: u, Err: err}, nil
	}
}

var (
	_ endpoint.Failer = UserResponse{}
	_ endpoint.Failer = UpdateNameResponse{}

	_ authendpoint.OwnerCarrier = UserRequest{}
	_ authendpoint.OwnerCarrier = UpdateNameRequest{}
)

type UserRequest struct {
	UserID uint64 `json:"-"`
}

func (r UserRequest) Owner() uint64 { return r.UserID }

type UserResponse struct {
	User usersvc.User `json:"user"`
	Err  error        `json:"-"`
}

func (r UserResponse) Failed() error { return r.Err }

type UpdateNameRequest struct {
	UserID uint64 `json:"-"`
	Name   string `json:"name"`
}

func (r UpdateNameRequest) Owner() uint64 { return r.UserID }

type UpdateNameResponse struct {
	User usersvc.User `json:"user"`
	Err  error        `json:"-"`
}

func (r UpdateNameResponse) Failed() error { return r.Err }

package authendpoint

import (
	"context"
	"time"

	"github.com/go-kit/kit/circuitbreaker"
	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/ratelimit"
	"github.com/sony/gobreaker"
	"github.com/todoevo/backend/authsvc"
	"github.com/todoevo/backend/authsvc/pkg/authservice"
	"github.com/todoevo/backend/usersvc"
	"golang.org/x/time/rate"
)

type Set struct {
	RegisterEndpoint       endpoint.Endpoint
	LoginEndpoint          endpoint.Endpoint
	ChangePasswordEndpoint endpoint.Endpoint
}

func New(svc authservice.Service, tokenizer authservice.Tokenizer, logger log.Logger) Set {
	var registerEndpoint endpoint.Endpoint
	{
		registerEndpoint = MakeRegisterEndpoint(svc)
		registerEndpoint = ratelimit.NewErroringLimiter(rate.NewLimiter(rate.Every(time.Minute/100), 100))(registerEndpoint)
		registerEndpoint = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{}))(registerEndpoint)
		registerEndpoint = LoggingMiddleware(log.With(logger, "method", "Register"))(registerEndpoint)
	}

	var loginEndpoint endpoint.Endpoint
	{
		loginEndpoint = MakeLoginEndpoint(svc)
		loginEndpoint = ratelimit.NewErroringLimiter(rate.NewLimiter(rate.Every(time.Minute/100), 100))(loginEndpoint)
		loginEndpoint = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{}))(loginEndpoint)
		loginEndpoint = LoggingMiddleware(log.With(logger, "method", "Login"))(loginEndpoint)
	}

	var changePasswordEndpoint endpoint.Endpoint
	{
		changePasswordEndpoint = MakeChangePasswordEndpoint(svc)
		changePasswordEndpoint = AuthenticateMiddleware(tokenizer)(changePasswordEndpoint)
		changePasswordEndpoint = ratelimit.NewErroringLimiter(rate.NewLimiter(rate.Every(time.Minute/100), 100))(changePasswordEndpoint)
		changePasswordEndpoint = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{}))(changePasswordEndpoint)
		changePasswordEndpoint = LoggingMiddleware(log.With(logger, "method", "ChangePassword"))(changePasswordEndpoint)
	}

	return Set{
		RegisterEndpoint:       registerEndpoint,
		LoginEndpoint:          loginEndpoint,
		ChangePasswordEndpoint: changePasswordEndpoint,
	}
}

func (s Set) Register(ctx context.Context, email, password, name string) (usersvc.User, error) {
	resp, err := s.RegisterEndpoint(ctx, RegisterRequest{Email: email, Password: password, Name: name})
	if err != nil {
		return usersvc.User{}, err
	}
	response := resp.(RegisterResponse)
	return response.User, response.Err
}

func (s Set) Login(ctx context.Context, email, password string) (string, error) {
	resp, err := s.LoginEndpoint(ctx, LoginRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}
	response := resp.(LoginResponse)
	return response.Token, response.Err
}

func (s Set) ChangePassword(ctx context.Context, current, next string) error {
	resp, err := s.ChangePasswordEndpoint(ctx, ChangePasswordRequest{Current: current, Next: next})
	if err != nil {
		return err
	}
	response := resp.(ChangePasswordResponse)
	return response.Err
}

func MakeRegisterEndpoint(s authservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(RegisterRequest)
		u, err := s.Register(ctx, req.Email, req.Password, req.Name)
		return RegisterResponse{User: u, Err: err}, nil
	}
}

func MakeLoginEndpoint(s authservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(LoginRequest)
		t, err := s.Login(ctx, req.Email, req.Password)
		return LoginResponse{Token: t, Err: err}, nil
	}
}

func MakeChangePasswordEndpoint(s authservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		ownerID, err := VerifiedOwner(ctx)
		if err != nil {
			return ChangePasswordResponse{Err: err}, nil
		}

		req := request.(ChangePasswordRequest)
		err = s.ChangePassword(ctx, ownerID, req.Current, req.Next)
		return ChangePasswordResponse{Err: err}, nil
	}
}

// VerifiedOwner returns the owner id the gate middleware placed into the
// context after token verification.
func VerifiedOwner(ctx context.Context) (uint64, error) {
	id, ok := ctx.Value(authsvc.OwnerIDContextKey).(uint64)
	if !ok || id == 0 {
		return 0, authsvc.ErrOwnerContextMissing
	}
	return id, nil
}

var (
	_ endpoint.Failer = RegisterResponse{}
	_ endpoint.Failer = LoginResponse{}
	_ endpoint.Failer = ChangePasswordResponse{}
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type RegisterResponse struct {
	User usersvc.User `json:"user"`
	Err  error        `json:"-"`
}

func (r RegisterResponse) Failed() error { return r.Err }

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Err   error  `json:"-"`
}

func (r LoginResponse) Failed() error { return r.Err }

type ChangePasswordRequest struct {
	Current string `json:"current"`
	Next    string `json:"next"`
}

type ChangePasswordResponse struct {
	Err error `json:"-"`
}

func (r ChangePasswordResponse) Failed() error { return r.Err }

package userservice

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics"
	"github.com/todoevo/backend/usersvc"
	"github.com/todoevo/backend/validate"
)

type Service interface {
	User(ctx context.Context, id uint64) (usersvc.User, error)
	UpdateName(ctx context.Context, id uint64, name string) (usersvc.User, error)
	IsExists(ctx context.Context, id uint64) (bool, error)
}

func New(users usersvc.UserRepository, logger log.Logger, counter metrics.Counter, latency metrics.Histogram) Service {
	var svc Service
	{
		svc = NewBasicService(users)
		svc = LoggingMiddleware(logger)(svc)
		svc = InstrumentingMiddleware(counter, latency)(svc)
	}
	return svc
}

func NewBasicService(users usersvc.UserRepository) Service {
	return basicService{users: users}
}

type basicService struct {
	users usersvc.UserRepository
}

func (s basicService) User(ctx context.Context, id uint64) (usersvc.User, error) {
	if id == 0 {
		return usersvc.User{}, usersvc.ErrInvalidArgument
	}
	return s.users.Find(ctx, id)
}

func (s basicService) UpdateName(ctx context.Context, id uint64, name string) (usersvc.User, error) {
	if id == 0 {
		return usersvc.User{}, usersvc.ErrInvalidArgument
	}

	name, err := validate.Name(name)
	if err != nil {
		return usersvc.User{}, err
	}

	user, err := s.users.Find(ctx, id)
	if err != nil {
		return usersvc.User{}, err
	}

	user.Name = name
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, &user); err != nil {
		return usersvc.User{}, err
	}

	return user, nil
}

func (s basicService) IsExists(ctx context.Context, id uint64) (bool, error) {
	if id == 0 {
		return false, usersvc.ErrInvalidArgument
	}
	return s.users.IsExists(ctx, id)
}

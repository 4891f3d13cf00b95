package authservice

import (
	"context"
	"errors"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics"
	"github.com/todoevo/backend/authsvc"
	"github.com/todoevo/backend/usersvc"
	"github.com/todoevo/backend/validate"
)

type Service interface {
	Register(ctx context.Context, email, password, name string) (usersvc.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Authorize(ctx context.Context, token string, ownerID uint64) (uint64, error)
	ChangePassword(ctx context.Context, userID uint64, current, next string) error
}

func New(users usersvc.UserRepository, t Tokenizer, logger log.Logger, counter metrics.Counter, latency metrics.Histogram) Service {
	var svc Service
	{
		svc = NewBasicService(users, t)
		svc = LoggingMiddleware(logger)(svc)
		svc = InstrumentingMiddleware(counter, latency)(svc)
	}
	return svc
}

type basicService struct {
	users     usersvc.UserRepository
	tokenizer Tokenizer
}

func NewBasicService(users usersvc.UserRepository, t Tokenizer) Service {
	return &basicService{users: users, tokenizer: t}
}

func (s *basicService) Register(ctx context.Context, email, password, name string) (usersvc.User, error) {
	email, err := validate.Email(email)
	if err != nil {
		return usersvc.User{}, err
	}

	name, err = validate.Name(name)
	if err != nil {
		return usersvc.User{}, err
	}

	if err := validate.Password(password); err != nil {
		return usersvc.User{}, err
	}

	if _, err := s.users.ByEmail(ctx, email); err == nil {
		return usersvc.User{}, usersvc.ErrEmailTaken
	} else if !errors.Is(err, usersvc.ErrUserNotFound) {
		return usersvc.User{}, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return usersvc.User{}, err
	}

	user := usersvc.User{Email: email, Name: name, PasswordHash: hash}
	if err := s.users.Create(ctx, &user); err != nil {
		return usersvc.User{}, err
	}

	return user, nil
}

func (s *basicService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, usersvc.ErrUserNotFound) {
			// Unknown email and wrong password must be the same failure.
			return "", authsvc.ErrAuthentication
		}
		return "", err
	}

	if !verifyPassword(password, user.PasswordHash) {
		return "", authsvc.ErrAuthentication
	}

	return s.tokenizer.Generate(user)
}

func (s *basicService) Authorize(_ context.Context, token string, ownerID uint64) (uint64, error) {
	claims, err := s.tokenizer.Verify(token)
	if err != nil {
		return 0, authsvc.ErrAuthentication
	}

	if claims.UserID != ownerID {
		// A token that is valid for a different owner is reported exactly
		// like an invalid token.
		return 0, authsvc.ErrAuthentication
	}

	return claims.UserID, nil
}

func (s *basicService) ChangePassword(ctx context.Context, userID uint64, current, next string) error {
	user, err := s.users.Find(ctx, userID)
	if err != nil {
		if errors.Is(err, usersvc.ErrUserNotFound) {
			return authsvc.ErrAuthentication
		}
		return err
	}

	if !verifyPassword(current, user.PasswordHash) {
		return authsvc.ErrAuthentication
	}

	if err := validate.Password(next); err != nil {
		return err
	}

	hash, err := hashPassword(next)
	if err != nil {
		return err
	}

	user.PasswordHash = hash
	user.UpdatedAt = time.Now().UTC()

	return s.users.Update(ctx, &user)
}

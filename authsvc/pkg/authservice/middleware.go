package authservice

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics"
	"github.com/todoevo/backend/usersvc"
)

type Middleware func(Service) Service

func LoggingMiddleware(logger log.Logger) Middleware {
	return func(next Service) Service {
		return loggingMiddleware{logger, next}
	}
}

type loggingMiddleware struct {
	logger log.Logger
	next   Service
}

// Passwords, hashes, and raw tokens are never logged.

func (mw loggingMiddleware) Register(ctx context.Context, email, password, name string) (u usersvc.User, err error) {
	defer func() {
		mw.logger.Log("method", "Register", "email", email, "id", u.ID, "err", err)
	}()
	return mw.next.Register(ctx, email, password, name)
}

func (mw loggingMiddleware) Login(ctx context.Context, email, password string) (token string, err error) {
	defer func() {
		mw.logger.Log("method", "Login", "email", email, "err", err)
	}()
	return mw.next.Login(ctx, email, password)
}

func (mw loggingMiddleware) Authorize(ctx context.Context, token string, ownerID uint64) (id uint64, err error) {
	defer func() {
		mw.logger.Log("method", "Authorize", "owner_id", ownerID, "err", err)
	}()
	return mw.next.Authorize(ctx, token, ownerID)
}

func (mw loggingMiddleware) ChangePassword(ctx context.Context, userID uint64, current, next string) (err error) {
	defer func() {
		mw.logger.Log("method", "ChangePassword", "user_id", userID, "err", err)
	}()
	return mw.next.ChangePassword(ctx, userID, current, next)
}

func InstrumentingMiddleware(counter metrics.Counter, latency metrics.Histogram) Middleware {
	return func(next Service) Service {
		return instrumentingMiddleware{counter, latency, next}
	}
}

type instrumentingMiddleware struct {
	requestCount   metrics.Counter
	requestLatency metrics.Histogram
	next           Service
}

func (mw instrumentingMiddleware) Register(ctx context.Context, email, password, name string) (u usersvc.User, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "register").Add(1)
		mw.requestLatency.With("method", "register").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.Register(ctx, email, password, name)
}

func (mw instrumentingMiddleware) Login(ctx context.Context, email, password string) (token string, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "login").Add(1)
		mw.requestLatency.With("method", "login").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.Login(ctx, email, password)
}

func (mw instrumentingMiddleware) Authorize(ctx context.Context, token string, ownerID uint64) (id uint64, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "authorize").Add(1)
		mw.requestLatency.With("method", "authorize").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.Authorize(ctx, token, ownerID)
}

func (mw instrumentingMiddleware) ChangePassword(ctx context.Context, userID uint64, current, next string) (err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "change_password").Add(1)
		mw.requestLatency.With("method", "change_password").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.ChangePassword(ctx, userID, current, next)
}

package userservice

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

func (mw loggingMiddleware) User(ctx context.Context, id uint64) (u usersvc.User, err error) {
	defer func() {
		mw.logger.Log("method", "User", "id", id, "err", err)
	}()
	return mw.next.User(ctx, id)
}

func (mw loggingMiddleware) UpdateName(ctx context.Context, id uint64, name string) (u usersvc.User, err error) {
	defer func() {
		mw.logger.Log("method", "UpdateName", "id", id, "err", err)
	}()
	return mw.next.UpdateName(ctx, id, name)
}

func (mw loggingMiddleware) IsExists(ctx context.Context, id uint64) (v bool, err error) {
	defer func() {
		mw.logger.Log("method", "IsExists", "id", id, "v", v, "err", err)
	}()
	return mw.next.IsExists(ctx, id)
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

func (mw instrumentingMiddleware) User(ctx context.Context, id uint64) (u usersvc.User, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "user").Add(1)
		mw.requestLatency.With("method", "user").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.User(ctx, id)
}

func (mw instrumentingMiddleware) UpdateName(ctx context.Context, id uint64, name string) (u usersvc.User, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "update_name").Add(1)
		mw.requestLatency.With("method", "update_name").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.UpdateName(ctx, id, name)
}

func (mw instrumentingMiddleware) IsExists(ctx context.Context, id uint64) (v bool, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "is_exists").Add(1)
		mw.requestLatency.With("method", "is_exists").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.IsExists(ctx, id)
}

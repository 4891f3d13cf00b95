package taskservice

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics"
	"github.com/todoevo/backend/tasksvc"
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

// The ownership predicate already collapsed foreign-owned and missing tasks
// into ErrTaskNotFound by the time an error reaches this layer, so logging
// it cannot disclose another owner's rows.

func (mw loggingMiddleware) CreateTask(ctx context.Context, ownerID uint64, title, description string) (t tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log(
			"method", "CreateTask",
			"owner_id", ownerID,
			"task_id", t.ID,
			"err", err,
		)
	}()
	return mw.next.CreateTask(ctx, ownerID, title, description)
}

func (mw loggingMiddleware) Tasks(ctx context.Context, ownerID uint64) (t []tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log(
			"method", "Tasks",
			"owner_id", ownerID,
			"count", len(t),
			"err", err,
		)
	}()
	return mw.next.Tasks(ctx, ownerID)
}

func (mw loggingMiddleware) Task(ctx context.Context, ownerID, taskID uint64) (t tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log(
			"method", "Task",
			"owner_id", ownerID,
			"task_id", taskID,
			"err", err,
		)
	}()
	return mw.next.Task(ctx, ownerID, taskID)
}

func (mw loggingMiddleware) UpdateTask(ctx context.Context, ownerID, taskID uint64, title, description *string, completed *bool) (t tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log(
			"method", "UpdateTask",
			"owner_id", ownerID,
			"task_id", taskID,
			"err", err,
		)
	}()
	return mw.next.UpdateTask(ctx, ownerID, taskID, title, description, completed)
}

func (mw loggingMiddleware) ToggleTask(ctx context.Context, ownerID, taskID uint64) (t tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log(
			"method", "ToggleTask",
			"owner_id", ownerID,
			"task_id", taskID,
			"completed", t.Completed,
			"err", err,
		)
	}()
	return mw.next.ToggleTask(ctx, ownerID, taskID)
}

func (mw loggingMiddleware) DeleteTask(ctx context.Context, ownerID, taskID uint64) (err error) {
	defer func() {
		mw.logger.Log(
			"method", "DeleteTask",
			"owner_id", ownerID,
			"task_id", taskID,
			"err", err,
		)
	}()
	return mw.next.DeleteTask(ctx, ownerID, taskID)
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

func (mw instrumentingMiddleware) CreateTask(ctx context.Context, ownerID uint64, title, description string) (t tasksvc.Task, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "create_task").Add(1)
		mw.requestLatency.With("method", "create_task").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.CreateTask(ctx, ownerID, title, description)
}

func (mw instrumentingMiddleware) Tasks(ctx context.Context, ownerID uint64) (t []tasksvc.Task, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "tasks").Add(1)
		mw.requestLatency.With("method", "tasks").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.Tasks(ctx, ownerID)
}

func (mw instrumentingMiddleware) Task(ctx context.Context, ownerID, taskID uint64) (t tasksvc.Task, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "task").Add(1)
		mw.requestLatency.With("method", "task").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.Task(ctx, ownerID, taskID)
}

func (mw instrumentingMiddleware) UpdateTask(ctx context.Context, ownerID, taskID uint64, title, description *string, completed *bool) (t tasksvc.Task, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "update_task").Add(1)
		mw.requestLatency.With("method", "update_task").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.UpdateTask(ctx, ownerID, taskID, title, description, completed)
}

func (mw instrumentingMiddleware) ToggleTask(ctx context.Context, ownerID, taskID uint64) (t tasksvc.Task, err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "toggle_task").Add(1)
		mw.requestLatency.With("method", "toggle_task").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.ToggleTask(ctx, ownerID, taskID)
}

func (mw instrumentingMiddleware) DeleteTask(ctx context.Context, ownerID, taskID uint64) (err error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "delete_task").Add(1)
		mw.requestLatency.With("method", "delete_task").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.DeleteTask(ctx, ownerID, taskID)
}

// OwnerCheckMiddleware rejects calls whose owner id does not reference an
// existing user, so no task row is ever created for an unknown owner.
func OwnerCheckMiddleware(users usersvc.UserRepository) Middleware {
	return func(next Service) Service {
		return ownerCheckMiddleware{next, users}
	}
}

type ownerCheckMiddleware struct {
	next  Service
	users usersvc.UserRepository
}

func (mw ownerCheckMiddleware) check(ctx context.Context, ownerID uint64) error {
	ok, err := mw.users.IsExists(ctx, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return usersvc.ErrUserNotFound
	}
	return nil
}

func (mw ownerCheckMiddleware) CreateTask(ctx context.Context, ownerID uint64, title, description string) (tasksvc.Task, error) {
	if err := mw.check(ctx, ownerID); err != nil {
		return tasksvc.Task{}, err
	}
	return mw.next.CreateTask(ctx, ownerID, title, description)
}

func (mw ownerCheckMiddleware) Tasks(ctx context.Context, ownerID uint64) ([]tasksvc.Task, error) {
	if err := mw.check(ctx, ownerID); err != nil {
		return nil, err
	}
	return mw.next.Tasks(ctx, ownerID)
}

func (mw ownerCheckMiddleware) Task(ctx context.Context, ownerID, taskID uint64) (tasksvc.Task, error) {
	if err := mw.check(ctx, ownerID); err != nil {
		return tasksvc.Task{}, err
	}
	return mw.next.Task(ctx, ownerID, taskID)
}

func (mw ownerCheckMiddleware) UpdateTask(ctx context.Context, ownerID, taskID uint64, title, description *string, completed *bool) (tasksvc.Task, error) {
	if err := mw.check(ctx, ownerID); err != nil {
		return tasksvc.Task{}, err
	}
	return mw.next.UpdateTask(ctx, ownerID, taskID, title, description, completed)
}

func (mw ownerCheckMiddleware) ToggleTask(ctx context.Context, ownerID, taskID uint64) (tasksvc.Task, error) {
	if err := mw.check(ctx, ownerID); err != nil {
		return tasksvc.Task{}, err
	}
	return mw.next.ToggleTask(ctx, ownerID, taskID)
}

func (mw ownerCheckMiddleware) DeleteTask(ctx context.Context, ownerID, taskID uint64) error {
	if err := mw.check(ctx, ownerID); err != nil {
		return err
	}
	return mw.next.DeleteTask(ctx, ownerID, taskID)
}

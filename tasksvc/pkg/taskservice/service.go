package taskservice

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics"
	"github.com/todoevo/backend/tasksvc"
	"github.com/todoevo/backend/validate"
)

// Service executes task operations for a single verified owner. The owner id
// must come from the authorization gate; every storage access is additionally
// scoped by it at the query level.
type Service interface {
	CreateTask(ctx context.Context, ownerID uint64, title, description string) (tasksvc.Task, error)
	Tasks(ctx context.Context, ownerID uint64) ([]tasksvc.Task, error)
	Task(ctx context.Context, ownerID, taskID uint64) (tasksvc.Task, error)
	UpdateTask(ctx context.Context, ownerID, taskID uint64, title, description *string, completed *bool) (tasksvc.Task, error)
	ToggleTask(ctx context.Context, ownerID, taskID uint64) (tasksvc.Task, error)
	DeleteTask(ctx context.Context, ownerID, taskID uint64) error
}

func New(t tasksvc.TaskRepository, logger log.Logger, counter metrics.Counter, latency metrics.Histogram) Service {
	var svc Service
	{
		svc = NewBasicService(t)
		svc = LoggingMiddleware(logger)(svc)
		svc = InstrumentingMiddleware(counter, latency)(svc)
	}
	return svc
}

type basicService struct {
	tasks tasksvc.TaskRepository
}

func NewBasicService(t tasksvc.TaskRepository) Service {
	return basicService{tasks: t}
}

func (s basicService) CreateTask(ctx context.Context, ownerID uint64, title, description string) (tasksvc.Task, error) {
	if ownerID == 0 {
		return tasksvc.Task{}, tasksvc.ErrInvalidArgument
	}

	title, err := validate.Title(title)
	if err != nil {
		return tasksvc.Task{}, err
	}

	task := tasksvc.Task{
		UserID:      ownerID,
		Title:       title,
		Description: description,
		Completed:   false,
	}
	if err := s.tasks.Create(ctx, &task); err != nil {
		return tasksvc.Task{}, err
	}

	return task, nil
}

func (s basicService) Tasks(ctx context.Context, ownerID uint64) ([]tasksvc.Task, error) {
	if ownerID == 0 {
		return nil, tasksvc.ErrInvalidArgument
	}
	return s.tasks.FindAll(ctx, ownerID)
}

func (s basicService) Task(ctx context.Context, ownerID, taskID uint64) (tasksvc.Task, error) {
	if ownerID == 0 || taskID == 0 {
		return tasksvc.Task{}, tasksvc.ErrInvalidArgument
	}
	return s.tasks.Find(ctx, ownerID, taskID)
}

func (s basicService) UpdateTask(ctx context.Context, ownerID, taskID uint64, title, description *string, completed *bool) (tasksvc.Task, error) {
	if ownerID == 0 || taskID == 0 {
		return tasksvc.Task{}, tasksvc.ErrInvalidArgument
	}

	task, err := s.tasks.Find(ctx, ownerID, taskID)
	if err != nil {
		return tasksvc.Task{}, err
	}

	if title != nil {
		t, err := validate.Title(*title)
		if err != nil {
			return tasksvc.Task{}, err
		}
		task.Title = t
	}
	if description != nil {
		task.Description = *description
	}
	if completed != nil {
		task.Completed = *completed
	}
	task.UpdatedAt = time.Now().UTC()

	if err := s.tasks.Update(ctx, &task); err != nil {
		return tasksvc.Task{}, err
	}

	return task, nil
}

func (s basicService) ToggleTask(ctx context.Context, ownerID, taskID uint64) (tasksvc.Task, error) {
	if ownerID == 0 || taskID == 0 {
		return tasksvc.Task{}, tasksvc.ErrInvalidArgument
	}

	task, err := s.tasks.Find(ctx, ownerID, taskID)
	if err != nil {
		return tasksvc.Task{}, err
	}

	task.Completed = !task.Completed
	task.UpdatedAt = time.Now().UTC()

	if err := s.tasks.Update(ctx, &task); err != nil {
		return tasksvc.Task{}, err
	}

	return task, nil
}

func (s basicService) DeleteTask(ctx context.Context, ownerID, taskID uint64) error {
	if ownerID == 0 || taskID == 0 {
		return tasksvc.ErrInvalidArgument
	}
	return s.tasks.Delete(ctx, ownerID, taskID)
}

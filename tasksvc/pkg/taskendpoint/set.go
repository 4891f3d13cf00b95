package taskendpoint

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
	"github.com/todoevo/backend/tasksvc"
	"github.com/todoevo/backend/tasksvc/pkg/taskservice"
	"golang.org/x/time/rate"
)

type Set struct {
	CreateTaskEndpoint endpoint.Endpoint
	TasksEndpoint      endpoint.Endpoint
	TaskEndpoint       endpoint.Endpoint
	UpdateTaskEndpoint endpoint.Endpoint
	ToggleTaskEndpoint endpoint.Endpoint
	DeleteTaskEndpoint endpoint.Endpoint
}

// New wires every task endpoint behind the authorization gate, a rate
// limiter, and a circuit breaker. No task endpoint is reachable without a
// token that verifies against the owner the request targets.
func New(svc taskservice.Service, gate authservice.Service, logger log.Logger) Set {
	wrap := func(name string, e endpoint.Endpoint) endpoint.Endpoint {
		e = authendpoint.AuthorizeMiddleware(gate)(e)
		e = ratelimit.NewErroringLimiter(rate.NewLimiter(rate.Every(time.Minute/100), 100))(e)
		e = circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{}))(e)
		e = authendpoint.LoggingMiddleware(log.With(logger, "method", name))(e)
		return e
	}

	return Set{
		CreateTaskEndpoint: wrap("CreateTask", MakeCreateTaskEndpoint(svc)),
		TasksEndpoint:      wrap("Tasks", MakeTasksEndpoint(svc)),
		TaskEndpoint:       wrap("Task", MakeTaskEndpoint(svc)),
		UpdateTaskEndpoint: wrap("UpdateTask", MakeUpdateTaskEndpoint(svc)),
		ToggleTaskEndpoint: wrap("ToggleTask", MakeToggleTaskEndpoint(svc)),
		DeleteTaskEndpoint: wrap("DeleteTask", MakeDeleteTaskEndpoint(svc)),
	}
}

func (s Set) CreateTask(ctx context.Context, ownerID uint64, title, description string) (tasksvc.Task, error) {
	resp, err := s.CreateTaskEndpoint(ctx, CreateTaskRequest{OwnerID: ownerID, Title: title, Description: description})
	if err != nil {
		return tasksvc.Task{}, err
	}
	response := resp.(CreateTaskResponse)
	return response.Task, response.Err
}

func (s Set) Tasks(ctx context.Context, ownerID uint64) ([]tasksvc.Task, error) {
	resp, err := s.TasksEndpoint(ctx, TasksRequest{OwnerID: ownerID})
	if err != nil {
		return nil, err
	}
	response := resp.(TasksResponse)
	return response.Tasks, response.Err
}

func (s Set) Task(ctx context.Context, ownerID, taskID uint64) (tasksvc.Task, error) {
	resp, err := s.TaskEndpoint(ctx, TaskRequest{OwnerID: ownerID, TaskID: taskID})
	if err != nil {
		return tasksvc.Task{}, err
	}
	response := resp.(TaskResponse)
	return response.Task, response.Err
}

func (s Set) UpdateTask(ctx context.Context, ownerID, taskID uint64, title, description *string, completed *bool) (tasksvc.Task, error) {
	resp, err := s.UpdateTaskEndpoint(
		ctx,
		UpdateTaskRequest{
			OwnerID:     ownerID,
			TaskID:      taskID,
			Title:       title,
			Description: description,
			Completed:   completed,
		},
	)
	if err != nil {
		return tasksvc.Task{}, err
	}
	response := resp.(UpdateTaskResponse)
	return response.Task, response.Err
}

func (s Set) ToggleTask(ctx context.Context, ownerID, taskID uint64) (tasksvc.Task, error) {
	resp, err := s.ToggleTaskEndpoint(ctx, ToggleTaskRequest{OwnerID: ownerID, TaskID: taskID})
	if err != nil {
		return tasksvc.Task{}, err
	}
	response := resp.(ToggleTaskResponse)
	return response.Task, response.Err
}

func (s Set) DeleteTask(ctx context.Context, ownerID, taskID uint64) error {
	resp, err := s.DeleteTaskEndpoint(ctx, DeleteTaskRequest{OwnerID: ownerID, TaskID: taskID})
	if err != nil {
		return err
	}
	response := resp.(DeleteTaskResponse)
	return response.Err
}

func MakeCreateTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		ownerID, err := authendpoint.VerifiedOwner(ctx)
		if err != nil {
			return CreateTaskResponse{Err: err}, nil
		}

		req := request.(CreateTaskRequest)
		t, err := s.CreateTask(ctx, ownerID, req.Title, req.Description)
		return CreateTaskResponse{Task: t, Err: err}, nil
	}
}

func MakeTasksEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		ownerID, err := authendpoint.VerifiedOwner(ctx)
		if err != nil {
			return TasksResponse{Err: err}, nil
		}

		_ = request.(TasksRequest)
		t, err := s.Tasks(ctx, ownerID)
		return TasksResponse{Tasks: t, Err: err}, nil
	}
}

func MakeTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		ownerID, err := authendpoint.VerifiedOwner(ctx)
		if err != nil {
			return TaskResponse{Err: err}, nil
		}

		req := request.(TaskRequest)
		t, err := s.Task(ctx, ownerID, req.TaskID)
		return TaskResponse{Task: t, Err: err}, nil
	}
}

func MakeUpdateTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		ownerID, err := authendpoint.VerifiedOwner(ctx)
		if err != nil {
			return UpdateTaskResponse{Err: err}, nil
		}

		req := request.(UpdateTaskRequest)
		t, err := s.UpdateTask(ctx, ownerID, req.TaskID, req.Title, req.Description, req.Completed)
		return UpdateTaskResponse{Task: t, Err: err}, nil
	}
}

func MakeToggleTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		ownerID, err := authendpoint.VerifiedOwner(ctx)
		if err != nil {
			return ToggleTaskResponse{Err: err}, nil
		}

		req := request.(ToggleTaskRequest)
		t, err := s.ToggleTask(ctx, ownerID, req.TaskID)
		return ToggleTaskResponse{Task: t, Err: err}, nil
	}
}

func MakeDeleteTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		ownerID, err := authendpoint.VerifiedOwner(ctx)
		if err != nil {
			return DeleteTaskResponse{Err: err}, nil
		}

		req := request.(DeleteTaskRequest)
		err = s.DeleteTask(ctx, ownerID, req.TaskID)
		return DeleteTaskResponse{Err: err}, nil
	}
}

var (
	_ endpoint.Failer = CreateTaskResponse{}
	_ endpoint.Failer = TasksResponse{}
	_ endpoint.Failer = TaskResponse{}
	_ endpoint.Failer = UpdateTaskResponse{}
	_ endpoint.Failer = ToggleTaskResponse{}
	_ endpoint.Failer = DeleteTaskResponse{}

	_ authendpoint.OwnerCarrier = CreateTaskRequest{}
	_ authendpoint.OwnerCarrier = TasksRequest{}
	_ authendpoint.OwnerCarrier = TaskRequest{}
	_ authendpoint.OwnerCarrier = UpdateTaskRequest{}
	_ authendpoint.OwnerCarrier = ToggleTaskRequest{}
	_ authendpoint.OwnerCarrier = DeleteTaskRequest{}
)

type CreateTaskRequest struct {
	OwnerID     uint64 `json:"-"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (r CreateTaskRequest) Owner() uint64 { return r.OwnerID }

type CreateTaskResponse struct {
	Task tasksvc.Task `json:"task"`
	Err  error        `json:"-"`
}

func (r CreateTaskResponse) Failed() error { return r.Err }

type TasksRequest struct {
	OwnerID uint64 `json:"-"`
}

func (r TasksRequest) Owner() uint64 { return r.OwnerID }

type TasksResponse struct {
	Tasks []tasksvc.Task `json:"tasks"`
	Err   error          `json:"-"`
}

func (r TasksResponse) Failed() error { return r.Err }

type TaskRequest struct {
	OwnerID uint64 `json:"-"`
	TaskID  uint64 `json:"-"`
}

func (r TaskRequest) Owner() uint64 { return r.OwnerID }

type TaskResponse struct {
	Task tasksvc.Task `json:"task"`
	Err  error        `json:"-"`
}

func (r TaskResponse) Failed() error { return r.Err }

type UpdateTaskRequest struct {
	OwnerID     uint64  `json:"-"`
	TaskID      uint64  `json:"-"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

func (r UpdateTaskRequest) Owner() uint64 { return r.OwnerID }

type UpdateTaskResponse struct {
	Task tasksvc.Task `json:"task"`
	Err  error        `json:"-"`
}

func (r UpdateTaskResponse) Failed() error { return r.Err }

type ToggleTaskRequest struct {
	OwnerID uint64 `json:"-"`
	TaskID  uint64 `json:"-"`
}

func (r ToggleTaskRequest) Owner() uint64 { return r.OwnerID }

type ToggleTaskResponse struct {
	Task tasksvc.Task `json:"task"`
	Err  error        `json:"-"`
}

func (r ToggleTaskResponse) Failed() error { return r.Err }

type DeleteTaskRequest struct {
	OwnerID uint64 `json:"-"`
	TaskID  uint64 `json:"-"`
}

func (r DeleteTaskRequest) Owner() uint64 { return r.OwnerID }

type DeleteTaskResponse struct {
	Err error `json:"-"`
}

func (r DeleteTaskResponse) Failed() error { return r.Err }
